package connection

import "sync"

// Recorder captures navigations, notifications and saved files in memory.
type Recorder struct {
	mu        sync.Mutex
	Locations []string
	Messages  []string
	Files     map[string][]byte
	SaveErr   error
}

// Navigate implements Navigator.
func (r *Recorder) Navigate(location string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Locations = append(r.Locations, location)
}

// Notify implements Notifier.
func (r *Recorder) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, message)
}

// Save implements Saver.
func (r *Recorder) Save(filename string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SaveErr != nil {
		return r.SaveErr
	}
	if r.Files == nil {
		r.Files = make(map[string][]byte)
	}
	r.Files[filename] = append([]byte(nil), data...)
	return nil
}

var (
	_ Navigator = (*Recorder)(nil)
	_ Notifier  = (*Recorder)(nil)
	_ Saver     = (*Recorder)(nil)
)
