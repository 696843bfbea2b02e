package connection

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultLoginLocation is where the client sends the user when a session
// ends.
const DefaultLoginLocation = "login.html"

// CredentialStore holds the session token.
type CredentialStore interface {
	Token() (string, bool)
	SetToken(token string) error
	ClearToken() error
}

// Navigator moves the user to another location, typically the login page.
type Navigator interface {
	Navigate(location string)
}

// Notifier shows a short status message to the user.
type Notifier interface {
	Notify(message string)
}

// Saver persists downloaded content under a filename.
type Saver interface {
	Save(filename string, data []byte) error
}

// TerminalNavigator tells the user on w how to sign in again.
type TerminalNavigator struct {
	W            io.Writer
	LoginCommand string
}

// Navigate implements Navigator.
func (n *TerminalNavigator) Navigate(location string) {
	cmd := n.LoginCommand
	if cmd == "" {
		cmd = "fleetdesk-cli login"
	}
	fmt.Fprintf(n.W, "Session ended (%s). Run '%s' to sign in again.\n", location, cmd)
}

// WriterNotifier prints each message on its own line.
type WriterNotifier struct {
	W io.Writer
}

// Notify implements Notifier.
func (n *WriterNotifier) Notify(message string) {
	fmt.Fprintln(n.W, message)
}

// DirSaver writes files into Dir, creating it when needed. Only the base
// name of filename is used.
type DirSaver struct {
	Dir string
}

// Save implements Saver.
func (s *DirSaver) Save(filename string, data []byte) error {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("invalid filename %q", filename)
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0644)
}

// Path returns where Save would put filename.
func (s *DirSaver) Path(filename string) string {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, filepath.Base(filename))
}

var (
	_ Navigator = (*TerminalNavigator)(nil)
	_ Notifier  = (*WriterNotifier)(nil)
	_ Saver     = (*DirSaver)(nil)
)
