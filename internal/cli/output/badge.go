package output

import (
	"regexp"
	"strings"
	"time"
)

// Badge tones.
const (
	ToneOK      = "ok"
	ToneWarn    = "warn"
	ToneBad     = "bad"
	ToneUnknown = "badge"
)

// Badge is the display form of a request status.
type Badge struct {
	Label string `json:"label" yaml:"label"`
	Tone  string `json:"tone" yaml:"tone"`
}

// String returns the label.
func (b Badge) String() string {
	return b.Label
}

var statusBadges = map[string]Badge{
	"DRAFT":                  {"කෙටුම්පත", ToneWarn},
	"SUBMITTED":              {"යොමු කර ඇත", ToneWarn},
	"ADMIN_APPROVED":         {"පරිපාලක අනුමත", ToneOK},
	"TA_ASSIGNED_PENDING_HR": {"HR ඔවරයිඩ් අනුමැතිය බලාපොරොත්තු", ToneWarn},
	"TA_ASSIGNED":            {"වාහන අනුයුක්ත කර ඇත", ToneOK},
	"TA_FIX_REQUIRED":        {"TA විසින් සකස් කළ යුතුයි", ToneWarn},
	"HR_FINAL_APPROVED":      {"අවසාන අනුමත", ToneOK},
	"REJECTED":               {"ප්‍රතික්ෂේප", ToneBad},
}

// StatusBadge maps a request status to its label and tone. Unknown statuses
// are shown as-is with the neutral tone.
func StatusBadge(status string) Badge {
	if b, ok := statusBadges[status]; ok {
		return b
	}
	return Badge{Label: status, Tone: ToneUnknown}
}

// FormatDate keeps the date part of a timestamp without any timezone
// conversion.
func FormatDate(s string) string {
	if i := strings.Index(s, "T"); i >= 0 {
		return s[:i]
	}
	if i := strings.Index(s, " "); i >= 0 {
		return s[:i]
	}
	return s
}

var clockPattern = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)

// Layouts for ISO datetimes without an explicit zone; these are read as
// local time.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// FormatTime reduces a time or timestamp to HH:MM in the local zone.
func FormatTime(s string) string {
	return FormatTimeIn(s, time.Local)
}

// FormatTimeIn is FormatTime with an explicit zone.
func FormatTimeIn(s string, loc *time.Location) string {
	if s == "" {
		return ""
	}
	if clockPattern.MatchString(s) {
		return s[:5]
	}

	if strings.Contains(s, "T") {
		if t, ok := parseISO(s, loc); ok {
			return t.In(loc).Format("15:04")
		}
		parts := strings.Split(s, "T")
		return firstRunes(strings.Replace(parts[1], "Z", "", 1), 5)
	}

	if strings.Contains(s, " ") {
		return firstRunes(strings.Split(s, " ")[1], 5)
	}

	return firstRunes(s, 5)
}

func parseISO(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// RouteLabel renders "<no> - <name>", or whichever part is present.
func RouteLabel(routeNo, routeName string) string {
	no := strings.TrimSpace(routeNo)
	name := strings.TrimSpace(routeName)
	switch {
	case no != "" && name != "":
		return no + " - " + name
	case name != "":
		return name
	default:
		return no
	}
}
