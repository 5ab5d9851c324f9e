// Package timefmt provides the canonical timestamp type and the flexible
// time parsing used for task input. Timestamps persist as
// "YYYY-MM-DD HH:MM:SS" strings.
package timefmt

import (
	"encoding/json"
	"strings"
	"time"
)

// Canonical is the fixed format for all persisted timestamps.
const Canonical = "2006-01-02 15:04:05"

// now is the clock used for date anchoring and future checks.
// Overridden in tests.
var now = time.Now

// flexibleLayouts are the accepted input formats, tried in order.
// The canonical form leads so already-canonical strings round-trip
// unchanged. Layouts without a date component anchor to today.
var flexibleLayouts = []struct {
	layout     string
	dateless   bool
	twelveHour bool
}{
	{Canonical, false, false},
	{"2006-01-02 15:04", false, false},
	{"15:04", true, false},
	{"2006-01-02", false, false},
	{"3:04 PM", true, true},
	{"3 PM", true, true},
}

// Stamp is an absolute timestamp stored in the canonical form.
//
// A Stamp decoded from a string that does not match the canonical format
// keeps the original text and reports Valid() == false, so rewriting a
// store never destroys entries that could not be parsed.
type Stamp struct {
	t     time.Time
	raw   string
	valid bool
}

// New creates a valid Stamp from t, truncated to second precision.
func New(t time.Time) Stamp {
	return Stamp{t: t.Truncate(time.Second), valid: true}
}

// Parse parses a canonical "YYYY-MM-DD HH:MM:SS" string.
func Parse(s string) (Stamp, error) {
	t, err := time.ParseInLocation(Canonical, strings.TrimSpace(s), time.Local)
	if err != nil {
		return Stamp{}, err
	}
	return New(t), nil
}

// ParseFlexible parses user-supplied time input against the accepted
// formats in order; the first format that parses wins. Inputs carrying
// no date component are anchored to the current calendar date; date-only
// input gets 00:00. Returns ok=false when no format matches.
func ParseFlexible(input string) (Stamp, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Stamp{}, false
	}

	for _, l := range flexibleLayouts {
		candidate := s
		if l.twelveHour {
			// time.Parse matches AM/PM case-sensitively.
			candidate = strings.ToUpper(s)
		}
		t, err := time.ParseInLocation(l.layout, candidate, time.Local)
		if err != nil {
			continue
		}
		if l.dateless {
			today := now()
			t = time.Date(today.Year(), today.Month(), today.Day(),
				t.Hour(), t.Minute(), 0, 0, time.Local)
		}
		return New(t), true
	}

	return Stamp{}, false
}

// IsFutureAndValid reports whether input parses against the canonical
// format and lies strictly in the future. It deliberately accepts only
// the canonical form: callers normalize flexible input with
// ParseFlexible before validating.
func IsFutureAndValid(input string) bool {
	t, err := time.ParseInLocation(Canonical, strings.TrimSpace(input), time.Local)
	if err != nil {
		return false
	}
	return t.After(now())
}

// Time returns the parsed instant. Only meaningful when Valid() is true.
func (s Stamp) Time() time.Time { return s.t }

// Valid reports whether the Stamp holds a parseable canonical timestamp.
func (s Stamp) Valid() bool { return s.valid }

// String returns the canonical form, or the preserved original text for
// a Stamp that failed to parse.
func (s Stamp) String() string {
	if !s.valid {
		return s.raw
	}
	return s.t.Format(Canonical)
}

// MarshalJSON implements json.Marshaler.
func (s Stamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler. It never fails: a value
// that is not a canonical timestamp string is retained as raw text with
// Valid() == false.
func (s *Stamp) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Not even a JSON string; keep the compact source text.
		*s = Stamp{raw: strings.TrimSpace(string(data))}
		return nil
	}

	t, err := time.ParseInLocation(Canonical, str, time.Local)
	if err != nil {
		*s = Stamp{raw: str}
		return nil
	}

	*s = New(t)
	return nil
}
