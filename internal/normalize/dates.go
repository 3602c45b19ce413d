package normalize

import (
	"strings"
	"time"
)

// Timestamp formats seen across site exports. Sites disagree on the
// separator and on whether zone offsets are recorded; zone-less values
// parse as UTC.
var dttmFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// ParseDTTM attempts to parse a timestamp string in multiple common formats.
// Returns nil if the input is empty or unparseable.
func ParseDTTM(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, fmt := range dttmFormats {
		if t, err := time.Parse(fmt, s); err == nil {
			return &t
		}
	}
	return nil
}

// ParseDTTMPtr is ParseDTTM for nullable inputs.
func ParseDTTMPtr(v *string) *time.Time {
	if v == nil {
		return nil
	}
	return ParseDTTM(*v)
}

// DayOf returns the calendar day of t as whole days since the Unix epoch,
// evaluated in UTC. All day-granular rules (antimicrobial days, censor
// windows) run on these values so that two timestamps on the same date
// always land on the same day.
func DayOf(t time.Time) int {
	secs := t.Unix()
	d := secs / 86400
	if secs%86400 < 0 {
		d--
	}
	return int(d)
}

// DayStart returns midnight UTC of the given epoch day.
func DayStart(day int) time.Time {
	return time.Unix(int64(day)*86400, 0).UTC()
}
