package app

import (
	"encoding/json"
	"fmt"
	"time"
)

// CivilDate is a calendar date with no time-of-day and no timezone. Two
// dates are equal when year, month and day are equal; ordering is
// lexicographic on (year, month, day). The zero value is not a valid date.
type CivilDate struct {
	Year  int
	Month int
	Day   int
}

// ParseDate parses exactly "YYYY-MM-DD" (zero-padded, real calendar date,
// all components non-zero). Any other shape reports ok=false.
func ParseDate(s string) (CivilDate, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return CivilDate{}, false
	}
	if t.Year() <= 0 {
		return CivilDate{}, false
	}
	return CivilDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, true
}

// Today returns the current local calendar date.
func Today() CivilDate {
	now := time.Now()
	return CivilDate{Year: now.Year(), Month: int(now.Month()), Day: now.Day()}
}

// String formats the date as "YYYY-MM-DD".
func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Long formats the date for display, e.g. "Mon, Mar 1, 2024".
func (d CivilDate) Long() string {
	return d.instant().Format("Mon, Jan 2, 2006")
}

// AddDays returns the date n days later (earlier for negative n), with
// month and year rollover handled by calendar normalization.
func (d CivilDate) AddDays(n int) CivilDate {
	t := time.Date(d.Year, time.Month(d.Month), d.Day+n, 0, 0, 0, 0, time.UTC)
	return CivilDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Compare returns -1, 0 or 1 ordering d against o.
func (d CivilDate) Compare(o CivilDate) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(d.Month - o.Month)
	default:
		return sign(d.Day - o.Day)
	}
}

// Before reports whether d is strictly earlier than o.
func (d CivilDate) Before(o CivilDate) bool { return d.Compare(o) < 0 }

// DaysBetween returns b minus a in whole days. The arithmetic runs on UTC
// instants so a daylight shift can never make a day count fractional.
func DaysBetween(a, b CivilDate) int {
	return int(b.instant().Sub(a.instant()) / (24 * time.Hour))
}

// MarshalJSON encodes the date as a "YYYY-MM-DD" string.
func (d CivilDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *CivilDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, ok := ParseDate(s)
	if !ok {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = parsed
	return nil
}

func (d CivilDate) instant() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
