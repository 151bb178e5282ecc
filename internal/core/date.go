package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Date is a timezone-naive calendar date. The tracker only ever cares about
// the day something happened, never the instant, so clock time and zones are
// kept out of the data model entirely.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

var ErrInvalidDate = errors.New("invalid date")

// NewCalendarDate builds a Date from year, month and day.
func NewCalendarDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return NewCalendarDate(t.Year(), t.Month(), t.Day()), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	// Round-tripping through time.Date rejects impossible dates such as Feb 30:
	// the normalization would shift them onto a different day.
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	if t.Year() != d.Year || t.Month() != d.Month || t.Day() != d.Day {
		return fmt.Errorf("%w: %s", ErrInvalidDate, d)
	}
	return nil
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return NewCalendarDate(t.Year(), t.Month(), t.Day())
}

// AddMonths returns the date n calendar months later, clamping the day to the
// length of the target month (Jan 31 + 1 month = Feb 28). Clamping is sticky
// across cumulative steps: once a series lands on the 28th it stays there.
func (d Date) AddMonths(n int) Date {
	months := int(d.Month) - 1 + n
	year := d.Year + months/12
	month := time.Month(months%12 + 1)
	if months < 0 {
		// Go's % keeps the sign of the dividend.
		year = d.Year + (months-11)/12
		month = time.Month((months%12+12)%12 + 1)
	}
	day := d.Day
	if last := daysIn(year, month); day > last {
		day = last
	}
	return NewCalendarDate(year, month, day)
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) Equal(other Date) bool {
	return d == other
}

// Today returns the current calendar date in local time.
func Today() Date {
	now := time.Now()
	return NewCalendarDate(now.Year(), now.Month(), now.Day())
}

func daysIn(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MarshalJSON renders the date as a "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
