// Package calendar holds the date value used for agenda entries and the
// conversions between the display format (DD-MM-YYYY) and the storage
// format (YYYY-MM-DD).
package calendar

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrParse is returned when a date string cannot be interpreted as a real
// calendar date.
var ErrParse = errors.New("invalid date")

// Date is a calendar date without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New returns the date for the given components. It does not normalize or
// validate; use Valid or one of the Parse functions for that.
func New(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// Of returns the calendar date of t in t's location.
func Of(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current date in UTC.
func Today() Date {
	return Of(time.Now().UTC())
}

// ParseDisplay parses a DD-MM-YYYY date. Slashes are accepted as separators
// and day and month may be written without a leading zero.
func ParseDisplay(s string) (Date, error) {
	parts, err := split(s)
	if err != nil {
		return Date{}, err
	}
	return build(parts[2], parts[1], parts[0])
}

// ParseStorage parses an ISO YYYY-MM-DD date.
func ParseStorage(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return Date{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrParse, s)
	}
	return build(parts[0], parts[1], parts[2])
}

// ParseInput accepts either the storage or the display format. Browsers
// submit <input type="date"> values as ISO dates while typed fields use the
// display format.
func ParseInput(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 5 && s[4] == '-' {
		return ParseStorage(s)
	}
	return ParseDisplay(s)
}

// FromParts builds a date from separately submitted day, month and year
// fields.
func FromParts(day, month, year string) (Date, error) {
	return build(strings.TrimSpace(year), strings.TrimSpace(month), strings.TrimSpace(day))
}

func split(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	sep := "-"
	if strings.Contains(s, "/") {
		sep = "/"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q is not DD-MM-YYYY", ErrParse, s)
	}
	if len(parts[0]) < 1 || len(parts[0]) > 2 || len(parts[1]) < 1 || len(parts[1]) > 2 || len(parts[2]) != 4 {
		return nil, fmt.Errorf("%w: %q is not DD-MM-YYYY", ErrParse, s)
	}
	return parts, nil
}

func build(year, month, day string) (Date, error) {
	y, err := component(year, "year")
	if err != nil {
		return Date{}, err
	}
	m, err := component(month, "month")
	if err != nil {
		return Date{}, err
	}
	d, err := component(day, "day")
	if err != nil {
		return Date{}, err
	}

	date := Date{Year: y, Month: time.Month(m), Day: d}
	if err := date.check(); err != nil {
		return Date{}, err
	}
	return date, nil
}

func (d Date) check() error {
	if d.Year < 1 || d.Year > 9999 {
		return fmt.Errorf("%w: year %d out of range", ErrParse, d.Year)
	}
	if d.Month < time.January || d.Month > time.December {
		return fmt.Errorf("%w: month %d out of range", ErrParse, int(d.Month))
	}
	if d.Day < 1 || d.Day > DaysIn(d.Month, d.Year) {
		return fmt.Errorf("%w: day %d does not exist in %s %d", ErrParse, d.Day, d.Month, d.Year)
	}
	return nil
}

// Valid reports whether d names a day that exists, with a year between 1
// and 9999.
func (d Date) Valid() bool {
	return d.check() == nil
}

func component(s, name string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: missing %s", ErrParse, name)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %s %q is not a number", ErrParse, name, s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrParse, name, s, err)
	}
	return n, nil
}

// DaysIn returns the number of days in the given month of year.
func DaysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Storage formats the date as YYYY-MM-DD.
func (d Date) Storage() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Display formats the date as DD-MM-YYYY.
func (d Date) Display() string {
	return fmt.Sprintf("%02d-%02d-%04d", d.Day, int(d.Month), d.Year)
}

func (d Date) String() string {
	return d.Storage()
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC on d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return Of(d.Time().AddDate(0, 0, n))
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// WeekStart returns the Monday on or before d.
func (d Date) WeekStart() Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// Value stores the date as ISO text.
func (d Date) Value() (driver.Value, error) {
	return d.Storage(), nil
}

// Scan reads a date stored as ISO text.
func (d *Date) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		*d = Of(v)
		return nil
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}

	parsed, err := ParseStorage(s)
	if err != nil {
		return fmt.Errorf("scan date: %w", err)
	}
	*d = parsed
	return nil
}
