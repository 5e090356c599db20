// Package dateutil provides calendar date helpers.
package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the layout used for all user-facing dates.
const DateFormat = "02-01-2006"

// ISOFormat is the layout used for stored dates; it sorts lexically.
const ISOFormat = "2006-01-02"

// Date is a calendar day without a time component. The zero value is the
// zero date and reports true from IsZero. Date is comparable and can be
// used as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates a time.Time to its calendar day.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// Today returns the calendar day of the given instant. Callers pass the
// clock value in so computations stay pure.
func Today(now time.Time) Date {
	return DateOf(now)
}

// Parse parses a date in the DD-MM-YYYY format.
func Parse(value string) (Date, error) {
	t, err := time.Parse(DateFormat, value)
	if err != nil {
		return Date{}, fmt.Errorf("failed to parse date %q: %w", value, err)
	}
	return DateOf(t), nil
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days after d. Negative n goes backwards.
func (d Date) AddDays(n int) Date {
	return DateOf(d.time().AddDate(0, 0, n))
}

// Next returns the following calendar day.
func (d Date) Next() Date {
	return d.AddDays(1)
}

// Sub returns the number of whole days between d and other (d - other).
func (d Date) Sub(other Date) int {
	return int(d.time().Sub(other.time()).Hours() / 24)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is later than other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String formats the date as DD-MM-YYYY.
func (d Date) String() string {
	return d.time().Format(DateFormat)
}

// ISO formats the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.time().Format(ISOFormat)
}

// ParseISO parses a date in the YYYY-MM-DD format.
func ParseISO(value string) (Date, error) {
	t, err := time.Parse(ISOFormat, value)
	if err != nil {
		return Date{}, fmt.Errorf("failed to parse date %q: %w", value, err)
	}
	return DateOf(t), nil
}

// Period renders a day count as a human duration, e.g. "1 year, 2 months,
// 10 days". Zero components are omitted; zero days total renders as
// "0 days".
func Period(days int) string {
	if days <= 0 {
		return "0 days"
	}

	years := days / 365
	days %= 365
	months := days / 30
	days %= 30

	parts := make([]string, 0, 3)
	if years > 0 {
		parts = append(parts, plural(years, "year"))
	}
	if months > 0 {
		parts = append(parts, plural(months, "month"))
	}
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
