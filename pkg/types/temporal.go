// Package types provides small value types shared across the citation
// extraction and resolution packages.
package types

import (
	"fmt"
	"time"
)

// Date is a calendar date at the precision a citation parenthetical
// provides. Month and Day are zero when the source text does not supply
// them.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"` // 1-12, 0 when unknown
	Day   int `json:"day,omitempty"`   // 1-31, 0 when unknown
}

// ISO renders the date in ISO-8601 form at its available precision:
// "2020", "2020-01", or "2020-01-05".
func (d Date) ISO() string {
	switch {
	case d.Month == 0:
		return fmt.Sprintf("%04d", d.Year)
	case d.Day == 0:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
}

// ToTime converts the date to a time.Time at midnight UTC, substituting
// January and the 1st for unknown components.
func (d Date) ToTime() time.Time {
	month := d.Month
	if month == 0 {
		month = 1
	}
	day := d.Day
	if day == 0 {
		day = 1
	}
	return time.Date(d.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// FromTime creates a full-precision Date from a time.Time.
func FromTime(t time.Time) Date {
	return Date{
		Year:  t.Year(),
		Month: int(t.Month()),
		Day:   t.Day(),
	}
}

// Today returns the current date.
func Today() Date {
	return FromTime(time.Now())
}

// Before returns true if d is before other.
func (d Date) Before(other Date) bool {
	return d.ToTime().Before(other.ToTime())
}

// After returns true if d is after other.
func (d Date) After(other Date) bool {
	return d.ToTime().After(other.ToTime())
}

// Equal returns true if d equals other at full field precision.
func (d Date) Equal(other Date) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}
