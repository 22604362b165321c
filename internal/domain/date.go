package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Today is the current UTC calendar date, the date records default to.
func Today() time.Time {
	return TruncateDate(time.Now().UTC())
}

// TruncateDate drops the clock part of t, keeping its calendar date, as UTC midnight.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func DateISO(t time.Time) string {
	return t.Format(DateLayout)
}
