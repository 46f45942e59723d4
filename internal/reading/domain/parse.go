package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseVolume reads a meter value typed by an operator. A comma is
// accepted as the decimal separator.
func ParseVolume(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return decimal.Zero, ErrInvalidReadingValue
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidReadingValue
	}
	return v, nil
}

func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, ErrInvalidReadingDate
	}
	return t, nil
}

// DaysBetween counts whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}
