package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the storage and wire format of calendar dates.
const DateLayout = "2006-01-02"

// All returns every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Setting{},
		&NumberSequence{},
		&Customer{},
		&Vehicle{},
		&Product{},
		&Service{},
		&Estimate{},
		&EstimateItem{},
		&Invoice{},
		&InvoiceItem{},
	}
}

// RoundCents rounds half away from zero to two decimals.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// LineTotal returns quantity × unit price rounded to cents.
func LineTotal(quantity, unitPrice float64) float64 {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice)).Round(2).InexactFloat64()
}

// ParseDate accepts YYYY-MM-DD and RFC 3339 timestamps.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Today returns the current date in storage format.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}
