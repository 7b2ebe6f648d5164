package models

import (
	"math"

	"github.com/shopspring/decimal"
)

// Item types stored alongside each line.
const (
	ItemTypeProduct = "product"
	ItemTypeService = "service"
	ItemTypeCustom  = "custom"
)

// Line holds the columns shared by estimate and invoice items. It references
// at most one of a product or a service.
type Line struct {
	ProductID   *uint   `gorm:"index" json:"product_id"`
	ServiceID   *uint   `gorm:"index" json:"service_id"`
	ItemType    string  `gorm:"size:20;not null;default:'product'" json:"item_type"`
	Description string  `gorm:"type:text" json:"description,omitempty"`
	Quantity    float64 `gorm:"type:decimal(10,3);not null;default:1" json:"quantity"`
	UnitPrice   float64 `gorm:"type:decimal(10,2);not null;default:0" json:"unit_price"`
	TotalPrice  float64 `gorm:"type:decimal(10,2);not null;default:0" json:"total_price"`
}

// Kind derives the item type from the populated reference.
func (l *Line) Kind() string {
	switch {
	case l.ServiceID != nil:
		return ItemTypeService
	case l.ProductID != nil:
		return ItemTypeProduct
	default:
		return ItemTypeCustom
	}
}

// ExpectedTotal is quantity × unit price rounded to cents.
func (l *Line) ExpectedTotal() float64 {
	return LineTotal(l.Quantity, l.UnitPrice)
}

// Normalize fills the derived columns. It reports false when a non-zero
// client total deviates from quantity × unit price by more than a cent.
func (l *Line) Normalize() bool {
	want := l.ExpectedTotal()
	ok := l.TotalPrice == 0 || math.Abs(l.TotalPrice-want) <= 0.01+1e-9
	l.TotalPrice = want
	l.ItemType = l.Kind()
	return ok
}

// SumLines adds up the stored line totals.
func SumLines(lines []Line) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.TotalPrice))
	}
	return sum.Round(2).InexactFloat64()
}
