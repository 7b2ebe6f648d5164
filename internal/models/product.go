package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold is the stock level at or below which a product is flagged.
const DefaultLowStockThreshold = 5

// Product is a part of the catalog with its stock level.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string  `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int     `gorm:"not null;default:0" json:"stock"`
	Category    string  `gorm:"size:100;not null;index" json:"category"`
	Description string  `gorm:"type:text" json:"description,omitempty"`
}

// StockValue is price × stock.
func (p *Product) StockValue() float64 {
	return decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.Stock))).Round(2).InexactFloat64()
}

// IsLowStock reports whether stock is at or below threshold.
func (p *Product) IsLowStock(threshold int) bool {
	return p.Stock <= threshold
}
