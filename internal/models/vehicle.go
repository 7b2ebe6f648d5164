package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// VehicleStatus tracks a vehicle of the trading stock or a customer car in the shop.
type VehicleStatus string

const (
	VehicleStatusInventory VehicleStatus = "inventory"
	VehicleStatusSold      VehicleStatus = "sold"
	VehicleStatusReserved  VehicleStatus = "reserved"
	VehicleStatusRepair    VehicleStatus = "repair"
)

// VehicleStatuses lists the accepted status values.
var VehicleStatuses = []string{
	string(VehicleStatusInventory),
	string(VehicleStatusSold),
	string(VehicleStatusReserved),
	string(VehicleStatusRepair),
}

// Vehicle is either a customer car or unassigned trading inventory.
type Vehicle struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CustomerID *uint     `gorm:"index" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"-"`

	Brand        string `gorm:"size:100;not null" json:"brand"`
	Model        string `gorm:"size:100;not null" json:"model"`
	Year         int    `json:"year,omitempty"`
	LicensePlate string `gorm:"size:20;index" json:"license_plate,omitempty"`
	VIN          string `gorm:"column:vin;size:17" json:"vin,omitempty"`
	Mileage      int    `json:"mileage,omitempty"`

	PurchasePrice float64 `gorm:"type:decimal(10,2);not null;default:0" json:"purchase_price"`
	SalePrice     float64 `gorm:"type:decimal(10,2);not null;default:0" json:"sale_price"`
	PurchaseDate  string  `gorm:"size:10" json:"purchase_date,omitempty"`
	SaleDate      string  `gorm:"size:10" json:"sale_date,omitempty"`

	Status VehicleStatus `gorm:"size:20;not null;default:'inventory';index" json:"status"`
	Notes  string        `gorm:"type:text" json:"notes,omitempty"`
}

// IsSold returns true once the vehicle left the stock.
func (v *Vehicle) IsSold() bool {
	return v.Status == VehicleStatusSold
}

// Profit is sale minus purchase price; zero unless the vehicle is sold with a price.
func (v *Vehicle) Profit() float64 {
	if !v.IsSold() || v.SalePrice <= 0 {
		return 0
	}
	return decimal.NewFromFloat(v.SalePrice).Sub(decimal.NewFromFloat(v.PurchasePrice)).Round(2).InexactFloat64()
}

// Info returns "brand model (plate)" as shown in document lists.
func (v *Vehicle) Info() string {
	name := strings.TrimSpace(v.Brand + " " + v.Model)
	if v.LicensePlate == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, v.LicensePlate)
}
