package models

import "time"

// InvoiceStatus represents the status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// InvoiceStatuses lists the accepted status values.
var InvoiceStatuses = []string{
	string(InvoiceStatusPending),
	string(InvoiceStatusPaid),
}

// Invoice represents a billing invoice (Rechnung).
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CustomerID uint      `gorm:"index;not null" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"-"`
	VehicleID  *uint     `gorm:"index" json:"vehicle_id"`
	Vehicle    *Vehicle  `gorm:"foreignKey:VehicleID;constraint:OnDelete:SET NULL" json:"-"`

	// EstimateID is set when the invoice was created by converting an estimate.
	EstimateID *uint `gorm:"index" json:"estimate_id,omitempty"`

	InvoiceNumber string        `gorm:"size:50;uniqueIndex" json:"invoice_number"`
	Date          string        `gorm:"size:10" json:"date"`
	Amount        float64       `gorm:"type:decimal(10,2);not null;default:0" json:"amount"`
	Status        InvoiceStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Description   string        `gorm:"type:text" json:"description,omitempty"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// IsPaid returns true if the invoice has been paid.
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// Lines returns the items as document lines.
func (i *Invoice) Lines() []Line {
	lines := make([]Line, len(i.Items))
	for n := range i.Items {
		lines[n] = i.Items[n].Line
	}
	return lines
}

// InvoiceItem is a position of an invoice.
type InvoiceItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index;not null" json:"invoice_id"`
	Line
}
