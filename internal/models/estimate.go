package models

import "time"

// EstimateStatus represents the lifecycle of a cost estimate.
type EstimateStatus string

const (
	EstimateStatusDraft     EstimateStatus = "draft"
	EstimateStatusSent      EstimateStatus = "sent"
	EstimateStatusAccepted  EstimateStatus = "accepted"
	EstimateStatusRejected  EstimateStatus = "rejected"
	EstimateStatusConverted EstimateStatus = "converted"
)

// EstimateStatuses lists the accepted status values.
var EstimateStatuses = []string{
	string(EstimateStatusDraft),
	string(EstimateStatusSent),
	string(EstimateStatusAccepted),
	string(EstimateStatusRejected),
	string(EstimateStatusConverted),
}

// Estimate is a non-binding quotation (Kostenvoranschlag).
type Estimate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CustomerID uint      `gorm:"index;not null" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"-"`
	VehicleID  *uint     `gorm:"index" json:"vehicle_id"`
	Vehicle    *Vehicle  `gorm:"foreignKey:VehicleID;constraint:OnDelete:SET NULL" json:"-"`

	EstimateNumber string         `gorm:"size:50;uniqueIndex" json:"estimate_number"`
	Date           string         `gorm:"size:10" json:"date"`
	ValidUntil     string         `gorm:"size:10" json:"valid_until,omitempty"`
	Status         EstimateStatus `gorm:"size:20;not null;default:'draft';index" json:"status"`
	TotalAmount    float64        `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`
	Description    string         `gorm:"type:text" json:"description,omitempty"`
	Notes          string         `gorm:"type:text" json:"notes,omitempty"`

	Items []EstimateItem `gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// IsConverted returns true once an invoice was created from the estimate.
func (e *Estimate) IsConverted() bool {
	return e.Status == EstimateStatusConverted
}

// Lines returns the items as document lines.
func (e *Estimate) Lines() []Line {
	lines := make([]Line, len(e.Items))
	for i := range e.Items {
		lines[i] = e.Items[i].Line
	}
	return lines
}

// EstimateItem is a position of an estimate.
type EstimateItem struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	EstimateID uint `gorm:"index;not null" json:"estimate_id"`
	Line
}
