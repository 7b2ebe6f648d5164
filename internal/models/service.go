package models

import "time"

// DefaultServiceDuration is used when a service is created without a duration.
const DefaultServiceDuration = 60

// Service is a labor position of the catalog. Deleting one only deactivates it.
type Service struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description,omitempty"`
	Category    string  `gorm:"size:100;not null;index" json:"category"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Duration    int     `gorm:"column:duration_minutes;not null;default:60" json:"duration"`
	LaborRate   float64 `gorm:"type:decimal(10,2);not null;default:0" json:"labor_rate"`
	IsActive    bool    `gorm:"not null;default:true;index" json:"is_active"`
}
