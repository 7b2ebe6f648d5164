package models

import "time"

// Setting value types.
const (
	SettingTypeString  = "string"
	SettingTypeNumber  = "number"
	SettingTypeBoolean = "boolean"
	SettingTypeEmail   = "email"
	SettingTypeURL     = "url"
	SettingTypeJSON    = "json"
)

// Setting is one typed configuration value, unique per (category, key).
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`

	Category    string `gorm:"size:50;not null;uniqueIndex:idx_settings_category_key" json:"category"`
	Key         string `gorm:"size:100;not null;uniqueIndex:idx_settings_category_key" json:"key"`
	Value       string `gorm:"type:text;not null" json:"value"`
	Type        string `gorm:"size:20;not null;default:'string'" json:"type"`
	Description string `gorm:"size:255" json:"description,omitempty"`
}

// NumberSequence is the last number handed out for a document prefix in a year.
type NumberSequence struct {
	ID     uint   `gorm:"primaryKey"`
	Prefix string `gorm:"size:10;not null;uniqueIndex:idx_number_sequences_prefix_year"`
	Year   int    `gorm:"not null;uniqueIndex:idx_number_sequences_prefix_year"`
	Last   int64  `gorm:"not null;default:0"`
}
