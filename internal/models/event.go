package models

import "time"

// Event carries the pass inventory counters. TotalPasses, AvailablePasses and
// SoldPasses are mutated only inside the same transaction as the Pass row they
// summarize, so TotalPasses = AvailablePasses + SoldPasses always holds.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description,omitempty"`
	EventDate   time.Time `json:"event_date"`
	BasePrice   float64   `json:"base_price"`
	Active      bool      `gorm:"not null;default:true" json:"active"`

	TotalPasses     int `gorm:"not null;default:0" json:"total_passes"`
	AvailablePasses int `gorm:"not null;default:0" json:"available_passes"`
	SoldPasses      int `gorm:"not null;default:0" json:"sold_passes"`

	Version   int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
