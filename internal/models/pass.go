package models

import "time"

// Pass is a uniquely-coded admission unit. It is created once, transitions
// available→sold exactly once, and is never deleted.
type Pass struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Code    string `gorm:"size:50;not null;uniqueIndex" json:"code"`
	EventID uint   `gorm:"not null;index" json:"event_id"`

	Active    bool `gorm:"not null;default:true" json:"active"`
	Available bool `gorm:"not null;default:true" json:"available"`
	Sold      bool `gorm:"not null;default:false" json:"sold"`

	SoldToUserID *uint      `json:"sold_to_user_id,omitempty"`
	SoldAt       *time.Time `json:"sold_at,omitempty"`

	Version   int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
