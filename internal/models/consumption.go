package models

import "time"

// Consumption is a local read model of the upstream catalog, synced over
// RabbitMQ. Price here is the current catalog price; tickets freeze their own
// copy at issuance.
type Consumption struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Price     float64   `gorm:"not null" json:"price"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}
