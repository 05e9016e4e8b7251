package models

import "time"

// Ticket binds a sold Pass to one buyer and one consumption bundle. It is
// created in the same transaction as the pass sale, so a Ticket without both
// links is never observable.
type Ticket struct {
	ID                  uint `gorm:"primaryKey" json:"id"`
	UserID              uint `gorm:"not null;index" json:"user_id"`
	PassID              uint `gorm:"not null;uniqueIndex" json:"pass_id"`
	TicketConsumptionID uint `gorm:"not null;uniqueIndex" json:"ticket_consumption_id"`

	Active   bool `gorm:"not null;default:true" json:"active"`
	Redeemed bool `gorm:"not null;default:false" json:"redeemed"`

	RedeemedAt  *time.Time `json:"redeemed_at,omitempty"`
	PurchasedAt time.Time  `json:"purchased_at"`

	Version   int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketConsumption is the bundle of pre-paid line items attached to a Ticket.
// Details are composition: they cannot outlive the parent.
type TicketConsumption struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`

	Details []TicketConsumptionDetail `gorm:"foreignKey:TicketConsumptionID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
}

// TicketConsumptionDetail tracks the remaining redeemable quantity of one line
// item. Invariant: Redeem == (Quantity == 0), and Quantity never exceeds the
// quantity frozen at issuance.
type TicketConsumptionDetail struct {
	ID                  uint `gorm:"primaryKey" json:"id"`
	TicketConsumptionID uint `gorm:"not null;index" json:"ticket_consumption_id"`
	ConsumptionID       uint `gorm:"not null" json:"consumption_id"`

	Quantity        int     `gorm:"not null" json:"quantity"`
	PriceAtPurchase float64 `gorm:"not null" json:"price_at_purchase"`

	Redeem bool `gorm:"not null;default:false" json:"redeem"`
	Active bool `gorm:"not null;default:true" json:"active"`

	Version   int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
