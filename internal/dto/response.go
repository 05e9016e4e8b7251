package dto

import (
	"time"

	"github.com/packed-go/ticketing-service/internal/models"
)

type EventResponse struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	EventDate       time.Time `json:"event_date"`
	BasePrice       float64   `json:"base_price"`
	Active          bool      `json:"active"`
	TotalPasses     int       `json:"total_passes"`
	AvailablePasses int       `json:"available_passes"`
	SoldPasses      int       `json:"sold_passes"`
	CreatedAt       time.Time `json:"created_at"`
}

type PassResponse struct {
	ID           uint       `json:"id"`
	Code         string     `json:"code"`
	EventID      uint       `json:"event_id"`
	Available    bool       `json:"available"`
	Sold         bool       `json:"sold"`
	SoldToUserID *uint      `json:"sold_to_user_id,omitempty"`
	SoldAt       *time.Time `json:"sold_at,omitempty"`
}

type TicketResponse struct {
	ID          uint       `json:"id"`
	UserID      uint       `json:"user_id"`
	PassID      uint       `json:"pass_id"`
	BundleID    uint       `json:"bundle_id"`
	Active      bool       `json:"active"`
	Redeemed    bool       `json:"redeemed"`
	RedeemedAt  *time.Time `json:"redeemed_at,omitempty"`
	PurchasedAt time.Time  `json:"purchased_at"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToEventResponse(e *models.Event) EventResponse {
	return EventResponse{
		ID:              e.ID,
		Name:            e.Name,
		Description:     e.Description,
		EventDate:       e.EventDate,
		BasePrice:       e.BasePrice,
		Active:          e.Active,
		TotalPasses:     e.TotalPasses,
		AvailablePasses: e.AvailablePasses,
		SoldPasses:      e.SoldPasses,
		CreatedAt:       e.CreatedAt,
	}
}

func ToPassResponse(p *models.Pass) PassResponse {
	return PassResponse{
		ID:           p.ID,
		Code:         p.Code,
		EventID:      p.EventID,
		Available:    p.Available,
		Sold:         p.Sold,
		SoldToUserID: p.SoldToUserID,
		SoldAt:       p.SoldAt,
	}
}

func ToTicketResponse(t *models.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		PassID:      t.PassID,
		BundleID:    t.TicketConsumptionID,
		Active:      t.Active,
		Redeemed:    t.Redeemed,
		RedeemedAt:  t.RedeemedAt,
		PurchasedAt: t.PurchasedAt,
	}
}
