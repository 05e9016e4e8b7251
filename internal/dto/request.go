package dto

import (
	"time"

	"github.com/packed-go/ticketing-service/internal/qr"
	"github.com/packed-go/ticketing-service/internal/service"
)

type CreateEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date"`
	BasePrice   float64   `json:"base_price"`
}

type SetEventActiveRequest struct {
	Active bool `json:"active"`
}

type GeneratePassesRequest struct {
	Quantity int `json:"quantity"`
}

type SellPassRequest struct {
	UserID uint `json:"user_id"`
}

type IssueTicketRequest struct {
	EventID      uint                      `json:"event_id"`
	UserID       uint                      `json:"user_id"`
	Consumptions []service.ConsumptionLine `json:"consumptions"`
}

type ValidateEntryRequest struct {
	EventID uint       `json:"event_id"`
	Payload qr.Payload `json:"payload"`
}

type ValidateConsumptionRequest struct {
	EventID  uint       `json:"event_id"`
	Quantity int        `json:"quantity"`
	Payload  qr.Payload `json:"payload"`
}
