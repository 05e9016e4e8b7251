package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/packed-go/ticketing-service/internal/repository"
	"github.com/packed-go/ticketing-service/pkg/rabbitmq"
	"gorm.io/gorm"
)

// EntryRedemption reports a successful gate entry.
type EntryRedemption struct {
	TicketID   uint      `json:"ticket_id"`
	UserID     uint      `json:"user_id"`
	EventID    uint      `json:"event_id"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

// DetailRedemption reports how much of a line item was consumed and what is
// left.
type DetailRedemption struct {
	DetailID         uint `json:"detail_id"`
	ConsumptionID    uint `json:"consumption_id"`
	QuantityRedeemed int  `json:"quantity_redeemed"`
	Remaining        int  `json:"remaining_quantity"`
	FullyRedeemed    bool `json:"fully_redeemed"`
}

// RedemptionService guarantees at-most-once consumption of each credential:
// entry tickets flip redeemed exactly once, and a detail's lifetime redeemed
// quantity never exceeds the quantity frozen at issuance. Both transitions run
// under a row lock so the first transaction to commit wins and everyone else
// observes the post-transition state.
type RedemptionService interface {
	RedeemEntry(ctx context.Context, ticketID uint) (*EntryRedemption, error)
	RedeemDetail(ctx context.Context, detailID uint, quantity int) (*DetailRedemption, error)
}

type redemptionService struct {
	ticketRepo repository.TicketRepository
	passRepo   repository.PassRepository
	eventRepo  repository.EventRepository
	detailRepo repository.DetailRepository
	publisher  *rabbitmq.Publisher
	runner     txRunner
}

func NewRedemptionService(
	ticketRepo repository.TicketRepository,
	passRepo repository.PassRepository,
	eventRepo repository.EventRepository,
	detailRepo repository.DetailRepository,
	publisher *rabbitmq.Publisher,
	maxRetries int,
	retryDelay time.Duration,
) RedemptionService {
	return &redemptionService{
		ticketRepo: ticketRepo,
		passRepo:   passRepo,
		eventRepo:  eventRepo,
		detailRepo: detailRepo,
		publisher:  publisher,
		runner:     newTxRunner(ticketRepo.GetDB(), maxRetries, retryDelay),
	}
}

func (s *redemptionService) RedeemEntry(ctx context.Context, ticketID uint) (*EntryRedemption, error) {
	var result *EntryRedemption

	err := s.runner.run(ctx, func(tx *gorm.DB) error {
		ticket, err := s.ticketRepo.FindByIDForUpdate(ctx, tx, ticketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return err
		}

		if !ticket.Active {
			return ErrTicketInactive
		}
		if ticket.Redeemed {
			// RedeemedAt is always set together with the flag.
			return &AlreadyRedeemedError{RedeemedAt: *ticket.RedeemedAt}
		}

		pass, err := s.passRepo.FindByID(ctx, ticket.PassID)
		if err != nil {
			return err
		}
		event, err := s.eventRepo.FindByID(ctx, pass.EventID)
		if err != nil {
			return err
		}
		if !event.Active {
			return ErrEventInactive
		}

		now := time.Now()
		ticket.Redeemed = true
		ticket.RedeemedAt = &now
		if err := s.ticketRepo.Save(ctx, tx, ticket); err != nil {
			return err
		}

		result = &EntryRedemption{
			TicketID:   ticket.ID,
			UserID:     ticket.UserID,
			EventID:    event.ID,
			RedeemedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish("ticket.redeemed", result); err != nil {
			log.Printf("[RedemptionService] publish ticket.redeemed failed: %v", err)
		}
	}
	return result, nil
}

func (s *redemptionService) RedeemDetail(ctx context.Context, detailID uint, quantity int) (*DetailRedemption, error) {
	if quantity <= 0 {
		return nil, ErrInsufficientQuantity
	}

	var result *DetailRedemption

	err := s.runner.run(ctx, func(tx *gorm.DB) error {
		detail, err := s.detailRepo.FindByIDForUpdate(ctx, tx, detailID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDetailNotFound
			}
			return err
		}

		if !detail.Active {
			return ErrDetailInactive
		}
		if detail.Redeem {
			return ErrDetailFullyRedeemed
		}
		if quantity > detail.Quantity {
			return ErrInsufficientQuantity
		}

		detail.Quantity -= quantity
		if detail.Quantity == 0 {
			detail.Redeem = true
		}
		if err := s.detailRepo.Save(ctx, tx, detail); err != nil {
			return err
		}

		result = &DetailRedemption{
			DetailID:         detail.ID,
			ConsumptionID:    detail.ConsumptionID,
			QuantityRedeemed: quantity,
			Remaining:        detail.Quantity,
			FullyRedeemed:    detail.Redeem,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish("consumption.redeemed", result); err != nil {
			log.Printf("[RedemptionService] publish consumption.redeemed failed: %v", err)
		}
	}
	return result, nil
}
