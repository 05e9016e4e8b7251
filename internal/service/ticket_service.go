package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/packed-go/ticketing-service/internal/cache"
	"github.com/packed-go/ticketing-service/internal/models"
	"github.com/packed-go/ticketing-service/internal/qr"
	"github.com/packed-go/ticketing-service/internal/repository"
	"github.com/packed-go/ticketing-service/pkg/rabbitmq"
	"gorm.io/gorm"
)

// ConsumptionLine is one pre-paid item requested at issuance time.
type ConsumptionLine struct {
	ConsumptionID uint `json:"consumption_id"`
	Quantity      int  `json:"quantity"`
}

// IssuedTicket is the full result of an issuance: the persisted rows plus the
// signed credentials the buyer will present at the gate and the bar.
type IssuedTicket struct {
	Ticket         *models.Ticket            `json:"ticket"`
	Pass           *models.Pass              `json:"pass"`
	Bundle         *models.TicketConsumption `json:"bundle"`
	EntryQR        qr.Payload                `json:"entry_qr"`
	ConsumptionQRs map[uint]qr.Payload       `json:"consumption_qrs"` // keyed by detail id
}

type TicketService interface {
	IssueTicket(ctx context.Context, eventID, userID uint, lines []ConsumptionLine) (*IssuedTicket, error)
	GetTicket(ctx context.Context, id uint) (*models.Ticket, error)
	GetTicketByPassCode(ctx context.Context, code string) (*models.Ticket, error)
	GetUserTickets(ctx context.Context, userID uint) ([]models.Ticket, error)
	GetBundle(ctx context.Context, bundleID uint) (*models.TicketConsumption, error)
}

type ticketService struct {
	ticketRepo      repository.TicketRepository
	passRepo        repository.PassRepository
	eventRepo       repository.EventRepository
	detailRepo      repository.DetailRepository
	consumptionRepo repository.ConsumptionRepository
	signer          *qr.Signer
	publisher       *rabbitmq.Publisher
	statusCache     *cache.StatusCache
	runner          txRunner
}

func NewTicketService(
	ticketRepo repository.TicketRepository,
	passRepo repository.PassRepository,
	eventRepo repository.EventRepository,
	detailRepo repository.DetailRepository,
	consumptionRepo repository.ConsumptionRepository,
	signer *qr.Signer,
	publisher *rabbitmq.Publisher,
	statusCache *cache.StatusCache,
	maxRetries int,
	retryDelay time.Duration,
) TicketService {
	return &ticketService{
		ticketRepo:      ticketRepo,
		passRepo:        passRepo,
		eventRepo:       eventRepo,
		detailRepo:      detailRepo,
		consumptionRepo: consumptionRepo,
		signer:          signer,
		publisher:       publisher,
		statusCache:     statusCache,
		runner:          newTxRunner(ticketRepo.GetDB(), maxRetries, retryDelay),
	}
}

// IssueTicket allocates an available pass to the buyer and creates the Ticket,
// its consumption bundle and all details in one transaction. Any inactive or
// unknown catalog item aborts the whole issuance; no partial ticket is ever
// observable.
func (s *ticketService) IssueTicket(ctx context.Context, eventID, userID uint, lines []ConsumptionLine) (*IssuedTicket, error) {
	var (
		ticket *models.Ticket
		pass   *models.Pass
		bundle *models.TicketConsumption
	)

	err := s.runner.run(ctx, func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if !event.Active {
			return ErrEventInactive
		}
		if event.AvailablePasses <= 0 {
			return ErrNoPassesAvailable
		}

		p, err := s.passRepo.FindFirstAvailableForUpdate(ctx, tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoPassesAvailable
			}
			return err
		}

		// Validate every line before creating anything; prices are frozen
		// from the catalog as it stands right now.
		details := make([]models.TicketConsumptionDetail, 0, len(lines))
		for _, line := range lines {
			if line.Quantity <= 0 {
				return ErrInvalidItem
			}
			item, err := s.consumptionRepo.FindByID(ctx, tx, line.ConsumptionID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrInvalidItem
				}
				return err
			}
			if !item.Active {
				return ErrInvalidItem
			}
			details = append(details, models.TicketConsumptionDetail{
				ConsumptionID:   item.ID,
				Quantity:        line.Quantity,
				PriceAtPurchase: item.Price,
				Active:          true,
			})
		}

		b := &models.TicketConsumption{Active: true, Details: details}
		if err := s.detailRepo.CreateBundle(ctx, tx, b); err != nil {
			return err
		}

		now := time.Now()
		t := &models.Ticket{
			UserID:              userID,
			PassID:              p.ID,
			TicketConsumptionID: b.ID,
			Active:              true,
			PurchasedAt:         now,
		}
		if err := s.ticketRepo.Create(ctx, tx, t); err != nil {
			return err
		}

		p.Sold = true
		p.Available = false
		p.SoldToUserID = &userID
		p.SoldAt = &now
		if err := s.passRepo.Save(ctx, tx, p); err != nil {
			return err
		}

		event.SoldPasses++
		event.AvailablePasses--
		if err := s.eventRepo.Save(ctx, tx, event); err != nil {
			return err
		}

		ticket, pass, bundle = t, p, b
		return nil
	})
	if err != nil {
		return nil, err
	}

	issued := &IssuedTicket{
		Ticket:         ticket,
		Pass:           pass,
		Bundle:         bundle,
		EntryQR:        s.signer.NewEntryPayload(ticket.ID, userID, eventID),
		ConsumptionQRs: make(map[uint]qr.Payload, len(bundle.Details)),
	}
	for _, d := range bundle.Details {
		issued.ConsumptionQRs[d.ID] = s.signer.NewConsumptionPayload(ticket.ID, d.ID, userID, eventID)
	}

	s.statusCache.Invalidate(ctx, eventID)

	if s.publisher != nil {
		if err := s.publisher.Publish("ticket.sold", map[string]any{
			"ticket_id": ticket.ID,
			"pass_code": pass.Code,
			"event_id":  eventID,
			"user_id":   userID,
			"sold_at":   pass.SoldAt,
		}); err != nil {
			log.Printf("[TicketService] publish ticket.sold failed: %v", err)
		}
	}

	return issued, nil
}

func (s *ticketService) GetTicket(ctx context.Context, id uint) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTicketNotFound
	}
	return ticket, err
}

func (s *ticketService) GetTicketByPassCode(ctx context.Context, code string) (*models.Ticket, error) {
	pass, err := s.passRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	ticket, err := s.ticketRepo.FindByPassID(ctx, pass.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTicketNotFound
	}
	return ticket, err
}

func (s *ticketService) GetUserTickets(ctx context.Context, userID uint) ([]models.Ticket, error) {
	return s.ticketRepo.FindByUserID(ctx, userID)
}

func (s *ticketService) GetBundle(ctx context.Context, bundleID uint) (*models.TicketConsumption, error) {
	bundle, err := s.detailRepo.FindBundleByID(ctx, bundleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDetailNotFound
	}
	return bundle, err
}
