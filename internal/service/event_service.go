package service

import (
	"context"
	"errors"

	"github.com/packed-go/ticketing-service/internal/cache"
	"github.com/packed-go/ticketing-service/internal/models"
	"github.com/packed-go/ticketing-service/internal/repository"
	"gorm.io/gorm"
)

// EventStatus is the scanner-facing inventory snapshot for one event.
type EventStatus struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Active          bool   `json:"active"`
	TotalPasses     int    `json:"total_passes"`
	AvailablePasses int    `json:"available_passes"`
	SoldPasses      int    `json:"sold_passes"`
	TicketsIssued   int64  `json:"tickets_issued"`
	TicketsRedeemed int64  `json:"tickets_redeemed"`
}

type EventService interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uint) (*models.Event, error)
	SetActive(ctx context.Context, id uint, active bool) error
	GetStatus(ctx context.Context, id uint) (*EventStatus, error)
}

type eventService struct {
	eventRepo   repository.EventRepository
	ticketRepo  repository.TicketRepository
	statusCache *cache.StatusCache
}

func NewEventService(eventRepo repository.EventRepository, ticketRepo repository.TicketRepository, statusCache *cache.StatusCache) EventService {
	return &eventService{eventRepo: eventRepo, ticketRepo: ticketRepo, statusCache: statusCache}
}

func (s *eventService) CreateEvent(ctx context.Context, event *models.Event) error {
	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	return event, err
}

func (s *eventService) SetActive(ctx context.Context, id uint, active bool) error {
	err := s.eventRepo.SetActive(ctx, id, active)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEventNotFound
	}
	if err == nil {
		s.statusCache.Invalidate(ctx, id)
	}
	return err
}

func (s *eventService) GetStatus(ctx context.Context, id uint) (*EventStatus, error) {
	var status EventStatus
	if s.statusCache.Get(ctx, id, &status) {
		return &status, nil
	}

	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	issued, err := s.ticketRepo.CountByEventID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	redeemed, err := s.ticketRepo.CountByEventID(ctx, id, true)
	if err != nil {
		return nil, err
	}

	status = EventStatus{
		ID:              event.ID,
		Name:            event.Name,
		Active:          event.Active,
		TotalPasses:     event.TotalPasses,
		AvailablePasses: event.AvailablePasses,
		SoldPasses:      event.SoldPasses,
		TicketsIssued:   issued,
		TicketsRedeemed: redeemed,
	}
	s.statusCache.Set(ctx, id, &status)
	return &status, nil
}
