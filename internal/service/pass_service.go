package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/packed-go/ticketing-service/internal/models"
	"github.com/packed-go/ticketing-service/internal/repository"
	"gorm.io/gorm"
)

// PassService is the locked allocator: it creates passes against an event's
// inventory and sells them to exactly one buyer, mutating the event counters
// in the same transaction as the pass row.
type PassService interface {
	AllocatePass(ctx context.Context, eventID uint) (*models.Pass, error)
	GeneratePasses(ctx context.Context, eventID uint, quantity int) ([]models.Pass, error)
	SellPass(ctx context.Context, passID, userID uint) (*models.Pass, error)
	SellPassByCode(ctx context.Context, code string, userID uint) (*models.Pass, error)
	GetPass(ctx context.Context, id uint) (*models.Pass, error)
	GetPassByCode(ctx context.Context, code string) (*models.Pass, error)
	ListEventPasses(ctx context.Context, eventID uint, availableOnly bool) ([]models.Pass, error)
	ListUserPasses(ctx context.Context, userID uint) ([]models.Pass, error)
}

type passService struct {
	passRepo  repository.PassRepository
	eventRepo repository.EventRepository
	runner    txRunner
}

func NewPassService(passRepo repository.PassRepository, eventRepo repository.EventRepository, maxRetries int, retryDelay time.Duration) PassService {
	return &passService{
		passRepo:  passRepo,
		eventRepo: eventRepo,
		runner:    newTxRunner(passRepo.GetDB(), maxRetries, retryDelay),
	}
}

// AllocatePass creates a single pass for the event. The event row is locked so
// the Total/Available counters move together with the insert.
func (s *passService) AllocatePass(ctx context.Context, eventID uint) (*models.Pass, error) {
	passes, err := s.GeneratePasses(ctx, eventID, 1)
	if err != nil {
		return nil, err
	}
	return &passes[0], nil
}

func (s *passService) GeneratePasses(ctx context.Context, eventID uint, quantity int) ([]models.Pass, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	var result []models.Pass
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

		passes := make([]models.Pass, 0, quantity)
		for i := 0; i < quantity; i++ {
			code, err := s.uniqueCode(ctx, tx, eventID)
			if err != nil {
				return err
			}
			passes = append(passes, models.Pass{
				Code:      code,
				EventID:   eventID,
				Active:    true,
				Available: true,
			})
		}
		if err := s.passRepo.CreateBatch(ctx, tx, passes); err != nil {
			return err
		}

		event.TotalPasses += quantity
		event.AvailablePasses += quantity
		if err := s.eventRepo.Save(ctx, tx, event); err != nil {
			return err
		}

		result = passes
		return nil
	})
	return result, err
}

func (s *passService) SellPass(ctx context.Context, passID, userID uint) (*models.Pass, error) {
	var result *models.Pass
	err := s.runner.run(ctx, func(tx *gorm.DB) error {
		pass, err := s.passRepo.FindByIDForUpdate(ctx, tx, passID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPassNotFound
			}
			return err
		}
		return s.sellLocked(ctx, tx, pass, userID, &result)
	})
	return result, err
}

func (s *passService) SellPassByCode(ctx context.Context, code string, userID uint) (*models.Pass, error) {
	var result *models.Pass
	err := s.runner.run(ctx, func(tx *gorm.DB) error {
		pass, err := s.passRepo.FindByCodeForUpdate(ctx, tx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPassNotFound
			}
			return err
		}
		return s.sellLocked(ctx, tx, pass, userID, &result)
	})
	return result, err
}

// sellLocked flips the locked pass to sold and moves the event counters in the
// same transaction. Re-invoking it for an already-sold pass is rejected, which
// is what prevents double-selling under a retried client request.
func (s *passService) sellLocked(ctx context.Context, tx *gorm.DB, pass *models.Pass, userID uint, out **models.Pass) error {
	if pass.Sold {
		return ErrPassAlreadySold
	}
	if !pass.Available || !pass.Active {
		return ErrPassNotAvailable
	}

	event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, pass.EventID)
	if err != nil {
		return err
	}
	if !event.Active {
		return ErrEventInactive
	}

	now := time.Now()
	pass.Sold = true
	pass.Available = false
	pass.SoldToUserID = &userID
	pass.SoldAt = &now
	if err := s.passRepo.Save(ctx, tx, pass); err != nil {
		return err
	}

	event.SoldPasses++
	event.AvailablePasses--
	if err := s.eventRepo.Save(ctx, tx, event); err != nil {
		return err
	}

	*out = pass
	return nil
}

func (s *passService) GetPass(ctx context.Context, id uint) (*models.Pass, error) {
	pass, err := s.passRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPassNotFound
	}
	return pass, err
}

func (s *passService) GetPassByCode(ctx context.Context, code string) (*models.Pass, error) {
	pass, err := s.passRepo.FindByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPassNotFound
	}
	return pass, err
}

func (s *passService) ListEventPasses(ctx context.Context, eventID uint, availableOnly bool) ([]models.Pass, error) {
	return s.passRepo.FindByEventID(ctx, eventID, availableOnly)
}

func (s *passService) ListUserPasses(ctx context.Context, userID uint) ([]models.Pass, error) {
	return s.passRepo.FindByUserID(ctx, userID)
}

// uniqueCode generates a PKG-<eventId>-<millis>-<RAND8> code. Collisions are
// vanishingly rare; regenerate instead of failing the allocation.
func (s *passService) uniqueCode(ctx context.Context, tx *gorm.DB, eventID uint) (string, error) {
	for {
		code := fmt.Sprintf("PKG-%d-%d-%s", eventID, time.Now().UnixMilli(), randomSuffix())
		exists, err := s.passRepo.CodeExists(ctx, tx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}

func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(err)
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}
