package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/packed-go/ticketing-service/internal/qr"
)

// EntryValidationResult is what a scanning device displays. Business
// rejections land here as Valid=false with a final, user-displayable reason;
// they are never retryable errors.
type EntryValidationResult struct {
	Valid   bool             `json:"valid"`
	Message string           `json:"message"`
	Entry   *EntryRedemption `json:"entry,omitempty"`
}

type ConsumptionValidationResult struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Redemption *DetailRedemption `json:"redemption,omitempty"`
}

// ValidationService is the scanner-facing gate: it verifies the credential's
// signature before trusting any field of it, then hands the identified row to
// the redemption engine.
type ValidationService interface {
	ValidateEntry(ctx context.Context, payload qr.Payload, scannerEventID uint) (*EntryValidationResult, error)
	ValidateConsumption(ctx context.Context, payload qr.Payload, scannerEventID uint, quantity int) (*ConsumptionValidationResult, error)
}

type validationService struct {
	signer     *qr.Signer
	redemption RedemptionService
}

func NewValidationService(signer *qr.Signer, redemption RedemptionService) ValidationService {
	return &validationService{signer: signer, redemption: redemption}
}

func (s *validationService) ValidateEntry(ctx context.Context, payload qr.Payload, scannerEventID uint) (*EntryValidationResult, error) {
	if reason, ok := s.checkPayload(payload, qr.TypeEntry, scannerEventID); !ok {
		return &EntryValidationResult{Valid: false, Message: reason}, nil
	}

	entry, err := s.redemption.RedeemEntry(ctx, payload.TicketID)
	if err != nil {
		reason, terminal := entryRejection(err)
		if !terminal {
			return nil, err
		}
		return &EntryValidationResult{Valid: false, Message: reason}, nil
	}

	return &EntryValidationResult{
		Valid:   true,
		Message: "entry authorized",
		Entry:   entry,
	}, nil
}

func (s *validationService) ValidateConsumption(ctx context.Context, payload qr.Payload, scannerEventID uint, quantity int) (*ConsumptionValidationResult, error) {
	if reason, ok := s.checkPayload(payload, qr.TypeConsumption, scannerEventID); !ok {
		return &ConsumptionValidationResult{Success: false, Message: reason}, nil
	}
	if quantity <= 0 {
		quantity = 1
	}

	redemption, err := s.redemption.RedeemDetail(ctx, *payload.DetailID, quantity)
	if err != nil {
		reason, terminal := consumptionRejection(err)
		if !terminal {
			return nil, err
		}
		return &ConsumptionValidationResult{Success: false, Message: reason}, nil
	}

	msg := "consumption redeemed"
	if !redemption.FullyRedeemed {
		msg = fmt.Sprintf("consumption partially redeemed, %d remaining", redemption.Remaining)
	}
	return &ConsumptionValidationResult{
		Success:    true,
		Message:    msg,
		Redemption: redemption,
	}, nil
}

// checkPayload runs the signature gate and the cheap structural checks. The
// signature is verified before any other field is trusted.
func (s *validationService) checkPayload(payload qr.Payload, wantType string, scannerEventID uint) (string, bool) {
	if err := s.signer.Verify(payload); err != nil {
		switch {
		case errors.Is(err, qr.ErrExpired):
			return "qr code expired", false
		case errors.Is(err, qr.ErrInvalidSignature):
			return "invalid qr signature", false
		default:
			return "malformed qr code", false
		}
	}
	if payload.Type != wantType {
		return "wrong credential type", false
	}
	if payload.EventID != scannerEventID {
		return "ticket does not belong to this event", false
	}
	return "", true
}

// entryRejection maps engine errors to display strings. The second return is
// false for systemic failures that should surface as real errors.
func entryRejection(err error) (string, bool) {
	var already *AlreadyRedeemedError
	switch {
	case errors.As(err, &already):
		return fmt.Sprintf("already used at %s", already.RedeemedAt.Format("15:04")), true
	case errors.Is(err, ErrTicketNotFound):
		return "ticket not found", true
	case errors.Is(err, ErrTicketInactive):
		return "ticket is not active", true
	case errors.Is(err, ErrEventInactive):
		return "event is deactivated", true
	default:
		return "", false
	}
}

func consumptionRejection(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrDetailNotFound):
		return "consumption not found", true
	case errors.Is(err, ErrDetailInactive):
		return "consumption is not active", true
	case errors.Is(err, ErrDetailFullyRedeemed):
		return "consumption already fully redeemed", true
	case errors.Is(err, ErrInsufficientQuantity):
		return "requested quantity exceeds remaining quantity", true
	default:
		return "", false
	}
}
