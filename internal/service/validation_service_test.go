package service

import (
	"context"
	"testing"
	"time"

	"github.com/packed-go/ticketing-service/internal/qr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock RedemptionService ---

type mockRedemption struct {
	redeemEntryFn  func(ctx context.Context, ticketID uint) (*EntryRedemption, error)
	redeemDetailFn func(ctx context.Context, detailID uint, quantity int) (*DetailRedemption, error)
}

func (m *mockRedemption) RedeemEntry(ctx context.Context, ticketID uint) (*EntryRedemption, error) {
	return m.redeemEntryFn(ctx, ticketID)
}

func (m *mockRedemption) RedeemDetail(ctx context.Context, detailID uint, quantity int) (*DetailRedemption, error) {
	return m.redeemDetailFn(ctx, detailID, quantity)
}

// --- Tests ---

var testSigner = qr.NewSigner("validation-test-secret", 24*time.Hour)

func TestValidateEntry_Success(t *testing.T) {
	redeemed := time.Now()
	svc := NewValidationService(testSigner, &mockRedemption{
		redeemEntryFn: func(ctx context.Context, ticketID uint) (*EntryRedemption, error) {
			assert.Equal(t, uint(42), ticketID)
			return &EntryRedemption{TicketID: 42, UserID: 7, EventID: 3, RedeemedAt: redeemed}, nil
		},
	})

	payload := testSigner.NewEntryPayload(42, 7, 3)
	result, err := svc.ValidateEntry(context.Background(), payload, 3)

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "entry authorized", result.Message)
	require.NotNil(t, result.Entry)
	assert.Equal(t, uint(42), result.Entry.TicketID)
}

func TestValidateEntry_AlreadyUsed(t *testing.T) {
	redeemedAt := time.Date(2026, 8, 28, 19, 42, 0, 0, time.Local)
	svc := NewValidationService(testSigner, &mockRedemption{
		redeemEntryFn: func(ctx context.Context, ticketID uint) (*EntryRedemption, error) {
			return nil, &AlreadyRedeemedError{RedeemedAt: redeemedAt}
		},
	})

	payload := testSigner.NewEntryPayload(42, 7, 3)
	result, err := svc.ValidateEntry(context.Background(), payload, 3)

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "already used at 19:42", result.Message)
}

func TestValidateEntry_WrongEvent(t *testing.T) {
	svc := NewValidationService(testSigner, &mockRedemption{
		redeemEntryFn: func(ctx context.Context, ticketID uint) (*EntryRedemption, error) {
			t.Fatal("redemption must not run for a wrong-event credential")
			return nil, nil
		},
	})

	payload := testSigner.NewEntryPayload(42, 7, 3)
	result, err := svc.ValidateEntry(context.Background(), payload, 99)

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "ticket does not belong to this event", result.Message)
}

// A forged payload that is also expired must report the signature failure:
// nothing in an unverified payload is trusted, including the expiry.
func TestValidateEntry_SignatureCheckedBeforeExpiry(t *testing.T) {
	svc := NewValidationService(testSigner, &mockRedemption{
		redeemEntryFn: func(ctx context.Context, ticketID uint) (*EntryRedemption, error) {
			t.Fatal("redemption must not run for a forged credential")
			return nil, nil
		},
	})

	payload := testSigner.NewEntryPayload(42, 7, 3)
	payload.ExpiresAt = time.Now().Add(-time.Hour).UnixMilli() // invalidates the signature too

	result, err := svc.ValidateEntry(context.Background(), payload, 3)

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "invalid qr signature", result.Message)
}

func TestValidateEntry_Expired(t *testing.T) {
	shortSigner := qr.NewSigner("validation-test-secret", -time.Minute)
	svc := NewValidationService(shortSigner, &mockRedemption{
		redeemEntryFn: func(ctx context.Context, ticketID uint) (*EntryRedemption, error) {
			t.Fatal("redemption must not run for an expired credential")
			return nil, nil
		},
	})

	payload := shortSigner.NewEntryPayload(42, 7, 3)
	result, err := svc.ValidateEntry(context.Background(), payload, 3)

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "qr code expired", result.Message)
}

func TestValidateEntry_ConsumptionCredentialRejected(t *testing.T) {
	svc := NewValidationService(testSigner, &mockRedemption{})

	payload := testSigner.NewConsumptionPayload(42, 99, 7, 3)
	result, err := svc.ValidateEntry(context.Background(), payload, 3)

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "wrong credential type", result.Message)
}

func TestValidateConsumption_PartialRedeem(t *testing.T) {
	svc := NewValidationService(testSigner, &mockRedemption{
		redeemDetailFn: func(ctx context.Context, detailID uint, quantity int) (*DetailRedemption, error) {
			assert.Equal(t, uint(99), detailID)
			assert.Equal(t, 3, quantity)
			return &DetailRedemption{
				DetailID:         99,
				ConsumptionID:    5,
				QuantityRedeemed: 3,
				Remaining:        2,
				FullyRedeemed:    false,
			}, nil
		},
	})

	payload := testSigner.NewConsumptionPayload(42, 99, 7, 3)
	result, err := svc.ValidateConsumption(context.Background(), payload, 3, 3)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "consumption partially redeemed, 2 remaining", result.Message)
	assert.Equal(t, 2, result.Redemption.Remaining)
}

func TestValidateConsumption_InsufficientQuantity(t *testing.T) {
	svc := NewValidationService(testSigner, &mockRedemption{
		redeemDetailFn: func(ctx context.Context, detailID uint, quantity int) (*DetailRedemption, error) {
			return nil, ErrInsufficientQuantity
		},
	})

	payload := testSigner.NewConsumptionPayload(42, 99, 7, 3)
	result, err := svc.ValidateConsumption(context.Background(), payload, 3, 10)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "requested quantity exceeds remaining quantity", result.Message)
}

func TestValidateConsumption_DefaultQuantity(t *testing.T) {
	svc := NewValidationService(testSigner, &mockRedemption{
		redeemDetailFn: func(ctx context.Context, detailID uint, quantity int) (*DetailRedemption, error) {
			assert.Equal(t, 1, quantity, "missing quantity should default to 1")
			return &DetailRedemption{DetailID: 99, QuantityRedeemed: 1, Remaining: 0, FullyRedeemed: true}, nil
		},
	})

	payload := testSigner.NewConsumptionPayload(42, 99, 7, 3)
	result, err := svc.ValidateConsumption(context.Background(), payload, 3, 0)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "consumption redeemed", result.Message)
}

// Systemic failures must surface as errors, not display strings.
func TestValidateEntry_SystemicErrorPropagates(t *testing.T) {
	svc := NewValidationService(testSigner, &mockRedemption{
		redeemEntryFn: func(ctx context.Context, ticketID uint) (*EntryRedemption, error) {
			return nil, ErrConcurrencyExhausted
		},
	})

	payload := testSigner.NewEntryPayload(42, 7, 3)
	result, err := svc.ValidateEntry(context.Background(), payload, 3)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrConcurrencyExhausted)
}
