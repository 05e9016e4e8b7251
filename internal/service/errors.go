package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventInactive = errors.New("event is not active")

	ErrPassNotFound      = errors.New("pass not found")
	ErrPassNotAvailable  = errors.New("pass is not available for sale")
	ErrPassAlreadySold   = errors.New("pass is already sold")
	ErrNoPassesAvailable = errors.New("no passes available for event")

	ErrTicketNotFound = errors.New("ticket not found")
	ErrTicketInactive = errors.New("ticket is not active")

	ErrDetailNotFound       = errors.New("consumption detail not found")
	ErrDetailInactive       = errors.New("consumption detail is not active")
	ErrDetailFullyRedeemed  = errors.New("consumption detail is already fully redeemed")
	ErrInsufficientQuantity = errors.New("requested quantity exceeds remaining quantity")

	ErrInvalidItem = errors.New("consumption item is missing or inactive")

	// ErrConcurrencyExhausted is fatal: the bounded retry loop gave up on
	// systemic contention. It is never a legitimate duplicate attempt.
	ErrConcurrencyExhausted = errors.New("operation failed after retries due to concurrency")
)

// ErrAlreadyRedeemed is the sentinel for entry credentials that were used
// before; the concrete error carries the original redemption time so scanning
// devices can display it.
var ErrAlreadyRedeemed = errors.New("ticket is already redeemed")

type AlreadyRedeemedError struct {
	RedeemedAt time.Time
}

func (e *AlreadyRedeemedError) Error() string {
	return fmt.Sprintf("ticket already redeemed at %s", e.RedeemedAt.Format(time.RFC3339))
}

func (e *AlreadyRedeemedError) Unwrap() error {
	return ErrAlreadyRedeemed
}
