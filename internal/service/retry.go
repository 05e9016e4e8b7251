package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/packed-go/ticketing-service/internal/repository"
	"gorm.io/gorm"
)

// txRunner executes a transaction with a bounded retry loop around it. Only
// transient contention (lock timeouts, deadlocks, serialization failures,
// optimistic-version conflicts) is retried; business-rule rejections pass
// through untouched on the first attempt.
type txRunner struct {
	db         *gorm.DB
	maxRetries int
	delay      time.Duration
}

func newTxRunner(db *gorm.DB, maxRetries int, delay time.Duration) txRunner {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return txRunner{db: db, maxRetries: maxRetries, delay: delay}
}

func (r txRunner) run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		err = r.db.WithContext(ctx).Transaction(fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if attempt == r.maxRetries {
			break
		}
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	// Logged distinctly from business rejections: this indicates systemic
	// contention, not a duplicate attempt.
	log.Printf("[Concurrency] giving up after %d attempts: %v", r.maxRetries, err)
	return fmt.Errorf("%w: %v", ErrConcurrencyExhausted, err)
}

// isRetryable reports whether the error is transient contention.
// Postgres codes: 40001 serialization_failure, 40P01 deadlock_detected,
// 55P03 lock_not_available.
func isRetryable(err error) bool {
	if errors.Is(err, repository.ErrVersionConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}
