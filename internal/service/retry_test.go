package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/packed-go/ticketing-service/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"version conflict", repository.ErrVersionConflict, true},
		{"wrapped version conflict", fmt.Errorf("save event: %w", repository.ErrVersionConflict), true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock detected", &pgconn.PgError{Code: "40P01"}, true},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"business rejection", ErrPassAlreadySold, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestNewTxRunner_Defaults(t *testing.T) {
	r := newTxRunner(nil, 0, 0)
	assert.Equal(t, 3, r.maxRetries)
	assert.Equal(t, int64(100), r.delay.Milliseconds())
}
