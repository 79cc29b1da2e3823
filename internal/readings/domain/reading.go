package readings

import (
	"context"
	"time"
)

// MeterReading is one self-reported cumulative meter value.
type MeterReading struct {
	ID            string
	AccountNumber string
	Service       string
	Value         float64
	TakenAt       time.Time
	CreatedAt     time.Time
}

// Validate checks reading invariants. Meter values are cumulative, so
// negatives are always invalid.
func (m MeterReading) Validate() error {
	if m.AccountNumber == "" {
		return ErrEmptyAccountNumber
	}
	if m.Service == "" {
		return ErrEmptyService
	}
	if m.Value < 0 {
		return ErrNegativeValue
	}
	if m.TakenAt.IsZero() {
		return ErrMissingTakenAt
	}
	return nil
}

// Repository manages reading persistence.
type Repository interface {
	Save(ctx context.Context, reading *MeterReading) error
	Latest(ctx context.Context, accountNumber, service string) (*MeterReading, error)
	ListByAccount(ctx context.Context, accountNumber string, limit int) ([]MeterReading, error)
}
