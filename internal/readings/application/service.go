package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"waterworks-portal/internal/observability/metrics"
	readings "waterworks-portal/internal/readings/domain"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Service handles meter reading submission and history.
type Service struct {
	repo  readings.Repository
	clock Clock
}

// NewService constructs a readings service.
func NewService(repo readings.Repository, clock Clock) (*Service, error) {
	if repo == nil {
		return nil, errors.New("readings service: nil repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{repo: repo, clock: clock}, nil
}

// SubmitInput carries one self-reported meter value.
type SubmitInput struct {
	AccountNumber string
	Service       string
	Value         float64
	TakenAt       time.Time
}

// Submit validates and stores a reading. Cumulative meters only count up,
// so a value below the last accepted reading is rejected.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*readings.MeterReading, error) {
	takenAt := input.TakenAt
	if takenAt.IsZero() {
		takenAt = s.clock.Now()
	}

	reading := &readings.MeterReading{
		ID:            newReadingID(),
		AccountNumber: input.AccountNumber,
		Service:       input.Service,
		Value:         input.Value,
		TakenAt:       takenAt.UTC(),
	}
	if err := reading.Validate(); err != nil {
		metrics.IncReadingSubmit(metrics.ResultError)
		return nil, err
	}

	last, err := s.repo.Latest(ctx, input.AccountNumber, input.Service)
	if err != nil {
		metrics.IncReadingSubmit(metrics.ResultError)
		return nil, err
	}
	if last != nil && input.Value < last.Value {
		metrics.IncReadingSubmit(metrics.ResultError)
		return nil, readings.ErrNonMonotonic
	}

	if err := s.repo.Save(ctx, reading); err != nil {
		metrics.IncReadingSubmit(metrics.ResultError)
		return nil, err
	}
	metrics.IncReadingSubmit(metrics.ResultSuccess)
	return reading, nil
}

// History returns recent readings for one account.
func (s *Service) History(ctx context.Context, accountNumber string, limit int) ([]readings.MeterReading, error) {
	if accountNumber == "" {
		return nil, readings.ErrEmptyAccountNumber
	}
	return s.repo.ListByAccount(ctx, accountNumber, limit)
}

func newReadingID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "rdg-" + hex.EncodeToString(buf)
}
