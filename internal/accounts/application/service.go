package application

import (
	"context"
	"errors"
	"time"

	accounts "waterworks-portal/internal/accounts/domain"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Service handles account registration and lookup use cases.
type Service struct {
	repo  accounts.Repository
	clock Clock
}

// NewService constructs an account service.
func NewService(repo accounts.Repository, clock Clock) (*Service, error) {
	if repo == nil {
		return nil, errors.New("account service: nil repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{repo: repo, clock: clock}, nil
}

// RegisterInput carries the fields needed to link an account.
type RegisterInput struct {
	AccountNumber  string
	SubscriberID   string
	Region         string
	Address        string
	SubscriberName string
}

// Register links an account number to a subscriber. Re-registering an
// account that belongs to another subscriber is rejected; re-registering
// one's own account refreshes the address fields.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*accounts.Account, error) {
	account := &accounts.Account{
		AccountNumber:  input.AccountNumber,
		SubscriberID:   input.SubscriberID,
		Region:         input.Region,
		Address:        input.Address,
		SubscriberName: input.SubscriberName,
		Active:         true,
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, input.AccountNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.SubscriberID != input.SubscriberID {
		return nil, accounts.ErrAccountExists
	}
	if existing != nil {
		account.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Get returns one active or inactive account.
func (s *Service) Get(ctx context.Context, accountNumber string) (*accounts.Account, error) {
	if accountNumber == "" {
		return nil, accounts.ErrEmptyAccountNumber
	}
	account, err := s.repo.Get(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, accounts.ErrAccountNotFound
	}
	return account, nil
}

// GetActive returns an account and rejects deactivated ones.
func (s *Service) GetActive(ctx context.Context, accountNumber string) (*accounts.Account, error) {
	account, err := s.Get(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, accounts.ErrAccountInactive
	}
	return account, nil
}

// ListBySubscriber returns all accounts linked to a subscriber.
func (s *Service) ListBySubscriber(ctx context.Context, subscriberID string) ([]accounts.Account, error) {
	if subscriberID == "" {
		return nil, accounts.ErrEmptySubscriberID
	}
	return s.repo.ListBySubscriber(ctx, subscriberID)
}

// Deactivate marks an account inactive.
func (s *Service) Deactivate(ctx context.Context, accountNumber string) error {
	if accountNumber == "" {
		return accounts.ErrEmptyAccountNumber
	}
	return s.repo.Deactivate(ctx, accountNumber, s.clock.Now())
}

// EnsureAccountSubscriber reports whether an account belongs to a
// subscriber. Used by HTTP middleware for ownership checks.
func (s *Service) EnsureAccountSubscriber(ctx context.Context, subscriberID, accountNumber string) error {
	account, err := s.repo.Get(ctx, accountNumber)
	if err != nil {
		return err
	}
	if account == nil {
		return accounts.ErrAccountNotFound
	}
	if account.SubscriberID != subscriberID {
		return accounts.ErrSubscriberMismatch
	}
	return nil
}
