package accounts

import (
	"context"
	"time"
)

// Account is an externally identified billing subject. The identity fields
// (number, region) are immutable once registered; accounts are deactivated,
// never deleted.
type Account struct {
	AccountNumber  string
	SubscriberID   string
	Region         string
	Address        string
	SubscriberName string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks account invariants.
func (a Account) Validate() error {
	if a.AccountNumber == "" {
		return ErrEmptyAccountNumber
	}
	if a.SubscriberID == "" {
		return ErrEmptySubscriberID
	}
	if a.Region == "" {
		return ErrEmptyRegion
	}
	if a.Address == "" {
		return ErrEmptyAddress
	}
	return nil
}

// Repository manages account persistence.
type Repository interface {
	Get(ctx context.Context, accountNumber string) (*Account, error)
	Save(ctx context.Context, account *Account) error
	ListBySubscriber(ctx context.Context, subscriberID string) ([]Account, error)
	Deactivate(ctx context.Context, accountNumber string, at time.Time) error
}
