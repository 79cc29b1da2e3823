package auth

import (
	"context"
	"database/sql"
	"errors"

	accountsrepo "waterworks-portal/internal/accounts/infrastructure/postgres"
)

var (
	// ErrSubscriberMismatch indicates resource belongs to a different subscriber.
	ErrSubscriberMismatch = errors.New("subscriber mismatch")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("resource not found")
)

// AccountSubscriberChecker validates account ownership.
type AccountSubscriberChecker interface {
	EnsureAccountSubscriber(ctx context.Context, subscriberID, accountNumber string) error
}

// AccountChecker checks account ownership against the accounts store.
type AccountChecker struct {
	repo *accountsrepo.AccountRepository
}

// NewAccountChecker constructs an AccountChecker.
func NewAccountChecker(db *sql.DB) *AccountChecker {
	if db == nil {
		return nil
	}
	return &AccountChecker{repo: accountsrepo.NewAccountRepository(db)}
}

// EnsureAccountSubscriber verifies the account belongs to the subscriber.
func (c *AccountChecker) EnsureAccountSubscriber(ctx context.Context, subscriberID, accountNumber string) error {
	if c == nil || c.repo == nil {
		return nil
	}
	if subscriberID == "" || accountNumber == "" {
		return nil
	}
	account, err := c.repo.Get(ctx, accountNumber)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrNotFound
	}
	if account.SubscriberID != subscriberID {
		return ErrSubscriberMismatch
	}
	return nil
}
