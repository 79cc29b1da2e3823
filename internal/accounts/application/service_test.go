package application

import (
	"context"
	"errors"
	"testing"
	"time"

	accounts "waterworks-portal/internal/accounts/domain"
)

type memoryAccountRepo struct {
	byNumber map[string]accounts.Account
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{byNumber: map[string]accounts.Account{}}
}

func (r *memoryAccountRepo) Get(_ context.Context, accountNumber string) (*accounts.Account, error) {
	account, ok := r.byNumber[accountNumber]
	if !ok {
		return nil, nil
	}
	copied := account
	return &copied, nil
}

func (r *memoryAccountRepo) Save(_ context.Context, account *accounts.Account) error {
	r.byNumber[account.AccountNumber] = *account
	return nil
}

func (r *memoryAccountRepo) ListBySubscriber(_ context.Context, subscriberID string) ([]accounts.Account, error) {
	var out []accounts.Account
	for _, account := range r.byNumber {
		if account.SubscriberID == subscriberID {
			out = append(out, account)
		}
	}
	return out, nil
}

func (r *memoryAccountRepo) Deactivate(_ context.Context, accountNumber string, at time.Time) error {
	account, ok := r.byNumber[accountNumber]
	if !ok {
		return accounts.ErrAccountNotFound
	}
	account.Active = false
	account.UpdatedAt = at
	r.byNumber[accountNumber] = account
	return nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func validInput() RegisterInput {
	return RegisterInput{
		AccountNumber:  "40817000",
		SubscriberID:   "sub-1",
		Region:         "crimea",
		Address:        "12 Harbor St, apt 4",
		SubscriberName: "A. Petrov",
	}
}

func TestRegisterAndGet(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc, err := NewService(repo, fixedClock{now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	account, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !account.Active {
		t.Fatalf("registered account should be active")
	}

	got, err := svc.Get(context.Background(), "40817000")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Address != "12 Harbor St, apt 4" {
		t.Fatalf("unexpected address %q", got.Address)
	}
}

func TestRegisterRejectsForeignAccount(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc, _ := NewService(repo, nil)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	foreign := validInput()
	foreign.SubscriberID = "sub-2"
	if _, err := svc.Register(context.Background(), foreign); !errors.Is(err, accounts.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestRegisterRefreshOwnAccount(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc, _ := NewService(repo, nil)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	updated := validInput()
	updated.Address = "3 Dock Lane"
	account, err := svc.Register(context.Background(), updated)
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if account.Address != "3 Dock Lane" {
		t.Fatalf("address not refreshed: %q", account.Address)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := NewService(newMemoryAccountRepo(), nil)

	input := validInput()
	input.Address = ""
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, accounts.ErrEmptyAddress) {
		t.Fatalf("expected ErrEmptyAddress, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	svc, _ := NewService(newMemoryAccountRepo(), nil)

	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, accounts.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestDeactivateAndGetActive(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc, _ := NewService(repo, nil)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Deactivate(context.Background(), "40817000"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.GetActive(context.Background(), "40817000"); !errors.Is(err, accounts.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "40817000"); err != nil {
		t.Fatalf("inactive account should still resolve via Get: %v", err)
	}
}

func TestEnsureAccountSubscriber(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc, _ := NewService(repo, nil)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.EnsureAccountSubscriber(context.Background(), "sub-1", "40817000"); err != nil {
		t.Fatalf("owner check failed: %v", err)
	}
	if err := svc.EnsureAccountSubscriber(context.Background(), "sub-2", "40817000"); !errors.Is(err, accounts.ErrSubscriberMismatch) {
		t.Fatalf("expected ErrSubscriberMismatch, got %v", err)
	}
	if err := svc.EnsureAccountSubscriber(context.Background(), "sub-1", "missing"); !errors.Is(err, accounts.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
