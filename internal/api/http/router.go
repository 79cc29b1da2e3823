package apihttp

import (
	"errors"
	"net/http"
	"strings"
)

// Billing subroutes under /api/v1/accounts/{number}/.
var billingActions = map[string]struct{}{
	"bills":           {},
	"summary":         {},
	"payment-request": {},
	"receipt.pdf":     {},
	"receipt.xlsx":    {},
	"payments":        {},
}

// AccountsRouter fans /api/v1/accounts requests out to the owning context:
// account CRUD, billing views, or meter readings.
type AccountsRouter struct {
	accounts http.Handler
	billing  http.Handler
	readings http.Handler
}

// NewAccountsRouter constructs the router.
func NewAccountsRouter(accounts, billing, readings http.Handler) (*AccountsRouter, error) {
	if accounts == nil {
		return nil, errors.New("accounts router: nil accounts handler")
	}
	if billing == nil {
		return nil, errors.New("accounts router: nil billing handler")
	}
	if readings == nil {
		return nil, errors.New("accounts router: nil readings handler")
	}
	return &AccountsRouter{accounts: accounts, billing: billing, readings: readings}, nil
}

// ServeHTTP dispatches by subroute.
func (rt *AccountsRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/api/v1/accounts/")
	if trimmed == r.URL.Path || trimmed == "" {
		rt.accounts.ServeHTTP(w, r)
		return
	}

	parts := strings.Split(trimmed, "/")
	if len(parts) == 2 {
		if parts[1] == "readings" {
			rt.readings.ServeHTTP(w, r)
			return
		}
		if _, ok := billingActions[parts[1]]; ok {
			rt.billing.ServeHTTP(w, r)
			return
		}
	}
	rt.accounts.ServeHTTP(w, r)
}
