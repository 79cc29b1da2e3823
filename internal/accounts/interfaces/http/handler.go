package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	accountapp "waterworks-portal/internal/accounts/application"
	accounts "waterworks-portal/internal/accounts/domain"
	"waterworks-portal/internal/auth"
)

// Handler provides account HTTP endpoints.
type Handler struct {
	service *accountapp.Service
}

// NewHandler constructs a handler.
func NewHandler(service *accountapp.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("accounts handler: nil service")
	}
	return &Handler{service: service}, nil
}

type accountResponse struct {
	AccountNumber  string    `json:"accountNumber"`
	Region         string    `json:"region"`
	Address        string    `json:"address"`
	SubscriberName string    `json:"subscriberName"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toResponse(account accounts.Account) accountResponse {
	return accountResponse{
		AccountNumber:  account.AccountNumber,
		Region:         account.Region,
		Address:        account.Address,
		SubscriberName: account.SubscriberName,
		Active:         account.Active,
		CreatedAt:      account.CreatedAt,
	}
}

// ServeHTTP handles /api/v1/accounts and account subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/accounts":
		switch r.Method {
		case http.MethodPost:
			h.handleRegister(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	case strings.HasPrefix(r.URL.Path, "/api/v1/accounts/"):
		h.handleAccount(w, r)
		return
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	subscriberID := auth.SubscriberIDFromContext(r.Context())
	if subscriberID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		AccountNumber  string `json:"accountNumber"`
		Region         string `json:"region"`
		Address        string `json:"address"`
		SubscriberName string `json:"subscriberName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	account, err := h.service.Register(r.Context(), accountapp.RegisterInput{
		AccountNumber:  body.AccountNumber,
		SubscriberID:   subscriberID,
		Region:         body.Region,
		Address:        body.Address,
		SubscriberName: body.SubscriberName,
	})
	if err != nil {
		if errors.Is(err, accounts.ErrAccountExists) {
			http.Error(w, "account already registered", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toResponse(*account))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	subscriberID := auth.SubscriberIDFromContext(r.Context())
	if subscriberID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	list, err := h.service.ListBySubscriber(r.Context(), subscriberID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]accountResponse, 0, len(list))
	for _, account := range list {
		out = append(out, toResponse(account))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *Handler) handleAccount(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/accounts/")
	parts := strings.Split(path, "/")
	number := parts[0]
	if number == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if err := h.ensureOwnership(r, number); err != nil {
		respondOwnershipError(w, err)
		return
	}

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		account, err := h.service.Get(r.Context(), number)
		if err != nil {
			if errors.Is(err, accounts.ErrAccountNotFound) {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toResponse(*account))
	case len(parts) == 2 && parts[1] == "deactivate":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := h.service.Deactivate(r.Context(), number); err != nil {
			if errors.Is(err, accounts.ErrAccountNotFound) {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) ensureOwnership(r *http.Request, number string) error {
	subscriberID := auth.SubscriberIDFromContext(r.Context())
	if subscriberID == "" {
		return nil
	}
	if auth.RoleAtLeast(auth.RoleFromContext(r.Context()), auth.RoleOperator) {
		return nil
	}
	return h.service.EnsureAccountSubscriber(r.Context(), subscriberID, number)
}

func respondOwnershipError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, accounts.ErrSubscriberMismatch) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if errors.Is(err, accounts.ErrAccountNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, "ownership check failed", http.StatusInternalServerError)
}
