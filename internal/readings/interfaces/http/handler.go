package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"waterworks-portal/internal/auth"
	readingapp "waterworks-portal/internal/readings/application"
	readings "waterworks-portal/internal/readings/domain"
)

// Handler provides meter reading HTTP endpoints under
// /api/v1/accounts/{number}/readings.
type Handler struct {
	service        *readingapp.Service
	accountChecker auth.AccountSubscriberChecker
}

// NewHandler constructs a handler.
func NewHandler(service *readingapp.Service, accountChecker auth.AccountSubscriberChecker) (*Handler, error) {
	if service == nil {
		return nil, errors.New("readings handler: nil service")
	}
	return &Handler{service: service, accountChecker: accountChecker}, nil
}

type readingResponse struct {
	ID      string    `json:"id"`
	Service string    `json:"service"`
	Value   float64   `json:"value"`
	TakenAt time.Time `json:"takenAt"`
}

// ServeHTTP dispatches reading requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	number, ok := accountNumberFromPath(r.URL.Path)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	subscriberID := auth.SubscriberIDFromContext(r.Context())
	if subscriberID != "" && !auth.RoleAtLeast(auth.RoleFromContext(r.Context()), auth.RoleOperator) && h.accountChecker != nil {
		if err := h.accountChecker.EnsureAccountSubscriber(r.Context(), subscriberID, number); err != nil {
			respondOwnershipError(w, err)
			return
		}
	}

	switch r.Method {
	case http.MethodPost:
		h.handleSubmit(w, r, number)
	case http.MethodGet:
		h.handleHistory(w, r, number)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request, number string) {
	var body struct {
		Service string    `json:"service"`
		Value   float64   `json:"value"`
		TakenAt time.Time `json:"takenAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	reading, err := h.service.Submit(r.Context(), readingapp.SubmitInput{
		AccountNumber: number,
		Service:       body.Service,
		Value:         body.Value,
		TakenAt:       body.TakenAt,
	})
	if err != nil {
		if errors.Is(err, readings.ErrNonMonotonic) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(readingResponse{
		ID:      reading.ID,
		Service: reading.Service,
		Value:   reading.Value,
		TakenAt: reading.TakenAt,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request, number string) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	history, err := h.service.History(r.Context(), number, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]readingResponse, 0, len(history))
	for _, reading := range history {
		out = append(out, readingResponse{
			ID:      reading.ID,
			Service: reading.Service,
			Value:   reading.Value,
			TakenAt: reading.TakenAt,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func accountNumberFromPath(path string) (string, bool) {
	trimmed := strings.TrimPrefix(path, "/api/v1/accounts/")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "readings" {
		return "", false
	}
	return parts[0], true
}

func respondOwnershipError(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrSubscriberMismatch) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if errors.Is(err, auth.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, "ownership check failed", http.StatusInternalServerError)
}
