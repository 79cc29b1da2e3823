package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"waterworks-portal/internal/auth"
	requestapp "waterworks-portal/internal/servicerequests/application"
	servicerequests "waterworks-portal/internal/servicerequests/domain"
)

// Handler provides service request HTTP endpoints.
type Handler struct {
	service *requestapp.Service
}

// NewHandler constructs a handler.
func NewHandler(service *requestapp.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("service requests handler: nil service")
	}
	return &Handler{service: service}, nil
}

type requestResponse struct {
	ID            string    `json:"id"`
	AccountNumber string    `json:"accountNumber"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	Resolution    string    `json:"resolution,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toResponse(request servicerequests.ServiceRequest) requestResponse {
	return requestResponse{
		ID:            request.ID,
		AccountNumber: request.AccountNumber,
		Category:      request.Category,
		Description:   request.Description,
		Status:        string(request.Status),
		Resolution:    request.Resolution,
		CreatedAt:     request.CreatedAt,
		UpdatedAt:     request.UpdatedAt,
	}
}

// ServeHTTP handles /api/v1/service-requests and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/service-requests":
		switch r.Method {
		case http.MethodPost:
			h.handleOpen(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	case strings.HasPrefix(r.URL.Path, "/api/v1/service-requests/"):
		h.handleAction(w, r)
		return
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	subscriberID := auth.SubscriberIDFromContext(r.Context())
	if subscriberID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		AccountNumber string `json:"accountNumber"`
		Category      string `json:"category"`
		Description   string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	request, err := h.service.Open(r.Context(), requestapp.OpenInput{
		AccountNumber: body.AccountNumber,
		SubscriberID:  subscriberID,
		Category:      body.Category,
		Description:   body.Description,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toResponse(*request))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	role := auth.RoleFromContext(r.Context())
	if auth.RoleAtLeast(role, auth.RoleOperator) {
		status := servicerequests.Status(r.URL.Query().Get("status"))
		if status == "" {
			status = servicerequests.StatusOpen
		}
		queue, err := h.service.ListQueue(r.Context(), status, 0)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeRequests(w, queue)
		return
	}

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
	writeRequests(w, list)
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/service-requests/")
	parts := strings.Split(path, "/")

	if len(parts) == 1 && parts[0] != "" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleGet(w, r, parts[0])
		return
	}
	if len(parts) != 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := parts[0]
	var (
		request *servicerequests.ServiceRequest
		err     error
	)
	switch parts[1] {
	case "start":
		request, err = h.service.Start(r.Context(), id)
	case "close":
		var body struct {
			Resolution string `json:"resolution"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		request, err = h.service.Close(r.Context(), id, body.Resolution)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		if errors.Is(err, servicerequests.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if errors.Is(err, servicerequests.ErrInvalidTransition) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(*request))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	request, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, servicerequests.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	role := auth.RoleFromContext(r.Context())
	subscriberID := auth.SubscriberIDFromContext(r.Context())
	if !auth.RoleAtLeast(role, auth.RoleOperator) && subscriberID != "" && request.SubscriberID != subscriberID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(*request))
}

func writeRequests(w http.ResponseWriter, list []servicerequests.ServiceRequest) {
	out := make([]requestResponse, 0, len(list))
	for _, request := range list {
		out = append(out, toResponse(request))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
