package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"waterworks-portal/internal/audit"
	"waterworks-portal/internal/auth"
	billingapp "waterworks-portal/internal/billing/application"
	billing "waterworks-portal/internal/billing/domain"
	"waterworks-portal/internal/billing/interfaces"
	"waterworks-portal/internal/ledger"
	"waterworks-portal/internal/observability/metrics"
	"waterworks-portal/internal/payment"
)

// Handler serves billing endpoints under /api/v1/accounts/{number}/.
type Handler struct {
	service        *billingapp.BillingService
	accountChecker auth.AccountSubscriberChecker
	auditLogger    audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *billingapp.BillingService, accountChecker auth.AccountSubscriberChecker, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("billing handler: nil service")
	}
	return &Handler{service: service, accountChecker: accountChecker, auditLogger: auditLogger}, nil
}

// ServeHTTP dispatches billing subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	number, action, ok := splitAccountPath(r.URL.Path)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if err := h.ensureOwnership(r, number); err != nil {
		respondOwnershipError(w, err)
		return
	}

	switch action {
	case "bills":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleBills(w, r, number)
	case "summary":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleSummary(w, r, number)
	case "payment-request":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handlePaymentRequest(w, r, number)
	case "receipt.pdf":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleReceiptPDF(w, r, number)
	case "receipt.xlsx":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleReceiptXLSX(w, r, number)
	case "payments":
		switch r.Method {
		case http.MethodPost:
			h.handleRecordPayment(w, r, number)
		case http.MethodGet:
			h.handleListPayments(w, r, number)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleBills(w http.ResponseWriter, r *http.Request, number string) {
	bills, err := h.service.BillsFor(r.Context(), number)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if bills == nil {
		bills = []billing.Bill{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(bills)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request, number string) {
	summary, err := h.service.Summary(r.Context(), number)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}

func (h *Handler) handlePaymentRequest(w http.ResponseWriter, r *http.Request, number string) {
	request, err := h.service.PaymentRequestFor(r.Context(), number)
	if err != nil {
		if errors.Is(err, payment.ErrMissingIdentity) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(request)
	h.logAudit(r, number, audit.ActionPaymentRequestIssue, nil)
}

func (h *Handler) handleReceiptPDF(w http.ResponseWriter, r *http.Request, number string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReceiptExport("pdf", result, time.Since(start))
	}()

	summary, payments, err := h.receiptData(r, number)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}
	data, err := interfaces.BuildReceiptPDF(summary, payments)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export pdf error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, number, audit.ActionReceiptExport, map[string]any{"format": "pdf"})
}

func (h *Handler) handleReceiptXLSX(w http.ResponseWriter, r *http.Request, number string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReceiptExport("xlsx", result, time.Since(start))
	}()

	summary, payments, err := h.receiptData(r, number)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}
	data, err := interfaces.BuildReceiptXLSX(summary, payments)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export xlsx error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, number, audit.ActionReceiptExport, map[string]any{"format": "xlsx"})
}

func (h *Handler) receiptData(r *http.Request, number string) (billingapp.Summary, []billing.PaymentRecord, error) {
	summary, err := h.service.Summary(r.Context(), number)
	if err != nil {
		return billingapp.Summary{}, nil, err
	}
	payments, err := h.service.Payments(r.Context(), number, 20)
	if err != nil {
		return billingapp.Summary{}, nil, err
	}
	return summary, payments, nil
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request, number string) {
	var body struct {
		Service string    `json:"service"`
		Amount  float64   `json:"amount"`
		PaidAt  time.Time `json:"paidAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	record, err := h.service.RecordPayment(r.Context(), billingapp.RecordPaymentInput{
		AccountNumber: number,
		Service:       body.Service,
		Amount:        body.Amount,
		PaidAt:        body.PaidAt,
	})
	if err != nil {
		if errors.Is(err, billing.ErrNonPositiveAmount) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     record.ID,
		"amount": record.Amount,
		"period": record.Period,
	})
	h.logAudit(r, number, audit.ActionPaymentRecord, map[string]any{"amount": record.Amount})
}

func (h *Handler) handleListPayments(w http.ResponseWriter, r *http.Request, number string) {
	records, err := h.service.Payments(r.Context(), number, 0)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if records == nil {
		records = []billing.PaymentRecord{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(records)
}

func (h *Handler) ensureOwnership(r *http.Request, number string) error {
	subscriberID := auth.SubscriberIDFromContext(r.Context())
	if subscriberID == "" || h.accountChecker == nil {
		return nil
	}
	if auth.RoleAtLeast(auth.RoleFromContext(r.Context()), auth.RoleOperator) {
		return nil
	}
	return h.accountChecker.EnsureAccountSubscriber(r.Context(), subscriberID, number)
}

func (h *Handler) logAudit(r *http.Request, accountNumber, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	subscriberID := auth.SubscriberIDFromContext(r.Context())
	if subscriberID == "" {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		SubscriberID:  subscriberID,
		Actor:         auth.SubjectFromContext(r.Context()),
		Role:          string(auth.RoleFromContext(r.Context())),
		Action:        action,
		ResourceType:  "account",
		ResourceID:    accountNumber,
		AccountNumber: accountNumber,
		Metadata:      payload,
		IP:            audit.ClientIP(r),
		UserAgent:     r.UserAgent(),
	})
}

func splitAccountPath(path string) (number, action string, ok bool) {
	trimmed := strings.TrimPrefix(path, "/api/v1/accounts/")
	if trimmed == path {
		return "", "", false
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billingapp.ErrUnknownAccount), errors.Is(err, ledger.ErrAccountNotFound):
		http.Error(w, "account not found", http.StatusNotFound)
	case errors.Is(err, billingapp.ErrInactiveAccount):
		http.Error(w, "account inactive", http.StatusGone)
	case errors.Is(err, billing.ErrEmptyAccountNumber):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "billing backend error", http.StatusBadGateway)
	}
}

func respondOwnershipError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
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
