package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"time"

	billing "waterworks-portal/internal/billing/domain"
	"waterworks-portal/internal/observability/metrics"
	"waterworks-portal/internal/payment"
)

var (
	// ErrUnknownAccount is returned when the account is not registered.
	ErrUnknownAccount = errors.New("billing service: unknown account")
	// ErrInactiveAccount is returned for deactivated accounts.
	ErrInactiveAccount = errors.New("billing service: inactive account")
)

// AccountInfo is the slice of account state billing needs.
type AccountInfo struct {
	AccountNumber string
	Region        string
	Address       string
	Active        bool
}

// AccountDirectory resolves registered accounts.
type AccountDirectory interface {
	AccountInfo(ctx context.Context, accountNumber string) (AccountInfo, error)
}

// SnapshotFetcher loads raw accounting snapshots.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, region, accountNumber string) (map[string]any, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Summary is the reconciled view of one account for the current period.
type Summary struct {
	AccountNumber  string                  `json:"accountNumber"`
	Period         string                  `json:"period"`
	TotalDue       float64                 `json:"totalDue"`
	PaidThisPeriod float64                 `json:"paidThisPeriod"`
	HasDebt        bool                    `json:"hasDebt"`
	Items          []LineItem              `json:"items"`
	Bills          []billing.Bill          `json:"bills"`
	PaymentRequest *payment.PaymentRequest `json:"paymentRequest,omitempty"`
}

// LineItem is a JSON-shaped debt line item.
type LineItem struct {
	Label    string  `json:"label"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
}

// BillingService orchestrates snapshot fetch, reconciliation, bill assembly
// and payment request encoding for one account at a time.
type BillingService struct {
	directory AccountDirectory
	snapshots SnapshotFetcher
	payments  billing.PaymentRecordRepository
	parser    billing.AmountParser
	clock     Clock
	logger    *log.Logger
}

// NewBillingService constructs the service. The payment repository is
// optional; without it the paid section of the bill list stays empty.
func NewBillingService(
	directory AccountDirectory,
	snapshots SnapshotFetcher,
	payments billing.PaymentRecordRepository,
	clock Clock,
	logger *log.Logger,
) (*BillingService, error) {
	if directory == nil {
		return nil, errors.New("billing service: nil account directory")
	}
	if snapshots == nil {
		return nil, errors.New("billing service: nil snapshot fetcher")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &BillingService{
		directory: directory,
		snapshots: snapshots,
		payments:  payments,
		parser:    billing.NewAmountParser(billing.DefaultConvention),
		clock:     clock,
		logger:    logger,
	}, nil
}

// BillsFor returns the full displayable bill list for one account: reconciled
// debt first, locally recorded payments after, overdue entries on top.
func (s *BillingService) BillsFor(ctx context.Context, accountNumber string) ([]billing.Bill, error) {
	account, _, rec, err := s.reconcile(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	bills := billing.Assemble(rec, s.currentPeriod())
	bills = append(bills, billing.PaidBills(s.recentPayments(ctx, account.AccountNumber))...)
	billing.SortBills(bills)
	return bills, nil
}

// Summary returns the reconciled account view with the bill list and, when
// the payee identity is complete, an attached payment request. A failed
// encoding degrades to a summary without one; bills must render regardless.
func (s *BillingService) Summary(ctx context.Context, accountNumber string) (Summary, error) {
	account, snapshot, rec, err := s.reconcile(ctx, accountNumber)
	if err != nil {
		return Summary{}, err
	}

	bills := billing.Assemble(rec, s.currentPeriod())
	bills = append(bills, billing.PaidBills(s.recentPayments(ctx, account.AccountNumber))...)
	billing.SortBills(bills)

	summary := Summary{
		AccountNumber:  account.AccountNumber,
		Period:         s.currentPeriod(),
		TotalDue:       rec.TotalDue,
		PaidThisPeriod: snapshot.PaidThisPeriod,
		HasDebt:        rec.HasDebt,
		Items:          make([]LineItem, 0, len(rec.Items)),
		Bills:          bills,
	}
	for _, item := range rec.Items {
		summary.Items = append(summary.Items, LineItem(item))
	}

	if request, err := payment.Encode(account.AccountNumber, account.Address, rec.TotalDue); err != nil {
		metrics.IncPaymentEncode(metrics.ResultError)
		s.logger.Printf("payment request skipped for account %s: %v", account.AccountNumber, err)
	} else {
		metrics.IncPaymentEncode(metrics.ResultSuccess)
		summary.PaymentRequest = &request
	}
	return summary, nil
}

// PaymentRequestFor encodes a standalone payment request for the account's
// reconciled total.
func (s *BillingService) PaymentRequestFor(ctx context.Context, accountNumber string) (payment.PaymentRequest, error) {
	account, _, rec, err := s.reconcile(ctx, accountNumber)
	if err != nil {
		return payment.PaymentRequest{}, err
	}

	request, err := payment.Encode(account.AccountNumber, account.Address, rec.TotalDue)
	if err != nil {
		metrics.IncPaymentEncode(metrics.ResultError)
		return payment.PaymentRequest{}, err
	}
	metrics.IncPaymentEncode(metrics.ResultSuccess)
	return request, nil
}

// RecordPaymentInput carries one portal payment confirmation.
type RecordPaymentInput struct {
	AccountNumber string
	Service       string
	Amount        float64
	PaidAt        time.Time
}

// RecordPayment stores a payment confirmation for the paid bill section.
func (s *BillingService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*billing.PaymentRecord, error) {
	if s.payments == nil {
		return nil, errors.New("billing service: payment records disabled")
	}
	if input.AccountNumber == "" {
		return nil, billing.ErrEmptyAccountNumber
	}
	if input.Amount <= 0 {
		return nil, billing.ErrNonPositiveAmount
	}
	if _, err := s.directory.AccountInfo(ctx, input.AccountNumber); err != nil {
		return nil, err
	}

	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = s.clock.Now()
	}
	record := &billing.PaymentRecord{
		ID:            newPaymentID(),
		AccountNumber: input.AccountNumber,
		Service:       input.Service,
		Period:        s.currentPeriod(),
		Amount:        input.Amount,
		PaidAt:        paidAt.UTC(),
	}
	if err := s.payments.Save(ctx, record); err != nil {
		return nil, err
	}
	metrics.IncPaymentRecorded()
	return record, nil
}

// Payments returns recent locally recorded payments for one account.
func (s *BillingService) Payments(ctx context.Context, accountNumber string, limit int) ([]billing.PaymentRecord, error) {
	if s.payments == nil {
		return nil, nil
	}
	if accountNumber == "" {
		return nil, billing.ErrEmptyAccountNumber
	}
	return s.payments.ListByAccount(ctx, accountNumber, limit)
}

func (s *BillingService) reconcile(ctx context.Context, accountNumber string) (AccountInfo, billing.LedgerSnapshot, billing.Reconciliation, error) {
	if accountNumber == "" {
		return AccountInfo{}, billing.LedgerSnapshot{}, billing.Reconciliation{}, billing.ErrEmptyAccountNumber
	}
	account, err := s.directory.AccountInfo(ctx, accountNumber)
	if err != nil {
		return AccountInfo{}, billing.LedgerSnapshot{}, billing.Reconciliation{}, err
	}
	if !account.Active {
		return AccountInfo{}, billing.LedgerSnapshot{}, billing.Reconciliation{}, ErrInactiveAccount
	}

	started := s.clock.Now()
	doc, err := s.snapshots.FetchSnapshot(ctx, account.Region, account.AccountNumber)
	if err != nil {
		metrics.ObserveSnapshotFetch(account.Region, metrics.ResultError, s.clock.Now().Sub(started))
		return AccountInfo{}, billing.LedgerSnapshot{}, billing.Reconciliation{}, err
	}
	metrics.ObserveSnapshotFetch(account.Region, metrics.ResultSuccess, s.clock.Now().Sub(started))

	snapshot := billing.SnapshotFromDocument(doc, s.parser)
	rec := billing.Reconcile(snapshot)
	metrics.IncReconcile(metrics.ResultSuccess)
	for _, item := range rec.Items {
		if item.Category == billing.CategoryResidual {
			metrics.IncReconcileResidual()
			s.logger.Printf("unattributed residual %.2f for account %s", item.Amount, account.AccountNumber)
			break
		}
	}
	return account, snapshot, rec, nil
}

func (s *BillingService) recentPayments(ctx context.Context, accountNumber string) []billing.PaymentRecord {
	if s.payments == nil {
		return nil
	}
	records, err := s.payments.ListByAccount(ctx, accountNumber, 20)
	if err != nil {
		s.logger.Printf("list payments failed for account %s: %v", accountNumber, err)
		return nil
	}
	return records
}

func (s *BillingService) currentPeriod() string {
	return s.clock.Now().UTC().Format("2006-01")
}

func newPaymentID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "pay-" + hex.EncodeToString(buf)
}
