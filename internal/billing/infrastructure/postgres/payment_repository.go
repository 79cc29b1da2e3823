package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	billing "waterworks-portal/internal/billing/domain"
)

const defaultPaymentsTable = "payment_records"

// DBTX abstracts *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PaymentRepository is a Postgres implementation for payment records.
type PaymentRepository struct {
	db    DBTX
	table string
}

// NewPaymentRepository constructs a repository.
func NewPaymentRepository(db DBTX, opts ...PaymentOption) *PaymentRepository {
	repo := &PaymentRepository{db: db, table: defaultPaymentsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// PaymentOption configures the repository.
type PaymentOption func(*PaymentRepository)

// WithPaymentsTable overrides the default table name.
func WithPaymentsTable(table string) PaymentOption {
	return func(repo *PaymentRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Save inserts a payment record.
func (r *PaymentRepository) Save(ctx context.Context, record *billing.PaymentRecord) error {
	if r == nil || r.db == nil {
		return errors.New("payment repo: nil db")
	}
	if record == nil {
		return billing.ErrNilRecord
	}
	if record.AccountNumber == "" {
		return billing.ErrEmptyAccountNumber
	}
	if record.Amount <= 0 {
		return billing.ErrNonPositiveAmount
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	account_number,
	service,
	period,
	amount,
	paid_at
) VALUES (
	$1, $2, $3, $4, $5, $6
)`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.AccountNumber,
		record.Service,
		record.Period,
		record.Amount,
		record.PaidAt.UTC(),
	)
	return err
}

// ListByAccount returns recent payments, newest first.
func (r *PaymentRepository) ListByAccount(ctx context.Context, accountNumber string, limit int) ([]billing.PaymentRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("payment repo: nil db")
	}
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
SELECT id, account_number, service, period, amount, paid_at, created_at
FROM %s
WHERE account_number = $1
ORDER BY paid_at DESC
LIMIT $2`, r.table)

	rows, err := r.db.QueryContext(ctx, query, accountNumber, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.PaymentRecord
	for rows.Next() {
		var record billing.PaymentRecord
		if err := rows.Scan(
			&record.ID,
			&record.AccountNumber,
			&record.Service,
			&record.Period,
			&record.Amount,
			&record.PaidAt,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		record.PaidAt = record.PaidAt.UTC()
		record.CreatedAt = record.CreatedAt.UTC()
		out = append(out, record)
	}
	return out, rows.Err()
}
