package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	accounts "waterworks-portal/internal/accounts/domain"
)

const defaultAccountsTable = "accounts"

// AccountRepository is a Postgres implementation for accounts.
type AccountRepository struct {
	db    DBTX
	table string
}

// NewAccountRepository constructs a repository.
func NewAccountRepository(db DBTX, opts ...AccountOption) *AccountRepository {
	repo := &AccountRepository{db: db, table: defaultAccountsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// AccountOption configures the repository.
type AccountOption func(*AccountRepository)

// WithAccountsTable overrides the default table name.
func WithAccountsTable(table string) AccountOption {
	return func(repo *AccountRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads an account by number. Returns (nil, nil) when absent.
func (r *AccountRepository) Get(ctx context.Context, accountNumber string) (*accounts.Account, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("account repo: nil db")
	}
	if accountNumber == "" {
		return nil, accounts.ErrEmptyAccountNumber
	}

	query := fmt.Sprintf(`
SELECT account_number, subscriber_id, region, address, subscriber_name, active, created_at, updated_at
FROM %s
WHERE account_number = $1
LIMIT 1`, r.table)

	var account accounts.Account
	if err := r.db.QueryRowContext(ctx, query, accountNumber).Scan(
		&account.AccountNumber,
		&account.SubscriberID,
		&account.Region,
		&account.Address,
		&account.SubscriberName,
		&account.Active,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	account.CreatedAt = account.CreatedAt.UTC()
	account.UpdatedAt = account.UpdatedAt.UTC()
	return &account, nil
}

// Save upserts an account.
func (r *AccountRepository) Save(ctx context.Context, account *accounts.Account) error {
	if r == nil || r.db == nil {
		return errors.New("account repo: nil db")
	}
	if account == nil {
		return errors.New("account repo: nil account")
	}
	if err := account.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	account_number,
	subscriber_id,
	region,
	address,
	subscriber_name,
	active
) VALUES (
	$1, $2, $3, $4, $5, $6
)
ON CONFLICT (account_number)
DO UPDATE SET
	subscriber_id = EXCLUDED.subscriber_id,
	region = EXCLUDED.region,
	address = EXCLUDED.address,
	subscriber_name = EXCLUDED.subscriber_name,
	active = EXCLUDED.active,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		account.AccountNumber,
		account.SubscriberID,
		account.Region,
		account.Address,
		account.SubscriberName,
		account.Active,
	)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now
	return nil
}

// ListBySubscriber returns all accounts linked to one subscriber.
func (r *AccountRepository) ListBySubscriber(ctx context.Context, subscriberID string) ([]accounts.Account, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("account repo: nil db")
	}
	if subscriberID == "" {
		return nil, accounts.ErrEmptySubscriberID
	}

	query := fmt.Sprintf(`
SELECT account_number, subscriber_id, region, address, subscriber_name, active, created_at, updated_at
FROM %s
WHERE subscriber_id = $1
ORDER BY created_at`, r.table)

	rows, err := r.db.QueryContext(ctx, query, subscriberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []accounts.Account
	for rows.Next() {
		var account accounts.Account
		if err := rows.Scan(
			&account.AccountNumber,
			&account.SubscriberID,
			&account.Region,
			&account.Address,
			&account.SubscriberName,
			&account.Active,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		account.CreatedAt = account.CreatedAt.UTC()
		account.UpdatedAt = account.UpdatedAt.UTC()
		out = append(out, account)
	}
	return out, rows.Err()
}

// Deactivate marks an account inactive. The row stays for history.
func (r *AccountRepository) Deactivate(ctx context.Context, accountNumber string, at time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("account repo: nil db")
	}
	if accountNumber == "" {
		return accounts.ErrEmptyAccountNumber
	}

	query := fmt.Sprintf(`
UPDATE %s
SET active = FALSE, updated_at = $2
WHERE account_number = $1`, r.table)

	res, err := r.db.ExecContext(ctx, query, accountNumber, at.UTC())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return accounts.ErrAccountNotFound
	}
	return nil
}
