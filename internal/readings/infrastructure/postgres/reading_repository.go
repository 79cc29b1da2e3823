package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	readings "waterworks-portal/internal/readings/domain"
)

const defaultReadingsTable = "meter_readings"

// DBTX abstracts *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ReadingRepository is a Postgres implementation for meter readings.
type ReadingRepository struct {
	db    DBTX
	table string
}

// NewReadingRepository constructs a repository.
func NewReadingRepository(db DBTX, opts ...ReadingOption) *ReadingRepository {
	repo := &ReadingRepository{db: db, table: defaultReadingsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ReadingOption configures the repository.
type ReadingOption func(*ReadingRepository)

// WithReadingsTable overrides the default table name.
func WithReadingsTable(table string) ReadingOption {
	return func(repo *ReadingRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Save inserts a reading.
func (r *ReadingRepository) Save(ctx context.Context, reading *readings.MeterReading) error {
	if r == nil || r.db == nil {
		return errors.New("reading repo: nil db")
	}
	if reading == nil {
		return errors.New("reading repo: nil reading")
	}
	if err := reading.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	account_number,
	service,
	value,
	taken_at
) VALUES (
	$1, $2, $3, $4, $5
)`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		reading.ID,
		reading.AccountNumber,
		reading.Service,
		reading.Value,
		reading.TakenAt.UTC(),
	)
	return err
}

// Latest returns the most recent reading for one service. Returns (nil, nil)
// when the account has no readings yet.
func (r *ReadingRepository) Latest(ctx context.Context, accountNumber, service string) (*readings.MeterReading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, account_number, service, value, taken_at, created_at
FROM %s
WHERE account_number = $1 AND service = $2
ORDER BY taken_at DESC
LIMIT 1`, r.table)

	var reading readings.MeterReading
	if err := r.db.QueryRowContext(ctx, query, accountNumber, service).Scan(
		&reading.ID,
		&reading.AccountNumber,
		&reading.Service,
		&reading.Value,
		&reading.TakenAt,
		&reading.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	reading.TakenAt = reading.TakenAt.UTC()
	reading.CreatedAt = reading.CreatedAt.UTC()
	return &reading, nil
}

// ListByAccount returns recent readings, newest first.
func (r *ReadingRepository) ListByAccount(ctx context.Context, accountNumber string, limit int) ([]readings.MeterReading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
SELECT id, account_number, service, value, taken_at, created_at
FROM %s
WHERE account_number = $1
ORDER BY taken_at DESC
LIMIT $2`, r.table)

	rows, err := r.db.QueryContext(ctx, query, accountNumber, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []readings.MeterReading
	for rows.Next() {
		var reading readings.MeterReading
		if err := rows.Scan(
			&reading.ID,
			&reading.AccountNumber,
			&reading.Service,
			&reading.Value,
			&reading.TakenAt,
			&reading.CreatedAt,
		); err != nil {
			return nil, err
		}
		reading.TakenAt = reading.TakenAt.UTC()
		reading.CreatedAt = reading.CreatedAt.UTC()
		out = append(out, reading)
	}
	return out, rows.Err()
}
