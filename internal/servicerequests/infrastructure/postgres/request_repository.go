package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	servicerequests "waterworks-portal/internal/servicerequests/domain"
)

const defaultRequestsTable = "service_requests"

// DBTX abstracts *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RequestRepository is a Postgres implementation for service requests.
type RequestRepository struct {
	db    DBTX
	table string
}

// NewRequestRepository constructs a repository.
func NewRequestRepository(db DBTX, opts ...RequestOption) *RequestRepository {
	repo := &RequestRepository{db: db, table: defaultRequestsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// RequestOption configures the repository.
type RequestOption func(*RequestRepository)

// WithRequestsTable overrides the default table name.
func WithRequestsTable(table string) RequestOption {
	return func(repo *RequestRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const requestColumns = "id, account_number, subscriber_id, category, description, status, resolution, created_at, updated_at"

// Get loads a request by id. Returns (nil, nil) when absent.
func (r *RequestRepository) Get(ctx context.Context, id string) (*servicerequests.ServiceRequest, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("request repo: nil db")
	}
	if id == "" {
		return nil, errors.New("request repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE id = $1
LIMIT 1`, requestColumns, r.table)

	request, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return request, nil
}

// Save upserts a request.
func (r *RequestRepository) Save(ctx context.Context, request *servicerequests.ServiceRequest) error {
	if r == nil || r.db == nil {
		return errors.New("request repo: nil db")
	}
	if request == nil {
		return errors.New("request repo: nil request")
	}
	if err := request.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	account_number,
	subscriber_id,
	category,
	description,
	status,
	resolution
) VALUES (
	$1, $2, $3, $4, $5, $6, $7
)
ON CONFLICT (id)
DO UPDATE SET
	status = EXCLUDED.status,
	resolution = EXCLUDED.resolution,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		request.ID,
		request.AccountNumber,
		request.SubscriberID,
		request.Category,
		request.Description,
		string(request.Status),
		request.Resolution,
	)
	return err
}

// ListBySubscriber returns a subscriber's requests, newest first.
func (r *RequestRepository) ListBySubscriber(ctx context.Context, subscriberID string) ([]servicerequests.ServiceRequest, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("request repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE subscriber_id = $1
ORDER BY created_at DESC`, requestColumns, r.table)

	rows, err := r.db.QueryContext(ctx, query, subscriberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListByStatus returns requests in one status, oldest first, for operator queues.
func (r *RequestRepository) ListByStatus(ctx context.Context, status servicerequests.Status, limit int) ([]servicerequests.ServiceRequest, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("request repo: nil db")
	}
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE status = $1
ORDER BY created_at
LIMIT $2`, requestColumns, r.table)

	rows, err := r.db.QueryContext(ctx, query, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*servicerequests.ServiceRequest, error) {
	var request servicerequests.ServiceRequest
	var status string
	if err := row.Scan(
		&request.ID,
		&request.AccountNumber,
		&request.SubscriberID,
		&request.Category,
		&request.Description,
		&status,
		&request.Resolution,
		&request.CreatedAt,
		&request.UpdatedAt,
	); err != nil {
		return nil, err
	}
	request.Status = servicerequests.Status(status)
	request.CreatedAt = request.CreatedAt.UTC()
	request.UpdatedAt = request.UpdatedAt.UTC()
	return &request, nil
}

func collectRequests(rows *sql.Rows) ([]servicerequests.ServiceRequest, error) {
	var out []servicerequests.ServiceRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *request)
	}
	return out, rows.Err()
}
