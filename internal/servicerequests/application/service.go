package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	servicerequests "waterworks-portal/internal/servicerequests/domain"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Service handles the service request lifecycle.
type Service struct {
	repo  servicerequests.Repository
	clock Clock
}

// NewService constructs a service request service.
func NewService(repo servicerequests.Repository, clock Clock) (*Service, error) {
	if repo == nil {
		return nil, errors.New("service request service: nil repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{repo: repo, clock: clock}, nil
}

// OpenInput carries the fields needed to open a request.
type OpenInput struct {
	AccountNumber string
	SubscriberID  string
	Category      string
	Description   string
}

// Open creates a new request in the open status.
func (s *Service) Open(ctx context.Context, input OpenInput) (*servicerequests.ServiceRequest, error) {
	now := s.clock.Now().UTC()
	request := &servicerequests.ServiceRequest{
		ID:            newRequestID(),
		AccountNumber: input.AccountNumber,
		SubscriberID:  input.SubscriberID,
		Category:      input.Category,
		Description:   input.Description,
		Status:        servicerequests.StatusOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// Get returns one request.
func (s *Service) Get(ctx context.Context, id string) (*servicerequests.ServiceRequest, error) {
	request, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, servicerequests.ErrNotFound
	}
	return request, nil
}

// ListBySubscriber returns a subscriber's requests.
func (s *Service) ListBySubscriber(ctx context.Context, subscriberID string) ([]servicerequests.ServiceRequest, error) {
	if subscriberID == "" {
		return nil, servicerequests.ErrEmptySubscriberID
	}
	return s.repo.ListBySubscriber(ctx, subscriberID)
}

// ListQueue returns the operator queue for one status.
func (s *Service) ListQueue(ctx context.Context, status servicerequests.Status, limit int) ([]servicerequests.ServiceRequest, error) {
	return s.repo.ListByStatus(ctx, status, limit)
}

// Start moves a request into progress.
func (s *Service) Start(ctx context.Context, id string) (*servicerequests.ServiceRequest, error) {
	request, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := request.Start(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// Close resolves a request.
func (s *Service) Close(ctx context.Context, id, resolution string) (*servicerequests.ServiceRequest, error) {
	request, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := request.Close(resolution, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func newRequestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "req-" + hex.EncodeToString(buf)
}
