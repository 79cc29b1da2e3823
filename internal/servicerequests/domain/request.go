package servicerequests

import (
	"context"
	"time"
)

// Status is the lifecycle state of a service request.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
)

// ServiceRequest is a subscriber-submitted issue, a leak report or a
// billing dispute, tracked until an operator closes it.
type ServiceRequest struct {
	ID            string
	AccountNumber string
	SubscriberID  string
	Category      string
	Description   string
	Status        Status
	Resolution    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks request invariants.
func (s ServiceRequest) Validate() error {
	if s.AccountNumber == "" {
		return ErrEmptyAccountNumber
	}
	if s.SubscriberID == "" {
		return ErrEmptySubscriberID
	}
	if s.Category == "" {
		return ErrEmptyCategory
	}
	if s.Description == "" {
		return ErrEmptyDescription
	}
	return nil
}

// Start moves an open request into progress.
func (s *ServiceRequest) Start(at time.Time) error {
	if s.Status != StatusOpen {
		return ErrInvalidTransition
	}
	s.Status = StatusInProgress
	s.UpdatedAt = at.UTC()
	return nil
}

// Close resolves a request. Closing is allowed from open as well, for
// duplicates and requests resolved without work.
func (s *ServiceRequest) Close(resolution string, at time.Time) error {
	if s.Status == StatusClosed {
		return ErrInvalidTransition
	}
	s.Status = StatusClosed
	s.Resolution = resolution
	s.UpdatedAt = at.UTC()
	return nil
}

// Repository manages service request persistence.
type Repository interface {
	Get(ctx context.Context, id string) (*ServiceRequest, error)
	Save(ctx context.Context, request *ServiceRequest) error
	ListBySubscriber(ctx context.Context, subscriberID string) ([]ServiceRequest, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]ServiceRequest, error)
}
