package application

import (
	"context"
	"errors"
	"testing"

	servicerequests "waterworks-portal/internal/servicerequests/domain"
)

type memoryRequestRepo struct {
	byID map[string]servicerequests.ServiceRequest
}

func newMemoryRequestRepo() *memoryRequestRepo {
	return &memoryRequestRepo{byID: map[string]servicerequests.ServiceRequest{}}
}

func (r *memoryRequestRepo) Get(_ context.Context, id string) (*servicerequests.ServiceRequest, error) {
	request, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	copied := request
	return &copied, nil
}

func (r *memoryRequestRepo) Save(_ context.Context, request *servicerequests.ServiceRequest) error {
	r.byID[request.ID] = *request
	return nil
}

func (r *memoryRequestRepo) ListBySubscriber(_ context.Context, subscriberID string) ([]servicerequests.ServiceRequest, error) {
	var out []servicerequests.ServiceRequest
	for _, request := range r.byID {
		if request.SubscriberID == subscriberID {
			out = append(out, request)
		}
	}
	return out, nil
}

func (r *memoryRequestRepo) ListByStatus(_ context.Context, status servicerequests.Status, _ int) ([]servicerequests.ServiceRequest, error) {
	var out []servicerequests.ServiceRequest
	for _, request := range r.byID {
		if request.Status == status {
			out = append(out, request)
		}
	}
	return out, nil
}

func validOpenInput() OpenInput {
	return OpenInput{
		AccountNumber: "40817000",
		SubscriberID:  "sub-1",
		Category:      "leak",
		Description:   "water pooling near the meter",
	}
}

func TestOpenStartClose(t *testing.T) {
	repo := newMemoryRequestRepo()
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	request, err := svc.Open(context.Background(), validOpenInput())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if request.Status != servicerequests.StatusOpen {
		t.Fatalf("expected open status, got %q", request.Status)
	}

	started, err := svc.Start(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != servicerequests.StatusInProgress {
		t.Fatalf("expected in_progress, got %q", started.Status)
	}

	closed, err := svc.Close(context.Background(), request.ID, "valve replaced")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != servicerequests.StatusClosed || closed.Resolution != "valve replaced" {
		t.Fatalf("unexpected closed request: %+v", closed)
	}
}

func TestCloseFromOpen(t *testing.T) {
	svc, _ := NewService(newMemoryRequestRepo(), nil)

	request, err := svc.Open(context.Background(), validOpenInput())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := svc.Close(context.Background(), request.ID, "duplicate"); err != nil {
		t.Fatalf("close from open: %v", err)
	}
}

func TestInvalidTransitions(t *testing.T) {
	svc, _ := NewService(newMemoryRequestRepo(), nil)

	request, err := svc.Open(context.Background(), validOpenInput())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := svc.Close(context.Background(), request.ID, "done"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := svc.Start(context.Background(), request.ID); !errors.Is(err, servicerequests.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on start after close, got %v", err)
	}
	if _, err := svc.Close(context.Background(), request.ID, "again"); !errors.Is(err, servicerequests.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double close, got %v", err)
	}
}

func TestOpenValidation(t *testing.T) {
	svc, _ := NewService(newMemoryRequestRepo(), nil)

	input := validOpenInput()
	input.Description = ""
	if _, err := svc.Open(context.Background(), input); !errors.Is(err, servicerequests.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	svc, _ := NewService(newMemoryRequestRepo(), nil)

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, servicerequests.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
