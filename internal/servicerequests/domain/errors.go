package servicerequests

import "errors"

var (
	// ErrEmptyAccountNumber is returned when the account number is empty.
	ErrEmptyAccountNumber = errors.New("service requests: empty account number")
	// ErrEmptySubscriberID is returned when the subscriber id is empty.
	ErrEmptySubscriberID = errors.New("service requests: empty subscriber id")
	// ErrEmptyCategory is returned when the category is empty.
	ErrEmptyCategory = errors.New("service requests: empty category")
	// ErrEmptyDescription is returned when the description is empty.
	ErrEmptyDescription = errors.New("service requests: empty description")
	// ErrNotFound is returned when a request does not exist.
	ErrNotFound = errors.New("service requests: not found")
	// ErrInvalidTransition is returned for disallowed status changes.
	ErrInvalidTransition = errors.New("service requests: invalid status transition")
)
