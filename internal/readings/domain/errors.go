package readings

import "errors"

var (
	// ErrEmptyAccountNumber is returned when the account number is empty.
	ErrEmptyAccountNumber = errors.New("readings: empty account number")
	// ErrEmptyService is returned when the service name is empty.
	ErrEmptyService = errors.New("readings: empty service")
	// ErrNegativeValue is returned for negative meter values.
	ErrNegativeValue = errors.New("readings: negative value")
	// ErrMissingTakenAt is returned when the reading timestamp is zero.
	ErrMissingTakenAt = errors.New("readings: missing taken_at")
	// ErrNonMonotonic is returned when a reading is below the last accepted one.
	ErrNonMonotonic = errors.New("readings: value below previous reading")
)
