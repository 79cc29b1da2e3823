package billing

import "errors"

var (
	// ErrEmptyAccountNumber is returned when an account number is missing.
	ErrEmptyAccountNumber = errors.New("billing: empty account number")
	// ErrNilRecord is returned when saving a nil payment record.
	ErrNilRecord = errors.New("billing: nil payment record")
	// ErrNonPositiveAmount is returned when a payment record amount is not positive.
	ErrNonPositiveAmount = errors.New("billing: non-positive amount")
)
