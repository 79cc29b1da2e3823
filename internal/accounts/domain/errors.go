package accounts

import "errors"

var (
	// ErrEmptyAccountNumber is returned when the account number is empty.
	ErrEmptyAccountNumber = errors.New("accounts: empty account number")
	// ErrEmptySubscriberID is returned when the subscriber id is empty.
	ErrEmptySubscriberID = errors.New("accounts: empty subscriber id")
	// ErrEmptyRegion is returned when the region is empty.
	ErrEmptyRegion = errors.New("accounts: empty region")
	// ErrEmptyAddress is returned when the address is empty.
	ErrEmptyAddress = errors.New("accounts: empty address")
	// ErrAccountNotFound is returned when an account does not exist.
	ErrAccountNotFound = errors.New("accounts: not found")
	// ErrAccountExists is returned when registering a duplicate account number.
	ErrAccountExists = errors.New("accounts: already registered")
	// ErrAccountInactive is returned when operating on a deactivated account.
	ErrAccountInactive = errors.New("accounts: inactive")
	// ErrSubscriberMismatch is returned when an account belongs to another subscriber.
	ErrSubscriberMismatch = errors.New("accounts: subscriber mismatch")
)
