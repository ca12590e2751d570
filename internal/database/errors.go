package database

import "errors"

// Business-rule failures surfaced to callers as distinct recoverable
// outcomes. Handlers and services branch on these with errors.Is.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrResourceNotFound    = errors.New("resource not found")
	ErrReservationNotFound = errors.New("reservation not found")

	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")

	ErrSlotConflict     = errors.New("time slot already reserved")
	ErrAlreadyFinalized = errors.New("reservation is not active")
	ErrTooLateToCancel  = errors.New("reservation has already started")

	ErrInvalidWindow = errors.New("start time must be before end time")
	ErrPastStart     = errors.New("reservation cannot start in the past")

	ErrDuplicateName = errors.New("resource name already exists")

	// ErrConcurrentModification signals a lost optimistic-concurrency race.
	// Callers may re-run the full check-then-act sequence.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)
