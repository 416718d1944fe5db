package vaccination

import "errors"

var (
	// ErrChildNotFound is returned when the referenced child does not exist
	// or does not belong to the calling account.
	ErrChildNotFound = errors.New("child not found")

	// ErrScheduleExists is returned when a schedule has already been
	// generated for the child.
	ErrScheduleExists = errors.New("vaccination schedule already exists")

	// ErrDoseNotFound is returned when the referenced scheduled dose does
	// not exist or does not belong to the calling account.
	ErrDoseNotFound = errors.New("scheduled dose not found")

	// ErrInvalidInput marks a rejected request payload. Handlers map it to a
	// 400; any other non-sentinel error is a storage failure.
	ErrInvalidInput = errors.New("invalid input")
)
