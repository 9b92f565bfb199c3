package domain

import "errors"

var (
	// ErrDuplicate signals a registration sharing the same trimmed
	// full name and contact number with an existing row.
	ErrDuplicate = errors.New("duplicate registration detected for the same name and contact number")

	// ErrNotFound signals an unknown registration id.
	ErrNotFound = errors.New("registration not found")

	// ErrCapacityReached is reported by the store when a conditional
	// insert loses the capacity race.
	ErrCapacityReached = errors.New("registration capacity reached")

	// ErrTimeout signals that a bounded wait on a listing or export
	// elapsed before the store answered.
	ErrTimeout = errors.New("operation timed out")
)

// ValidationError carries field-scoped input problems.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// GateRejection is returned when the admission gate is closed. It is a
// client-facing outcome, not a hard failure.
type GateRejection struct {
	Status       GateStatus
	CurrentCount int
}

func (e *GateRejection) Error() string {
	return e.Status.Message
}
