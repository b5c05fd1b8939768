package services

import "errors"

// Engine error taxonomy. Handlers match with errors.Is and translate to HTTP
// statuses; an availability conflict is an expected outcome of concurrent
// demand, not a server fault.
var (
	ErrInvalidRange     = errors.New("check-out must be at least one night after check-in")
	ErrInvalidOccupancy = errors.New("occupancy is out of range for this unit")

	// ErrAvailabilityConflict means the requested dates (or the parking slot)
	// overlap an existing allocation.
	ErrAvailabilityConflict = errors.New("dates no longer available")

	// ErrParkingConflict is an availability conflict on the shared parking slot.
	ErrParkingConflict = errors.New("parking slot already taken")

	// ErrGateway wraps payment-provider communication failures. The reservation
	// stays pending so the caller can retry.
	ErrGateway = errors.New("payment gateway error")

	// ErrAlreadyReviewed means the claim was already approved or rejected.
	ErrAlreadyReviewed = errors.New("claim has already been reviewed")

	// ErrClaimNotAllowed means the reservation already has an agent attached or
	// the agent already has a pending claim on it.
	ErrClaimNotAllowed = errors.New("claim not allowed for this reservation")

	// ErrNotPending means a state transition was attempted on a reservation
	// that is neither pending nor already confirmed.
	ErrNotPending = errors.New("reservation is not pending")

	ErrNotFound = errors.New("record not found")
)
