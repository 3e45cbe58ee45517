package parking

import "errors"

var (
	ErrDuplicateActiveSession      = errors.New("vehicle already has an active ticket")
	ErrUnrecognizedVehicleCategory = errors.New("unrecognized vehicle category")
	ErrInsufficientCapacity        = errors.New("insufficient capacity")
	ErrNoActiveSession             = errors.New("no active ticket for vehicle")
	ErrInvalidTransition           = errors.New("invalid ticket transition")
	ErrInvalidPlate                = errors.New("registration plate cannot be empty")

	// ErrAllocationConsistency means a reservation targeted an occupied slot.
	// Under the garage lock this never happens; seeing it is a bug.
	ErrAllocationConsistency = errors.New("allocation consistency violation")
)
