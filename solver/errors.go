package solver

import "errors"

// Input-validation failures reported by the builder, repair and solver.
// All are raised synchronously to the caller; none are retried internally.
var (
	ErrNoPupils      = errors.New("solver: no pupils")
	ErrNoSeats       = errors.New("solver: room has no seats")
	ErrCapacity      = errors.New("solver: not enough free seats")
	ErrBadFixed      = errors.New("solver: fixed placement does not resolve to a seat")
	ErrFixedConflict = errors.New("solver: two fixed pupils claim the same seat")
)
