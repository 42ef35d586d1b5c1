package printjob

import "errors"

var (
	// ErrJobNotFound is returned when a job id does not exist in the store.
	ErrJobNotFound = errors.New("print job not found")

	// ErrAlreadyClaimed is returned when a claim loses the race: the job is
	// no longer pending because another executor took it first.
	ErrAlreadyClaimed = errors.New("print job already claimed or not pending")

	// ErrInvalidTransition is returned when a status update does not follow
	// the pending -> processing -> terminal lifecycle.
	ErrInvalidTransition = errors.New("invalid print job status transition")

	// ErrOrderNotFound is returned when enqueueing for an unknown order.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderEmpty is returned when enqueueing for an order with no items.
	ErrOrderEmpty = errors.New("order has no line items")

	// ErrInvalidType is returned for an unknown job type string.
	ErrInvalidType = errors.New("invalid print job type")

	// ErrInvalidTarget is returned for an unknown printer target string.
	ErrInvalidTarget = errors.New("invalid printer target")
)
