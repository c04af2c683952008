package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. Handlers match these with errors.Is; lower layers wrap them
// with context via fmt.Errorf("...: %w", err).
var (
	// ErrValidation — missing or invalid required input; operation not attempted
	ErrValidation = errors.New("validation error")

	// ErrInvalidState — entity is not in the state the operation requires
	ErrInvalidState = errors.New("invalid state")

	// ErrNotFound — target entity does not exist (benign for delete-style ops)
	ErrNotFound = errors.New("not found")

	// ErrStore — underlying store call failed (network, permission)
	ErrStore = errors.New("store error")

	// ErrEstimator — external predictor failed or returned malformed data;
	// never surfaces past the estimator service, which falls back instead
	ErrEstimator = errors.New("estimator error")
)

// Specific errors, chained into the taxonomy so errors.Is works on both levels
var (
	ErrQueueNotFound  = fmt.Errorf("%w: queue", ErrNotFound)
	ErrTicketNotFound = fmt.Errorf("%w: ticket", ErrNotFound)
	ErrEmptyName      = fmt.Errorf("%w: name is required", ErrValidation)
	ErrAlreadyCalled  = fmt.Errorf("%w: ticket is not waiting", ErrInvalidState)
	ErrNotQueueOwner  = errors.New("queue belongs to another administrator")
)
