package enforcement

import "errors"

// Error taxonomy for enforcement operations. Callers classify failures
// with errors.Is; wrapped detail is carried via fmt.Errorf("...: %w", err).
var (
	// ErrInvalidTransition is returned for an illegal state machine move,
	// including a transition lost to a concurrent racer. The record is
	// left unchanged; the caller must re-read current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNotFound is returned for an unknown record id.
	ErrNotFound = errors.New("enforcement record not found")

	// ErrDuplicateID is returned when adding a record under an id that
	// already exists in the store.
	ErrDuplicateID = errors.New("enforcement record id already exists")

	// ErrExternalAPI marks a transient moderation API failure. The record
	// keeps its pre-call state so the next sweep retries it.
	ErrExternalAPI = errors.New("moderation api call failed")

	// ErrEntityGone marks a target user, guild or channel that can no
	// longer be resolved. Records hitting it are cancelled, not retried.
	ErrEntityGone = errors.New("target entity no longer exists")

	// ErrValidationFailed is returned for malformed action parameters at
	// creation time, before any record is stored.
	ErrValidationFailed = errors.New("action validation failed")
)
