package enforcement

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time. Injectable so tests can drive
// scheduling deterministically instead of sleeping.
type Clock func() time.Time

// State is the lifecycle state of an enforcement record.
type State int

const (
	// StatePending means the action has not been executed yet.
	StatePending State = iota
	// StateActive means the action is applied and waiting for its
	// duration to expire.
	StateActive
	// StateCompleted means a one-shot action finished with nothing to undo.
	StateCompleted
	// StateCancelled means the record was cancelled by a moderator or
	// because its target disappeared.
	StateCancelled
	// StateReversed means a timed action was undone after expiry.
	StateReversed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateReversed:
		return "reversed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is legal from s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateReversed
}

// Target identifies the subject of an enforcement.
type Target struct {
	UserID  string
	GuildID string
}

// Record is one scheduled or in-flight moderation action against a target.
// Records are owned exclusively by the Store; external code only ever sees
// copies. Optional timestamps use the time.Time zero value for "unset".
type Record struct {
	ID        string
	WarningID string
	Target    Target
	Action    Action

	State State

	CreatedAt  time.Time
	ExecuteAt  time.Time
	ReverseAt  time.Time
	ExecutedAt time.Time
	ReversedAt time.Time
}

// NewRecord builds a Pending record for the given warning, target and
// action. ExecuteAt is now unless the action carries an explicit delay;
// ReverseAt is provisionally set for duration-bearing reversible actions
// and recomputed from the actual execution time when the action runs.
func NewRecord(warningID string, target Target, action Action, now time.Time) *Record {
	r := &Record{
		ID:        uuid.NewString(),
		WarningID: warningID,
		Target:    target,
		Action:    action,
		State:     StatePending,
		CreatedAt: now,
		ExecuteAt: now.Add(action.ExecuteDelay()),
	}
	if action.NeedsReversal() {
		r.ReverseAt = r.ExecuteAt.Add(action.Params.Duration)
	}
	return r
}

// execute transitions Pending -> Active (reversible action) or
// Pending -> Completed (one-shot). Must be called under the store's
// per-key section.
func (r *Record) execute(now time.Time) error {
	if r.State != StatePending {
		return ErrInvalidTransition
	}
	r.ExecutedAt = now
	if r.Action.NeedsReversal() {
		r.ReverseAt = now.Add(r.Action.Params.Duration)
		r.State = StateActive
	} else {
		r.ReverseAt = time.Time{}
		r.State = StateCompleted
	}
	return nil
}

// reverse transitions Active -> Reversed.
func (r *Record) reverse(now time.Time) error {
	if r.State != StateActive {
		return ErrInvalidTransition
	}
	r.ReversedAt = now
	r.State = StateReversed
	return nil
}

// cancel transitions Pending or Active -> Cancelled. Cancellation is a
// bookkeeping transition only; undoing an already-applied action is the
// caller's job (see Service.Cancel).
func (r *Record) cancel() error {
	if r.State != StatePending && r.State != StateActive {
		return ErrInvalidTransition
	}
	r.State = StateCancelled
	return nil
}

// DueForExecution reports whether the record should execute at now.
func (r *Record) DueForExecution(now time.Time) bool {
	return r.State == StatePending && !r.ExecuteAt.After(now)
}

// DueForReversal reports whether the record should reverse at now.
func (r *Record) DueForReversal(now time.Time) bool {
	return r.State == StateActive && !r.ReverseAt.IsZero() && !r.ReverseAt.After(now)
}
