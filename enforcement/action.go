package enforcement

import (
	"fmt"
	"time"
)

// ActionKind identifies one of the closed set of enforcement actions.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionMute
	ActionVoiceMute
	ActionVoiceDeafen
	ActionVoiceDisconnect
	ActionVoiceChannelHaunt
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionMute:
		return "mute"
	case ActionVoiceMute:
		return "voice-mute"
	case ActionVoiceDeafen:
		return "voice-deafen"
	case ActionVoiceDisconnect:
		return "voice-disconnect"
	case ActionVoiceChannelHaunt:
		return "voice-channel-haunt"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ActionParams carries the parameters shared by the non-haunt actions.
// For the duration-bearing kinds (mute, voice mute, voice deafen) Duration
// is how long the action stays applied before reversal. For voice
// disconnect it is an optional delay before the one-shot disconnect runs.
type ActionParams struct {
	Duration time.Duration
	Reason   string
}

// HauntParams parameterizes the voice channel haunt: the target is moved
// between random voice channels TeleportCount times, Interval apart,
// optionally returning to OriginChannelID at the end.
type HauntParams struct {
	TeleportCount  int
	Interval       time.Duration
	ReturnToOrigin bool
	OriginChannelID string
}

// Action is a tagged variant over the action kinds. Params is meaningful
// for every kind except haunt; Haunt only for ActionVoiceChannelHaunt.
type Action struct {
	Kind   ActionKind
	Params ActionParams
	Haunt  HauntParams
}

func NewMute(duration time.Duration, reason string) Action {
	return Action{Kind: ActionMute, Params: ActionParams{Duration: duration, Reason: reason}}
}

func NewVoiceMute(duration time.Duration, reason string) Action {
	return Action{Kind: ActionVoiceMute, Params: ActionParams{Duration: duration, Reason: reason}}
}

func NewVoiceDeafen(duration time.Duration, reason string) Action {
	return Action{Kind: ActionVoiceDeafen, Params: ActionParams{Duration: duration, Reason: reason}}
}

// NewVoiceDisconnect creates a one-shot disconnect, optionally delayed.
func NewVoiceDisconnect(delay time.Duration, reason string) Action {
	return Action{Kind: ActionVoiceDisconnect, Params: ActionParams{Duration: delay, Reason: reason}}
}

func NewVoiceChannelHaunt(teleportCount int, interval time.Duration, returnToOrigin bool, originChannelID string) Action {
	return Action{Kind: ActionVoiceChannelHaunt, Haunt: HauntParams{
		TeleportCount:   teleportCount,
		Interval:        interval,
		ReturnToOrigin:  returnToOrigin,
		OriginChannelID: originChannelID,
	}}
}

// NeedsReversal reports whether the action must be undone after its
// duration expires. One-shot kinds (disconnect, haunt) never do.
func (a Action) NeedsReversal() bool {
	switch a.Kind {
	case ActionMute, ActionVoiceMute, ActionVoiceDeafen:
		return a.Params.Duration > 0
	default:
		return false
	}
}

// IsImmediate reports whether the action executes on creation rather than
// waiting for a delay. Only disconnect (with a delay) and haunt (with an
// interval) ever defer execution.
func (a Action) IsImmediate() bool {
	switch a.Kind {
	case ActionVoiceDisconnect:
		return a.Params.Duration <= 0
	case ActionVoiceChannelHaunt:
		return a.Haunt.Interval <= 0
	default:
		return true
	}
}

// ExecuteDelay is how long after creation the action becomes due.
func (a Action) ExecuteDelay() time.Duration {
	switch a.Kind {
	case ActionVoiceDisconnect:
		if a.Params.Duration > 0 {
			return a.Params.Duration
		}
	case ActionVoiceChannelHaunt:
		if a.Haunt.Interval > 0 {
			return a.Haunt.Interval
		}
	}
	return 0
}

// Validate rejects malformed parameters before a record is ever stored.
func (a Action) Validate() error {
	switch a.Kind {
	case ActionNone, ActionMute, ActionVoiceMute, ActionVoiceDeafen, ActionVoiceDisconnect:
		if a.Params.Duration < 0 {
			return fmt.Errorf("%w: negative duration %s for %s", ErrValidationFailed, a.Params.Duration, a.Kind)
		}
	case ActionVoiceChannelHaunt:
		if a.Haunt.TeleportCount < 0 {
			return fmt.Errorf("%w: negative teleport count %d", ErrValidationFailed, a.Haunt.TeleportCount)
		}
		if a.Haunt.Interval < 0 {
			return fmt.Errorf("%w: negative haunt interval %s", ErrValidationFailed, a.Haunt.Interval)
		}
	default:
		return fmt.Errorf("%w: unknown action kind %d", ErrValidationFailed, int(a.Kind))
	}
	return nil
}

// Haunt defaults, used when the command layer leaves them unset.
const (
	defaultTeleportCount = 3
	defaultHauntInterval = 10 * time.Second
)

// TeleportCountOrDefault returns the configured teleport count or the default.
func (p HauntParams) TeleportCountOrDefault() int {
	if p.TeleportCount > 0 {
		return p.TeleportCount
	}
	return defaultTeleportCount
}

// IntervalOrDefault returns the configured teleport spacing or the default.
func (p HauntParams) IntervalOrDefault() time.Duration {
	if p.Interval > 0 {
		return p.Interval
	}
	return defaultHauntInterval
}
