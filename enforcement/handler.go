package enforcement

import (
	"fmt"
	"log"
	"time"
)

// ModerationAPI is the capability the handlers need from the chat
// platform. The bot package implements it over a discordgo session;
// tests use a fake. Implementations must bound their own waits and
// classify failures as ErrExternalAPI (transient) or ErrEntityGone
// (target unresolvable) via error wrapping.
type ModerationAPI interface {
	// Timeout applies a text timeout until the given time.
	Timeout(guildID, userID string, until time.Time) error
	// RemoveTimeout lifts a text timeout.
	RemoveTimeout(guildID, userID string) error
	// SetVoiceMute applies or lifts a server voice mute.
	SetVoiceMute(guildID, userID string, mute bool) error
	// SetVoiceDeafen applies or lifts a server voice deafen.
	SetVoiceDeafen(guildID, userID string, deafen bool) error
	// VoiceDisconnect kicks the user out of their voice channel.
	VoiceDisconnect(guildID, userID string) error
	// MoveToVoiceChannel moves the user to the given voice channel.
	MoveToVoiceChannel(guildID, userID, channelID string) error
	// VoiceChannels lists the guild's voice channel ids.
	VoiceChannels(guildID string) ([]string, error)
	// CurrentVoiceChannel returns the channel the user is connected to,
	// or ErrEntityGone if they are not in voice.
	CurrentVoiceChannel(guildID, userID string) (string, error)
}

// ActionHandler executes and reverses one kind of enforcement action.
// Handlers never retry internally; a transient failure surfaces as
// ErrExternalAPI and the scheduler's next sweep retries naturally.
type ActionHandler interface {
	Execute(api ModerationAPI, target Target, action Action) error
	Reverse(api ModerationAPI, target Target, action Action) error
	IsImmediate(action Action) bool
}

// Registry maps action kinds to their handlers.
type Registry struct {
	handlers map[ActionKind]ActionHandler
}

// NewRegistry builds a registry with every action kind covered. clock and
// rng feed the timeout deadline and the haunt shuffle; sleep spaces haunt
// teleports and is replaced in tests.
func NewRegistry(clock Clock, rng Rand, sleep func(time.Duration)) *Registry {
	if clock == nil {
		clock = time.Now
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Registry{handlers: map[ActionKind]ActionHandler{
		ActionNone:              noopHandler{},
		ActionMute:              muteHandler{clock: clock},
		ActionVoiceMute:         voiceMuteHandler{},
		ActionVoiceDeafen:       voiceDeafenHandler{},
		ActionVoiceDisconnect:   voiceDisconnectHandler{},
		ActionVoiceChannelHaunt: hauntHandler{rng: rng, sleep: sleep},
	}}
}

// Handler returns the handler for an action kind.
func (r *Registry) Handler(kind ActionKind) (ActionHandler, error) {
	h, ok := r.handlers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no handler for action kind %s", ErrValidationFailed, kind)
	}
	return h, nil
}

type noopHandler struct{}

func (noopHandler) Execute(ModerationAPI, Target, Action) error { return nil }
func (noopHandler) Reverse(ModerationAPI, Target, Action) error { return nil }
func (noopHandler) IsImmediate(Action) bool                     { return true }

// muteHandler applies a text timeout. The platform lifts timeouts on its
// own when they expire, so reversal removes ours early only if still set.
type muteHandler struct {
	clock Clock
}

func (h muteHandler) Execute(api ModerationAPI, t Target, a Action) error {
	until := h.clock().Add(a.Params.Duration)
	if err := api.Timeout(t.GuildID, t.UserID, until); err != nil {
		return fmt.Errorf("timeout %s in guild %s: %w", t.UserID, t.GuildID, err)
	}
	return nil
}

func (h muteHandler) Reverse(api ModerationAPI, t Target, _ Action) error {
	if err := api.RemoveTimeout(t.GuildID, t.UserID); err != nil {
		return fmt.Errorf("remove timeout for %s in guild %s: %w", t.UserID, t.GuildID, err)
	}
	return nil
}

func (muteHandler) IsImmediate(a Action) bool { return a.IsImmediate() }

type voiceMuteHandler struct{}

func (voiceMuteHandler) Execute(api ModerationAPI, t Target, _ Action) error {
	if err := api.SetVoiceMute(t.GuildID, t.UserID, true); err != nil {
		return fmt.Errorf("voice mute %s in guild %s: %w", t.UserID, t.GuildID, err)
	}
	return nil
}

func (voiceMuteHandler) Reverse(api ModerationAPI, t Target, _ Action) error {
	if err := api.SetVoiceMute(t.GuildID, t.UserID, false); err != nil {
		return fmt.Errorf("voice unmute %s in guild %s: %w", t.UserID, t.GuildID, err)
	}
	return nil
}

func (voiceMuteHandler) IsImmediate(a Action) bool { return a.IsImmediate() }

type voiceDeafenHandler struct{}

func (voiceDeafenHandler) Execute(api ModerationAPI, t Target, _ Action) error {
	if err := api.SetVoiceDeafen(t.GuildID, t.UserID, true); err != nil {
		return fmt.Errorf("voice deafen %s in guild %s: %w", t.UserID, t.GuildID, err)
	}
	return nil
}

func (voiceDeafenHandler) Reverse(api ModerationAPI, t Target, _ Action) error {
	if err := api.SetVoiceDeafen(t.GuildID, t.UserID, false); err != nil {
		return fmt.Errorf("voice undeafen %s in guild %s: %w", t.UserID, t.GuildID, err)
	}
	return nil
}

func (voiceDeafenHandler) IsImmediate(a Action) bool { return a.IsImmediate() }

// voiceDisconnectHandler is one-shot: disconnects never schedule a
// reversal, so Reverse is a no-op kept only to satisfy the interface.
type voiceDisconnectHandler struct{}

func (voiceDisconnectHandler) Execute(api ModerationAPI, t Target, _ Action) error {
	if err := api.VoiceDisconnect(t.GuildID, t.UserID); err != nil {
		return fmt.Errorf("voice disconnect %s in guild %s: %w", t.UserID, t.GuildID, err)
	}
	return nil
}

func (voiceDisconnectHandler) Reverse(ModerationAPI, Target, Action) error { return nil }

func (voiceDisconnectHandler) IsImmediate(a Action) bool { return a.IsImmediate() }

// hauntHandler cycles the target through random voice channels. One-shot
// by design; a failed teleport aborts the remaining cycle rather than
// leaving the user bouncing after an error.
type hauntHandler struct {
	rng   Rand
	sleep func(time.Duration)
}

func (h hauntHandler) Execute(api ModerationAPI, t Target, a Action) error {
	origin := a.Haunt.OriginChannelID
	current, err := api.CurrentVoiceChannel(t.GuildID, t.UserID)
	if err != nil {
		return fmt.Errorf("locate %s in voice: %w", t.UserID, err)
	}
	if origin == "" {
		origin = current
	}

	channels, err := api.VoiceChannels(t.GuildID)
	if err != nil {
		return fmt.Errorf("list voice channels in guild %s: %w", t.GuildID, err)
	}
	if len(channels) == 0 {
		return fmt.Errorf("%w: guild %s has no voice channels", ErrEntityGone, t.GuildID)
	}

	count := a.Haunt.TeleportCountOrDefault()
	interval := a.Haunt.IntervalOrDefault()

	for i := 0; i < count; i++ {
		next := h.pickChannel(channels, i == 0, current)
		if err := api.MoveToVoiceChannel(t.GuildID, t.UserID, next); err != nil {
			return fmt.Errorf("teleport %s to channel %s: %w", t.UserID, next, err)
		}
		current = next
		if i < count-1 {
			h.sleep(interval)
		}
	}

	if a.Haunt.ReturnToOrigin && origin != "" {
		if err := api.MoveToVoiceChannel(t.GuildID, t.UserID, origin); err != nil {
			log.Printf("Failed to return user %s to origin channel %s: %v", t.UserID, origin, err)
		}
	}
	return nil
}

func (h hauntHandler) pickChannel(channels []string, mustDiffer bool, current string) string {
	if mustDiffer && len(channels) > 1 {
		candidates := make([]string, 0, len(channels))
		for _, c := range channels {
			if c != current {
				candidates = append(candidates, c)
			}
		}
		if len(candidates) > 0 {
			channels = candidates
		}
	}
	if h.rng == nil {
		return channels[0]
	}
	return channels[h.rng.Intn(len(channels))]
}

func (hauntHandler) Reverse(ModerationAPI, Target, Action) error { return nil }

func (hauntHandler) IsImmediate(a Action) bool { return a.IsImmediate() }
