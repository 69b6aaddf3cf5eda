package enforcement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActionNeedsReversal(t *testing.T) {
	assert.True(t, NewMute(300*time.Second, "").NeedsReversal())
	assert.True(t, NewVoiceMute(600*time.Second, "").NeedsReversal())
	assert.True(t, NewVoiceDeafen(900*time.Second, "").NeedsReversal())

	// Zero duration means nothing to reverse.
	assert.False(t, NewMute(0, "").NeedsReversal())
	assert.False(t, NewVoiceMute(0, "").NeedsReversal())

	// One-shot kinds never reverse, delayed or not.
	assert.False(t, NewVoiceDisconnect(0, "").NeedsReversal())
	assert.False(t, NewVoiceDisconnect(10*time.Second, "").NeedsReversal())
	assert.False(t, NewVoiceChannelHaunt(3, 10*time.Second, true, "123").NeedsReversal())
	assert.False(t, Action{Kind: ActionNone}.NeedsReversal())
}

func TestActionIsImmediate(t *testing.T) {
	assert.True(t, NewMute(300*time.Second, "").IsImmediate())
	assert.True(t, NewVoiceMute(600*time.Second, "").IsImmediate())
	assert.True(t, NewVoiceDeafen(900*time.Second, "").IsImmediate())
	assert.True(t, NewVoiceDisconnect(0, "").IsImmediate())
	assert.True(t, NewVoiceChannelHaunt(3, 0, true, "").IsImmediate())

	assert.False(t, NewVoiceDisconnect(5*time.Second, "").IsImmediate())
	assert.False(t, NewVoiceChannelHaunt(3, 10*time.Second, true, "").IsImmediate())
}

func TestActionValidate(t *testing.T) {
	assert.NoError(t, NewMute(300*time.Second, "spam").Validate())
	assert.NoError(t, NewVoiceChannelHaunt(0, 0, false, "").Validate())

	assert.ErrorIs(t, NewMute(-time.Second, "").Validate(), ErrValidationFailed)
	assert.ErrorIs(t, NewVoiceChannelHaunt(-1, 10*time.Second, true, "").Validate(), ErrValidationFailed)
	assert.ErrorIs(t, NewVoiceChannelHaunt(3, -time.Second, true, "").Validate(), ErrValidationFailed)
	assert.ErrorIs(t, Action{Kind: ActionKind(99)}.Validate(), ErrValidationFailed)
}

func TestHauntParamDefaults(t *testing.T) {
	p := HauntParams{}
	assert.Equal(t, 3, p.TeleportCountOrDefault())
	assert.Equal(t, 10*time.Second, p.IntervalOrDefault())

	p = HauntParams{TeleportCount: 5, Interval: 2 * time.Second}
	assert.Equal(t, 5, p.TeleportCountOrDefault())
	assert.Equal(t, 2*time.Second, p.IntervalOrDefault())
}
