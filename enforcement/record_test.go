package enforcement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStateTransitions(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := NewRecord("warning-123", Target{UserID: "12345", GuildID: "67890"}, NewVoiceMute(300*time.Second, "test"), now)
	require.Equal(t, StatePending, rec.State)
	assert.True(t, rec.ExecutedAt.IsZero())
	assert.False(t, rec.ReverseAt.IsZero(), "reversible action must carry a reverse time from creation")

	// Execute transitions to Active and pins the reverse time to the
	// actual execution time.
	execAt := now.Add(2 * time.Second)
	require.NoError(t, rec.execute(execAt))
	assert.Equal(t, StateActive, rec.State)
	assert.Equal(t, execAt, rec.ExecutedAt)
	assert.Equal(t, execAt.Add(300*time.Second), rec.ReverseAt)

	// Reverse transitions to Reversed.
	revAt := execAt.Add(300 * time.Second)
	require.NoError(t, rec.reverse(revAt))
	assert.Equal(t, StateReversed, rec.State)
	assert.Equal(t, revAt, rec.ReversedAt)

	// Terminal: nothing else is legal.
	assert.ErrorIs(t, rec.reverse(revAt), ErrInvalidTransition)
	assert.ErrorIs(t, rec.execute(revAt), ErrInvalidTransition)
	assert.ErrorIs(t, rec.cancel(), ErrInvalidTransition)
	assert.Equal(t, StateReversed, rec.State, "failed transition must leave state unchanged")
}

func TestRecordOneShotCompletes(t *testing.T) {
	now := time.Now()
	rec := NewRecord("warning-123", Target{UserID: "1", GuildID: "2"}, NewVoiceDisconnect(0, ""), now)

	assert.True(t, rec.ReverseAt.IsZero(), "one-shot actions never schedule reversal")

	require.NoError(t, rec.execute(now))
	assert.Equal(t, StateCompleted, rec.State)
	assert.True(t, rec.ReverseAt.IsZero())
	assert.ErrorIs(t, rec.reverse(now), ErrInvalidTransition)
}

func TestRecordCancel(t *testing.T) {
	now := time.Now()

	rec := NewRecord("w", Target{UserID: "1", GuildID: "2"}, NewMute(300*time.Second, ""), now)
	require.NoError(t, rec.cancel())
	assert.Equal(t, StateCancelled, rec.State)
	assert.ErrorIs(t, rec.execute(now), ErrInvalidTransition)

	rec = NewRecord("w", Target{UserID: "1", GuildID: "2"}, NewMute(300*time.Second, ""), now)
	require.NoError(t, rec.execute(now))
	require.NoError(t, rec.cancel())
	assert.Equal(t, StateCancelled, rec.State)
	assert.ErrorIs(t, rec.reverse(now), ErrInvalidTransition)
}

func TestRecordExecuteDelay(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Mutes execute immediately regardless of duration.
	rec := NewRecord("w", Target{UserID: "1", GuildID: "2"}, NewMute(600*time.Second, ""), now)
	assert.Equal(t, now, rec.ExecuteAt)

	// A delayed disconnect is due only after its delay.
	rec = NewRecord("w", Target{UserID: "1", GuildID: "2"}, NewVoiceDisconnect(30*time.Second, ""), now)
	assert.Equal(t, now.Add(30*time.Second), rec.ExecuteAt)
	assert.False(t, rec.DueForExecution(now))
	assert.True(t, rec.DueForExecution(now.Add(30*time.Second)))

	// A haunt with an interval defers to the first teleport.
	rec = NewRecord("w", Target{UserID: "1", GuildID: "2"}, NewVoiceChannelHaunt(3, 10*time.Second, true, ""), now)
	assert.Equal(t, now.Add(10*time.Second), rec.ExecuteAt)
}

func TestRecordDueChecks(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := NewRecord("w", Target{UserID: "1", GuildID: "2"}, NewVoiceMute(300*time.Second, ""), now)

	assert.True(t, rec.DueForExecution(now))
	assert.False(t, rec.DueForReversal(now))

	require.NoError(t, rec.execute(now))
	assert.False(t, rec.DueForExecution(now))
	assert.False(t, rec.DueForReversal(now.Add(299*time.Second)))
	assert.True(t, rec.DueForReversal(now.Add(300*time.Second)))

	require.NoError(t, rec.reverse(now.Add(300*time.Second)))
	assert.False(t, rec.DueForExecution(now.Add(time.Hour)))
	assert.False(t, rec.DueForReversal(now.Add(time.Hour)))
}
