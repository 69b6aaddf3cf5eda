package enforcement

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModAPI records calls and injects failures, standing in for the
// discord session.
type fakeModAPI struct {
	mu             sync.Mutex
	calls          []string
	err            error
	voiceChannels  []string
	currentChannel string
}

func (f *fakeModAPI) record(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return nil
}

func (f *fakeModAPI) Timeout(guildID, userID string, until time.Time) error {
	return f.record("timeout:%s:%s", guildID, userID)
}

func (f *fakeModAPI) RemoveTimeout(guildID, userID string) error {
	return f.record("remove-timeout:%s:%s", guildID, userID)
}

func (f *fakeModAPI) SetVoiceMute(guildID, userID string, mute bool) error {
	return f.record("voice-mute:%s:%s:%t", guildID, userID, mute)
}

func (f *fakeModAPI) SetVoiceDeafen(guildID, userID string, deafen bool) error {
	return f.record("voice-deafen:%s:%s:%t", guildID, userID, deafen)
}

func (f *fakeModAPI) VoiceDisconnect(guildID, userID string) error {
	return f.record("disconnect:%s:%s", guildID, userID)
}

func (f *fakeModAPI) MoveToVoiceChannel(guildID, userID, channelID string) error {
	return f.record("move:%s:%s:%s", guildID, userID, channelID)
}

func (f *fakeModAPI) VoiceChannels(guildID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.voiceChannels, nil
}

func (f *fakeModAPI) CurrentVoiceChannel(guildID, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.currentChannel, nil
}

func (f *fakeModAPI) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeModAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeAudit struct {
	mu      sync.Mutex
	records []Record
}

func (a *fakeAudit) RecordFinalized(r Record) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, r)
}

func (a *fakeAudit) finalized() []Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Record(nil), a.records...)
}

type staticConfigs struct{ cfg GuildConfig }

func (s staticConfigs) GuildEnforcementConfig(string) GuildConfig { return s.cfg }

func newTestService(t *testing.T) (*Service, *fakeModAPI, *fakeClock, *fakeAudit) {
	t.Helper()
	api := &fakeModAPI{voiceChannels: []string{"vc-1", "vc-2", "vc-3"}, currentChannel: "vc-1"}
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	audit := &fakeAudit{}
	svc := NewService(api, staticConfigs{cfg: GuildConfig{Threshold: 2}}, ServiceOptions{
		Clock: clock.Now,
		Rand:  fixedRand{f: 0.5},
		Sleep: func(time.Duration) {},
		Audit: audit,
	})
	return svc, api, clock, audit
}

func TestServiceTimedActionLifecycle(t *testing.T) {
	svc, api, clock, _ := newTestService(t)
	target := Target{UserID: "user-1", GuildID: "guild-1"}

	rec, err := svc.CreateEnforcement("warning-1", target, NewVoiceMute(300*time.Second, "mic spam"))
	require.NoError(t, err)
	assert.Equal(t, StatePending, rec.State)
	assert.Equal(t, clock.Now(), rec.ExecuteAt)

	// First sweep executes and schedules the reversal.
	svc.ProcessDue()
	got, err := svc.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StateActive, got.State)
	assert.Equal(t, clock.Now(), got.ExecutedAt)
	assert.Equal(t, got.ExecutedAt.Add(300*time.Second), got.ReverseAt)
	assert.Equal(t, []string{"voice-mute:guild-1:user-1:true"}, api.callLog())

	// Not due yet: nothing happens.
	clock.Advance(299 * time.Second)
	svc.ProcessDue()
	got, _ = svc.Get(rec.ID)
	assert.Equal(t, StateActive, got.State)

	// Past the reverse time the mute is lifted.
	clock.Advance(2 * time.Second)
	svc.ProcessDue()
	got, _ = svc.Get(rec.ID)
	assert.Equal(t, StateReversed, got.State)
	assert.Equal(t, clock.Now(), got.ReversedAt)
	assert.Equal(t, []string{
		"voice-mute:guild-1:user-1:true",
		"voice-mute:guild-1:user-1:false",
	}, api.callLog())
}

func TestServiceSweepIdempotent(t *testing.T) {
	svc, api, _, _ := newTestService(t)
	rec, err := svc.CreateEnforcement("w", Target{UserID: "u", GuildID: "g"}, NewVoiceMute(300*time.Second, ""))
	require.NoError(t, err)

	svc.ProcessDue()
	svc.ProcessDue()

	got, _ := svc.Get(rec.ID)
	assert.Equal(t, StateActive, got.State)
	assert.Len(t, api.callLog(), 1, "second sweep must not double-execute")
}

func TestServiceOneShotCompletes(t *testing.T) {
	svc, api, _, audit := newTestService(t)
	rec, err := svc.CreateEnforcement("w", Target{UserID: "u", GuildID: "g"}, NewVoiceDisconnect(0, ""))
	require.NoError(t, err)

	svc.ProcessDue()
	got, _ := svc.Get(rec.ID)
	assert.Equal(t, StateCompleted, got.State)
	assert.True(t, got.ReverseAt.IsZero())
	assert.Equal(t, []string{"disconnect:g:u"}, api.callLog())

	finalized := audit.finalized()
	require.Len(t, finalized, 1)
	assert.Equal(t, StateCompleted, finalized[0].State)
}

func TestServiceExternalAPIFailureRetries(t *testing.T) {
	svc, api, _, _ := newTestService(t)
	rec, err := svc.CreateEnforcement("w", Target{UserID: "u", GuildID: "g"}, NewVoiceMute(300*time.Second, ""))
	require.NoError(t, err)

	api.setErr(fmt.Errorf("http 500: %w", ErrExternalAPI))
	svc.ProcessDue()

	got, _ := svc.Get(rec.ID)
	assert.Equal(t, StatePending, got.State, "transient failure leaves the record retryable")
	assert.True(t, got.ExecutedAt.IsZero())

	// Next sweep succeeds once the API recovers.
	api.setErr(nil)
	svc.ProcessDue()
	got, _ = svc.Get(rec.ID)
	assert.Equal(t, StateActive, got.State)
}

func TestServiceEntityGoneCancels(t *testing.T) {
	svc, api, _, audit := newTestService(t)
	rec, err := svc.CreateEnforcement("w", Target{UserID: "u", GuildID: "g"}, NewVoiceMute(300*time.Second, ""))
	require.NoError(t, err)

	api.setErr(fmt.Errorf("member left: %w", ErrEntityGone))
	svc.ProcessDue()

	got, _ := svc.Get(rec.ID)
	assert.Equal(t, StateCancelled, got.State, "unresolvable targets are cancelled, not retried forever")

	finalized := audit.finalized()
	require.Len(t, finalized, 1)
	assert.Equal(t, StateCancelled, finalized[0].State)

	// The record is terminal; recovery of the API changes nothing.
	api.setErr(nil)
	svc.ProcessDue()
	got, _ = svc.Get(rec.ID)
	assert.Equal(t, StateCancelled, got.State)
}

func TestServiceCancelSemantics(t *testing.T) {
	svc, api, _, _ := newTestService(t)
	target := Target{UserID: "u", GuildID: "g"}

	// Pending: plain bookkeeping cancel.
	pending, err := svc.CreateEnforcement("w-1", target, NewVoiceMute(300*time.Second, ""))
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(pending.ID))
	got, _ := svc.Get(pending.ID)
	assert.Equal(t, StateCancelled, got.State)
	assert.Empty(t, api.callLog(), "cancelling a pending record runs no handler")

	// Active: the applied action is reversed on the way out.
	active, err := svc.CreateEnforcement("w-2", target, NewVoiceDeafen(600*time.Second, ""))
	require.NoError(t, err)
	svc.ProcessDue()
	require.NoError(t, svc.Cancel(active.ID))
	got, _ = svc.Get(active.ID)
	assert.Equal(t, StateCancelled, got.State)
	assert.Contains(t, api.callLog(), "voice-deafen:g:u:false")

	// Terminal: cancel is an illegal transition.
	done, err := svc.CreateEnforcement("w-3", target, NewVoiceDisconnect(0, ""))
	require.NoError(t, err)
	svc.ProcessDue()
	assert.ErrorIs(t, svc.Cancel(done.ID), ErrInvalidTransition)

	// Unknown id.
	assert.ErrorIs(t, svc.Cancel("no-such-id"), ErrNotFound)
}

func TestServiceCancelExecuteRaceNeverStrandsAction(t *testing.T) {
	// Race a cancel against the sweep that executes the same due record.
	// Whichever order the per-key sections land in, an applied mute must
	// be lifted again: either the sweep undoes its raced execution or the
	// cancel observes Active and reverses.
	for i := 0; i < 200; i++ {
		svc, api, _, _ := newTestService(t)
		rec, err := svc.CreateEnforcement("w", Target{UserID: "u", GuildID: "g"}, NewVoiceMute(300*time.Second, ""))
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.ProcessDue()
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Cancel(rec.ID))
		}()
		wg.Wait()

		got, err := svc.Get(rec.ID)
		require.NoError(t, err)
		require.Equal(t, StateCancelled, got.State)

		applied, lifted := 0, 0
		for _, call := range api.callLog() {
			switch call {
			case "voice-mute:g:u:true":
				applied++
			case "voice-mute:g:u:false":
				lifted++
			}
		}
		require.Equal(t, applied, lifted, "a cancelled record must not leave its mute applied")
	}
}

func TestServiceCancelAllForTarget(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	target := Target{UserID: "u", GuildID: "g"}

	_, err := svc.CreateEnforcement("w-1", target, NewVoiceMute(300*time.Second, ""))
	require.NoError(t, err)
	_, err = svc.CreateEnforcement("w-2", target, NewMute(300*time.Second, ""))
	require.NoError(t, err)
	_, err = svc.CreateEnforcement("w-3", Target{UserID: "other", GuildID: "g"}, NewMute(300*time.Second, ""))
	require.NoError(t, err)

	assert.Equal(t, 2, svc.CancelAllForTarget("u", "g"))
	assert.Empty(t, svc.ExistingForTarget("u", "g"))
	assert.Len(t, svc.ExistingForTarget("other", "g"), 1)
	assert.Equal(t, 0, svc.CancelAllForTarget("u", "g"))
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.CreateEnforcement("w", Target{UserID: "u", GuildID: "g"}, NewMute(-time.Second, ""))
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, 0, svc.Store().Len(), "rejected actions never reach the store")
}

func TestServiceHauntTeleports(t *testing.T) {
	svc, api, _, _ := newTestService(t)
	rec, err := svc.CreateEnforcement("w", Target{UserID: "u", GuildID: "g"}, NewVoiceChannelHaunt(3, 0, true, ""))
	require.NoError(t, err)

	svc.ProcessDue()
	got, _ := svc.Get(rec.ID)
	assert.Equal(t, StateCompleted, got.State, "haunt is one-shot")

	// Three teleports plus the return to origin.
	moves := 0
	for _, call := range api.callLog() {
		if len(call) >= 4 && call[:4] == "move" {
			moves++
		}
	}
	assert.Equal(t, 4, moves)
}

func TestServiceDelayedActionWaits(t *testing.T) {
	svc, api, clock, _ := newTestService(t)
	rec, err := svc.CreateEnforcement("w", Target{UserID: "u", GuildID: "g"}, NewVoiceDisconnect(30*time.Second, ""))
	require.NoError(t, err)
	assert.False(t, rec.Action.IsImmediate())

	svc.ProcessDue()
	got, _ := svc.Get(rec.ID)
	assert.Equal(t, StatePending, got.State)
	assert.Empty(t, api.callLog())

	clock.Advance(31 * time.Second)
	svc.ProcessDue()
	got, _ = svc.Get(rec.ID)
	assert.Equal(t, StateCompleted, got.State)
}

func TestServiceComputeWarningScore(t *testing.T) {
	svc, _, clock, _ := newTestService(t)
	now := clock.Now()

	history := []WarningEntry{
		{IssuerID: "mod-1", Timestamp: now, Weight: 1.5},
		{IssuerID: "mod-2", Timestamp: now, Weight: 1},
	}

	// Guild threshold is 2; 2.5 weight plus the diversity bonus clears it.
	score, enforce := svc.ComputeWarningScore("guild-1", history, now)
	assert.InDelta(t, 2.75, score, 1e-12)
	assert.True(t, enforce)

	score, enforce = svc.ComputeWarningScore("guild-1", history[:1], now)
	assert.InDelta(t, 1.5, score, 1e-12)
	assert.False(t, enforce)
}

func TestSchedulerWake(t *testing.T) {
	svc, api, _, _ := newTestService(t)
	sched := NewScheduler(svc, time.Hour) // tick far away; only Wake drives it
	sched.Start()
	defer sched.Stop()

	_, err := svc.CreateEnforcement("w", Target{UserID: "u", GuildID: "g"}, NewVoiceDisconnect(0, ""))
	require.NoError(t, err)
	sched.Wake()

	assert.Eventually(t, func() bool {
		return len(api.callLog()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
