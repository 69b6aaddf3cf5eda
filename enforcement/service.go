package enforcement

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"
)

// ConfigReader supplies per-guild enforcement tuning. Re-read on every
// use; config may change between sweeps without coordination.
type ConfigReader interface {
	GuildEnforcementConfig(guildID string) GuildConfig
}

// AuditSink receives records as they reach a terminal state, for durable
// history outside the in-memory store. Sink failures are logged, never
// propagated; the store stays authoritative.
type AuditSink interface {
	RecordFinalized(Record)
}

// sweepWorkerLimit bounds concurrent handler calls during a sweep so one
// slow external call stalls only its own slot.
const sweepWorkerLimit = 5

// ServiceOptions carries the injectable collaborators; zero values get
// production defaults.
type ServiceOptions struct {
	Clock Clock
	Rand  Rand
	Sleep func(time.Duration)
	Audit AuditSink
}

// Service is the façade combining store, handlers and sweep logic. It is
// the only type external collaborators call.
type Service struct {
	store    *Store
	registry *Registry
	api      ModerationAPI
	configs  ConfigReader
	clock    Clock
	rng      Rand
	audit    AuditSink
}

func NewService(api ModerationAPI, configs ConfigReader, opts ServiceOptions) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	rng := opts.Rand
	if rng == nil {
		rng = NewLockedRand(time.Now().UnixNano())
	}
	return &Service{
		store:    NewStore(),
		registry: NewRegistry(clock, rng, opts.Sleep),
		api:      api,
		configs:  configs,
		clock:    clock,
		rng:      rng,
		audit:    opts.Audit,
	}
}

// Store exposes the record store for read-only queries (admin listings,
// stats). Mutation goes through the service.
func (s *Service) Store() *Store {
	return s.store
}

// CreateEnforcement validates the action and stores a Pending record.
// ExecuteAt defaults to now unless the action carries an explicit delay.
// Callers handling an immediate action follow up with ProcessDue to skip
// the wait for the next tick.
func (s *Service) CreateEnforcement(warningID string, target Target, action Action) (Record, error) {
	if err := action.Validate(); err != nil {
		return Record{}, err
	}
	r := NewRecord(warningID, target, action, s.clock())
	if err := s.store.Add(r); err != nil {
		return Record{}, err
	}
	log.Printf("Created enforcement %s (%s) for user %s in guild %s, execute at %s",
		r.ID, action.Kind, target.UserID, target.GuildID, r.ExecuteAt.Format(time.RFC3339))
	return *r, nil
}

// Get returns a copy of a record by id.
func (s *Service) Get(id string) (Record, error) {
	return s.store.Get(id)
}

// ExistingForTarget returns the non-terminal records for a target. The
// command layer uses this to escalate instead of stacking a second
// enforcement on a user who already has one scheduled or running.
func (s *Service) ExistingForTarget(userID, guildID string) []Record {
	return s.store.ByTarget(userID, guildID)
}

// Cancel moves a Pending or Active record to Cancelled. Cancellation
// itself is only a bookkeeping transition; when the record was Active its
// applied action is reversed once the cancel lands. The pre-cancel state
// is captured inside the per-key section, so a sweep that executes the
// record concurrently cannot slip an applied action past the reversal:
// either the sweep's own state advance fails and it undoes the action, or
// the cancel observes Active and reverses here. Reversal failure does not
// block cancellation.
func (s *Service) Cancel(id string) error {
	var prior Record
	if err := s.store.Mutate(id, func(r *Record) error {
		prior = *r
		return r.cancel()
	}); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("cancel enforcement %s: %w", id, err)
	}

	if prior.State == StateActive {
		if err := s.reverseAction(prior); err != nil {
			log.Printf("Failed to reverse enforcement %s during cancel: %v", id, err)
		}
	}
	s.finalize(id)
	return nil
}

// CancelAllForTarget cancels every Pending or Active record for a target
// and returns how many were cancelled.
func (s *Service) CancelAllForTarget(userID, guildID string) int {
	cancelled := 0
	for _, rec := range s.store.ByTarget(userID, guildID) {
		if err := s.Cancel(rec.ID); err != nil {
			// Lost a race to the sweep; skip.
			log.Printf("Failed to cancel enforcement %s for user %s: %v", rec.ID, userID, err)
			continue
		}
		cancelled++
	}
	return cancelled
}

// ComputeWarningScore scores a warning history against the guild's
// current tuning. The decision is score > threshold; the caller owns
// escalation policy.
func (s *Service) ComputeWarningScore(guildID string, history []WarningEntry, now time.Time) (float64, bool) {
	return Score(history, s.configs.GuildEnforcementConfig(guildID), now, s.rng)
}

// ProcessDue performs one sweep: execute everything Pending and due, then
// reverse everything Active and due. Each record is handled in its own
// worker slot; one record's failure never aborts the sweep. Invoked by
// the scheduler tick and directly for immediate-execution semantics.
func (s *Service) ProcessDue() {
	start := time.Now()
	now := s.clock()

	s.forEachDue(s.store.PendingDue(now), s.processExecution)
	s.forEachDue(s.store.ActiveDueForReversal(now), s.processReversal)

	sweepDuration.Observe(time.Since(start).Seconds())
}

func (s *Service) forEachDue(ids []string, process func(string)) {
	var wg sync.WaitGroup
	guard := make(chan struct{}, sweepWorkerLimit)
	for _, id := range ids {
		wg.Add(1)
		guard <- struct{}{}
		go func(id string) {
			defer func() {
				<-guard
				wg.Done()
			}()
			process(id)
		}(id)
	}
	wg.Wait()
}

// processExecution runs the handler for one due Pending record, then
// advances its state. The handler runs outside the per-key section; on
// failure the record keeps its pre-call state so the next sweep retries.
func (s *Service) processExecution(id string) {
	rec, err := s.store.Get(id)
	if err != nil || rec.State != StatePending {
		return
	}

	h, err := s.registry.Handler(rec.Action.Kind)
	if err != nil {
		log.Printf("Enforcement %s has no handler: %v", id, err)
		return
	}

	if err := h.Execute(s.api, rec.Target, rec.Action); err != nil {
		if errors.Is(err, ErrEntityGone) {
			s.cancelGone(id, err)
			return
		}
		sweepFailuresTotal.WithLabelValues("execute").Inc()
		log.Printf("Failed to execute enforcement %s: %v", id, err)
		return
	}

	now := s.clock()
	if err := s.store.Mutate(id, func(r *Record) error { return r.execute(now) }); err != nil {
		// Cancelled under us after the action ran; undo what we just did.
		log.Printf("Enforcement %s changed state during execution: %v", id, err)
		if rec.Action.NeedsReversal() {
			if rerr := s.reverseAction(rec); rerr != nil {
				log.Printf("Failed to undo raced enforcement %s: %v", id, rerr)
			}
		}
		return
	}
	executionsTotal.WithLabelValues(rec.Action.Kind.String()).Inc()
	log.Printf("Executed enforcement %s (%s) for user %s in guild %s",
		id, rec.Action.Kind, rec.Target.UserID, rec.Target.GuildID)
	s.finalize(id)
}

// processReversal undoes one due Active record and advances its state.
func (s *Service) processReversal(id string) {
	rec, err := s.store.Get(id)
	if err != nil || rec.State != StateActive {
		return
	}

	if err := s.reverseAction(rec); err != nil {
		if errors.Is(err, ErrEntityGone) {
			s.cancelGone(id, err)
			return
		}
		sweepFailuresTotal.WithLabelValues("reverse").Inc()
		log.Printf("Failed to reverse enforcement %s: %v", id, err)
		return
	}

	now := s.clock()
	if err := s.store.Mutate(id, func(r *Record) error { return r.reverse(now) }); err != nil {
		log.Printf("Enforcement %s changed state during reversal: %v", id, err)
		return
	}
	reversalsTotal.WithLabelValues(rec.Action.Kind.String()).Inc()
	log.Printf("Reversed enforcement %s (%s) for user %s in guild %s",
		id, rec.Action.Kind, rec.Target.UserID, rec.Target.GuildID)
	s.finalize(id)
}

func (s *Service) reverseAction(rec Record) error {
	h, err := s.registry.Handler(rec.Action.Kind)
	if err != nil {
		return err
	}
	return h.Reverse(s.api, rec.Target, rec.Action)
}

// cancelGone force-cancels a record whose target cannot be resolved.
// No reversal happened, so Cancelled, not Reversed.
func (s *Service) cancelGone(id string, cause error) {
	log.Printf("Cancelling enforcement %s, target gone: %v", id, cause)
	if err := s.store.Mutate(id, func(r *Record) error { return r.cancel() }); err != nil {
		log.Printf("Failed to cancel gone enforcement %s: %v", id, err)
		return
	}
	entityGoneCancellations.Inc()
	s.finalize(id)
}

// finalize hands terminal records to the audit sink.
func (s *Service) finalize(id string) {
	if s.audit == nil {
		return
	}
	rec, err := s.store.Get(id)
	if err != nil || !rec.State.Terminal() {
		return
	}
	s.audit.RecordFinalized(rec)
}

// lockedRand makes a math/rand source safe for the sweep workers and
// command goroutines that share it.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLockedRand returns a concurrency-safe Rand. Callers that hold policy
// decisions of their own (escalation choice, haunt channels) share one
// source with the service instead of reaching for the global generator.
func NewLockedRand(seed int64) Rand {
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}
