package enforcement

import (
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// Store holds all enforcement records. It owns the live record structs
// exclusively; every read returns a copy and every mutation happens inside
// a key-scoped critical section, so concurrent sweeps and command calls
// never observe a partially-updated record. There is no global lock.
type Store struct {
	records *xsync.MapOf[string, *Record]
}

func NewStore() *Store {
	return &Store{records: xsync.NewMapOf[string, *Record]()}
}

// Add inserts a record under its id. The record is copied; the caller's
// pointer does not alias store state.
func (s *Store) Add(r *Record) error {
	c := *r
	if _, loaded := s.records.LoadOrStore(r.ID, &c); loaded {
		return ErrDuplicateID
	}
	return nil
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (Record, error) {
	r, ok := s.records.Load(id)
	if !ok {
		return Record{}, ErrNotFound
	}
	return *r, nil
}

// Mutate runs fn with exclusive access to a copy of the record and
// publishes the copy. Published records are never written again, so
// concurrent Get and Range calls read stable snapshots. fn runs inside
// the map's per-key section; it must stay short and must not call back
// into the store.
func (s *Store) Mutate(id string, fn func(*Record) error) error {
	err := ErrNotFound
	s.records.Compute(id, func(r *Record, loaded bool) (*Record, bool) {
		if !loaded {
			return nil, true
		}
		c := *r
		err = fn(&c)
		return &c, false
	})
	return err
}

// PendingDue returns the ids of all Pending records whose execute time has
// arrived. Order is store iteration order, not time order; callers must
// not assume any ordering.
func (s *Store) PendingDue(now time.Time) []string {
	var ids []string
	s.records.Range(func(id string, r *Record) bool {
		if r.DueForExecution(now) {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

// ActiveDueForReversal returns the ids of all Active records whose reverse
// time has arrived. Same ordering caveat as PendingDue.
func (s *Store) ActiveDueForReversal(now time.Time) []string {
	var ids []string
	s.records.Range(func(id string, r *Record) bool {
		if r.DueForReversal(now) {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

// ByTarget returns copies of all non-terminal records for a target,
// for cancellation sweeps and admin listings.
func (s *Store) ByTarget(userID, guildID string) []Record {
	var out []Record
	s.records.Range(func(_ string, r *Record) bool {
		if r.Target.UserID == userID && r.Target.GuildID == guildID && !r.State.Terminal() {
			out = append(out, *r)
		}
		return true
	})
	return out
}

// AllForTarget returns copies of every record for a target, terminal
// states included, newest first not guaranteed.
func (s *Store) AllForTarget(userID, guildID string) []Record {
	var out []Record
	s.records.Range(func(_ string, r *Record) bool {
		if r.Target.UserID == userID && r.Target.GuildID == guildID {
			out = append(out, *r)
		}
		return true
	})
	return out
}

// CountByState tallies records per lifecycle state.
func (s *Store) CountByState() map[State]int {
	counts := make(map[State]int)
	s.records.Range(func(_ string, r *Record) bool {
		counts[r.State]++
		return true
	})
	return counts
}

// Len returns the number of records held, terminal ones included.
func (s *Store) Len() int {
	return s.records.Size()
}
