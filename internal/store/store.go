//
//
package store

import (
	"sort"
	"sync"

	"github.com/fleet-control/vdagw/internal/vda"
)

// Snapshot is the latest accepted record of each kind for one robot.
// A kind that has never been received is nil.
type Snapshot struct {
	Identity      vda.Identity `json:"identity"`
	Connection    *vda.Record  `json:"connection,omitempty"`
	State         *vda.Record  `json:"state,omitempty"`
	Visualization *vda.Record  `json:"visualization,omitempty"`
}

// Records returns the snapshot's present records in canonical kind order.
func (s Snapshot) Records() []vda.Record {
	records := make([]vda.Record, 0, 3)
	for _, rec := range []*vda.Record{s.Connection, s.State, s.Visualization} {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}

// entry pairs a snapshot with the highest accepted headerId per kind.
// Floors survive independently of the stored records so a producer
// restart can lower them without losing the last known snapshot.
type entry struct {
	snap   Snapshot
	floors map[vda.Kind]uint64
}

// Store maps robot identities to their latest telemetry. Safe for
// concurrent use from the ingest path and any number of readers.
type Store struct {
	mu     sync.RWMutex
	robots map[vda.Identity]*entry
}

// New creates an empty store.
func New() *Store {
	return &Store{
		robots: make(map[vda.Identity]*entry),
	}
}

// Apply stores the record unless it is stale. A record whose headerId
// does not exceed the current floor for its (identity, kind) is rejected
// and the store is left untouched.
//
// Restart rule: an accepted connection record with headerId 1, arriving
// while the stored connection floor is above 1, signals that the
// producer's counters restarted. All three floors for that identity are
// reset before the record is applied, so the robot's subsequent low
// headerIds are not rejected forever.
func (s *Store) Apply(rec vda.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.robots[rec.Identity]
	if !exists {
		e = &entry{
			snap:   Snapshot{Identity: rec.Identity},
			floors: make(map[vda.Kind]uint64),
		}
		s.robots[rec.Identity] = e
	}

	if rec.Kind == vda.KindConnection && rec.HeaderID == 1 && e.floors[vda.KindConnection] > 1 {
		e.floors = make(map[vda.Kind]uint64)
	}

	if rec.HeaderID <= e.floors[rec.Kind] {
		return false
	}

	stored := rec
	switch rec.Kind {
	case vda.KindConnection:
		e.snap.Connection = &stored
	case vda.KindState:
		e.snap.State = &stored
	case vda.KindVisualization:
		e.snap.Visualization = &stored
	default:
		return false
	}
	e.floors[rec.Kind] = rec.HeaderID

	return true
}

// Snapshot returns a consistent point-in-time copy of every robot,
// sorted by manufacturer then serial.
func (s *Store) Snapshot() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := make([]Snapshot, 0, len(s.robots))
	for _, e := range s.robots {
		snapshots = append(snapshots, e.snap)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		a, b := snapshots[i].Identity, snapshots[j].Identity
		if a.Manufacturer != b.Manufacturer {
			return a.Manufacturer < b.Manufacturer
		}
		return a.Serial < b.Serial
	})

	return snapshots
}

// SnapshotFor returns the snapshot for one robot. The second return is
// false when the identity has never been seen.
func (s *Store) SnapshotFor(id vda.Identity) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.robots[id]
	if !exists {
		return Snapshot{}, false
	}
	return e.snap, true
}

// Len returns the number of known robots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.robots)
}
