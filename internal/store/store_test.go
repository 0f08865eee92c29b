package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fleet-control/vdagw/internal/vda"
)

var (
	acmeA1 = vda.Identity{Manufacturer: "Acme", Serial: "A1"}
	betaB2 = vda.Identity{Manufacturer: "Beta", Serial: "B2"}
)

func record(id vda.Identity, kind vda.Kind, headerID uint64) vda.Record {
	return vda.Record{
		Identity:  id,
		Kind:      kind,
		HeaderID:  headerID,
		Timestamp: time.Now().UTC(),
		Payload:   json.RawMessage(fmt.Sprintf(`{"headerId":%d}`, headerID)),
	}
}

func TestApplyAcceptsIncreasingHeaderIDs(t *testing.T) {
	s := New()

	for _, headerID := range []uint64{1, 2, 3} {
		if !s.Apply(record(acmeA1, vda.KindState, headerID)) {
			t.Fatalf("Apply(headerId=%d) should have been accepted", headerID)
		}
	}

	snap, found := s.SnapshotFor(acmeA1)
	if !found {
		t.Fatal("SnapshotFor() should find the robot")
	}
	if snap.State == nil || snap.State.HeaderID != 3 {
		t.Errorf("Expected stored state headerId 3, got %+v", snap.State)
	}
}

func TestApplyRejectsStaleAndDuplicate(t *testing.T) {
	s := New()

	// 1, 2, duplicate 2, 3 -> accepted sequence 1, 2, 3.
	accepted := []uint64{}
	for _, headerID := range []uint64{1, 2, 2, 3} {
		if s.Apply(record(acmeA1, vda.KindState, headerID)) {
			accepted = append(accepted, headerID)
		}
	}

	if len(accepted) != 3 || accepted[0] != 1 || accepted[1] != 2 || accepted[2] != 3 {
		t.Errorf("Expected accepted sequence [1 2 3], got %v", accepted)
	}

	// Out of order after the fact.
	if s.Apply(record(acmeA1, vda.KindState, 2)) {
		t.Error("Apply() should reject a headerId below the floor")
	}

	snap, _ := s.SnapshotFor(acmeA1)
	if snap.State.HeaderID != 3 {
		t.Errorf("Store mutated by a stale record: headerId %d", snap.State.HeaderID)
	}
}

func TestApplyKindFloorsAreIndependent(t *testing.T) {
	s := New()

	if !s.Apply(record(acmeA1, vda.KindState, 10)) {
		t.Fatal("state record should be accepted")
	}
	// A lower headerId on a different kind is not stale.
	if !s.Apply(record(acmeA1, vda.KindVisualization, 2)) {
		t.Error("visualization floor must be independent of the state floor")
	}
	if !s.Apply(record(acmeA1, vda.KindConnection, 4)) {
		t.Error("connection floor must be independent of the state floor")
	}
	// Interleave again on the first kind.
	if s.Apply(record(acmeA1, vda.KindState, 10)) {
		t.Error("duplicate state headerId should still be rejected")
	}
	if !s.Apply(record(acmeA1, vda.KindState, 11)) {
		t.Error("next state headerId should be accepted")
	}
}

func TestApplyConnectionRestartLowersFloors(t *testing.T) {
	s := New()

	s.Apply(record(acmeA1, vda.KindConnection, 5))
	s.Apply(record(acmeA1, vda.KindState, 40))
	s.Apply(record(acmeA1, vda.KindVisualization, 41))

	// Producer restarted: fresh connection message with headerId 1.
	if !s.Apply(record(acmeA1, vda.KindConnection, 1)) {
		t.Fatal("connection headerId 1 after a restart should be accepted")
	}

	// New low counters must now pass.
	if !s.Apply(record(acmeA1, vda.KindState, 1)) {
		t.Error("state floor should have been reset by the restart")
	}
	if !s.Apply(record(acmeA1, vda.KindVisualization, 1)) {
		t.Error("visualization floor should have been reset by the restart")
	}

	// The old records stayed visible until overwritten.
	snap, _ := s.SnapshotFor(acmeA1)
	if snap.State == nil || snap.State.HeaderID != 1 {
		t.Errorf("Expected restarted state headerId 1, got %+v", snap.State)
	}
}

func TestApplyDuplicateFirstConnectionIsStale(t *testing.T) {
	s := New()

	if !s.Apply(record(acmeA1, vda.KindConnection, 1)) {
		t.Fatal("first connection record should be accepted")
	}
	if s.Apply(record(acmeA1, vda.KindConnection, 1)) {
		t.Error("a duplicate of connection headerId 1 is stale, not a restart")
	}
}

func TestSnapshotSortedAndComplete(t *testing.T) {
	s := New()

	s.Apply(record(betaB2, vda.KindState, 1))
	s.Apply(record(acmeA1, vda.KindConnection, 1))
	s.Apply(record(acmeA1, vda.KindState, 1))

	snapshots := s.Snapshot()
	if len(snapshots) != 2 {
		t.Fatalf("Expected 2 robots, got %d", len(snapshots))
	}
	if snapshots[0].Identity != acmeA1 || snapshots[1].Identity != betaB2 {
		t.Errorf("Snapshot not sorted by identity: %v, %v", snapshots[0].Identity, snapshots[1].Identity)
	}

	if snapshots[0].Connection == nil || snapshots[0].State == nil {
		t.Error("Acme/A1 snapshot missing accepted kinds")
	}
	if snapshots[0].Visualization != nil {
		t.Error("Acme/A1 snapshot has a kind that was never received")
	}

	records := snapshots[0].Records()
	if len(records) != 2 || records[0].Kind != vda.KindConnection || records[1].Kind != vda.KindState {
		t.Errorf("Records() not in canonical kind order: %v", records)
	}
}

func TestSnapshotForUnknownIdentity(t *testing.T) {
	s := New()

	if _, found := s.SnapshotFor(acmeA1); found {
		t.Error("SnapshotFor() on an empty store should report not found")
	}

	s.Apply(record(acmeA1, vda.KindState, 1))
	if _, found := s.SnapshotFor(betaB2); found {
		t.Error("SnapshotFor() should report not found for an unseen identity")
	}
}

func TestSnapshotIsPointInTimeCopy(t *testing.T) {
	s := New()
	s.Apply(record(acmeA1, vda.KindState, 1))

	before := s.Snapshot()
	s.Apply(record(acmeA1, vda.KindState, 2))

	if before[0].State.HeaderID != 1 {
		t.Error("an earlier snapshot must not observe later applies")
	}
}

func TestApplyConcurrent(t *testing.T) {
	s := New()

	const writers = 8
	const perWriter = 200

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := vda.Identity{Manufacturer: "Acme", Serial: fmt.Sprintf("A%d", w)}
			for i := 1; i <= perWriter; i++ {
				s.Apply(record(id, vda.KindState, uint64(i)))
				s.Snapshot()
			}
		}(w)
	}
	wg.Wait()

	if s.Len() != writers {
		t.Fatalf("Expected %d robots, got %d", writers, s.Len())
	}
	for _, snap := range s.Snapshot() {
		if snap.State.HeaderID != perWriter {
			t.Errorf("Robot %s lost writes: headerId %d", snap.Identity, snap.State.HeaderID)
		}
	}
}
