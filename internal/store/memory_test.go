package store_test

import (
	"testing"
	"time"

	"github.com/distmr/tracker/internal/jobtracker"
	"github.com/distmr/tracker/internal/store"
)

func TestMemoryStorePutGet(t *testing.T) {
	s := store.NewMemoryStore()
	id := jobtracker.JobId{ClusterTag: "t", Counter: 1}
	meta := jobtracker.JobMetadata{JobId: id, Phase: jobtracker.PhaseMap}

	if err := s.Put(id, meta); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Phase != jobtracker.PhaseMap {
		t.Fatalf("got = %+v, want phase MAP", got)
	}
}

func TestMemoryStoreGetMissingReturnsNil(t *testing.T) {
	s := store.NewMemoryStore()
	got, err := s.Get(jobtracker.JobId{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("got = %+v, want nil", got)
	}
}

func TestMemoryStoreTransformAsyncAppliesAndNotifies(t *testing.T) {
	s := store.NewMemoryStore()
	id := jobtracker.JobId{ClusterTag: "t", Counter: 2}
	meta := jobtracker.JobMetadata{JobId: id, Phase: jobtracker.PhaseMap}
	if err := s.Put(id, meta); err != nil {
		t.Fatalf("Put: %v", err)
	}

	notified := make(chan []jobtracker.Change, 2)
	s.Subscribe(func(changes []jobtracker.Change) { notified <- changes })

	s.TransformAsync(id, jobtracker.UpdatePhase{Phase: jobtracker.PhaseReduce})

	select {
	case changes := <-notified:
		if len(changes) != 1 || changes[0].Meta.Phase != jobtracker.PhaseReduce {
			t.Fatalf("changes = %+v, want one change with PhaseReduce", changes)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscriber notification")
	}

	got, err := s.Get(id)
	if err != nil || got.Phase != jobtracker.PhaseReduce {
		t.Fatalf("Get after transform = %+v, %v", got, err)
	}
}

func TestMemoryStoreTransformAsyncOnMissingJobIsNoop(t *testing.T) {
	s := store.NewMemoryStore()
	s.TransformAsync(jobtracker.JobId{}, jobtracker.UpdatePhase{Phase: jobtracker.PhaseComplete})
}

func TestMemoryStoreValues(t *testing.T) {
	s := store.NewMemoryStore()
	id1 := jobtracker.JobId{ClusterTag: "t", Counter: 1}
	id2 := jobtracker.JobId{ClusterTag: "t", Counter: 2}
	s.Put(id1, jobtracker.JobMetadata{JobId: id1})
	s.Put(id2, jobtracker.JobMetadata{JobId: id2})

	values := s.Values()
	if len(values) != 2 {
		t.Fatalf("len(values) = %d, want 2", len(values))
	}
}

func TestMemoryStoreEvict(t *testing.T) {
	s := store.NewMemoryStore()
	id := jobtracker.JobId{ClusterTag: "t", Counter: 3}
	s.Put(id, jobtracker.JobMetadata{JobId: id})
	if err := s.SetTTL(id, time.Millisecond); err != nil {
		t.Fatalf("SetTTL: %v", err)
	}

	s.Evict(id)

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("got = %+v, want nil after evict", got)
	}
}
