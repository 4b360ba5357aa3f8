// Package store provides an in-process stand-in for the (out-of-scope)
// replicated key-value store, grounded in the teacher's
// internal/coordinator/storage.InMemoryJobStore mutex-guarded map. It is not
// replicated across processes — it exists so the jobtracker package and its
// consumers can run and be tested without a real distributed store.
package store

import (
	"sync"
	"time"

	"github.com/distmr/tracker/internal/jobtracker"
)

// MemoryStore implements jobtracker.Store over a single in-process map.
// TransformAsync applies immediately rather than truly asynchronously, since
// there is no network hop to hide latency behind in a single process; a real
// replicated store would apply it out-of-line and notify subscribers once
// the write has propagated.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[jobtracker.JobId]jobtracker.JobMetadata
	ttls    map[jobtracker.JobId]time.Duration

	subMu sync.Mutex
	subs  []func([]jobtracker.Change)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[jobtracker.JobId]jobtracker.JobMetadata),
		ttls:    make(map[jobtracker.JobId]time.Duration),
	}
}

func (s *MemoryStore) Get(id jobtracker.JobId) (*jobtracker.JobMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	return &meta, nil
}

func (s *MemoryStore) Put(id jobtracker.JobId, meta jobtracker.JobMetadata) error {
	s.mu.Lock()
	s.entries[id] = meta
	s.mu.Unlock()

	s.notify([]jobtracker.Change{{JobId: id, Meta: meta}})
	return nil
}

func (s *MemoryStore) TransformAsync(id jobtracker.JobId, t jobtracker.Transform) {
	_, _ = s.TransformSync(id, t)
}

func (s *MemoryStore) TransformSync(id jobtracker.JobId, t jobtracker.Transform) (jobtracker.JobMetadata, error) {
	s.mu.Lock()
	cur, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return jobtracker.JobMetadata{}, nil
	}
	updated := t.Apply(cur)
	s.entries[id] = updated
	s.mu.Unlock()

	s.notify([]jobtracker.Change{{JobId: id, Meta: updated}})
	return updated, nil
}

func (s *MemoryStore) Values() []jobtracker.JobMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]jobtracker.JobMetadata, 0, len(s.entries))
	for _, meta := range s.entries {
		out = append(out, meta)
	}
	return out
}

func (s *MemoryStore) Subscribe(callback func([]jobtracker.Change)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, callback)
}

func (s *MemoryStore) SetTTL(id jobtracker.JobId, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttls[id] = ttl
	return nil
}

// Evict removes the entry for id and any TTL recorded for it, whether or not
// a TTL was set. There is no background timer here: SetTTL only records the
// duration, and an entry stays in the store until Evict is called for it.
func (s *MemoryStore) Evict(id jobtracker.JobId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	delete(s.ttls, id)
}

func (s *MemoryStore) notify(changes []jobtracker.Change) {
	s.subMu.Lock()
	subs := append([]func([]jobtracker.Change){}, s.subs...)
	s.subMu.Unlock()

	for _, cb := range subs {
		cb(changes)
	}
}
