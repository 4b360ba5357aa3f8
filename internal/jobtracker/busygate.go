package jobtracker

import "sync"

// BusyGate is a reader-writer gate, not a general mutex: every public
// operation and every dispatched event takes a read hold, and shutdown takes
// the write hold exactly once. Unlike sync.RWMutex, acquiring a read hold
// while a writer is active (or has already fired) fails fast instead of
// blocking, so callers can treat "gate closed" as a normal outcome (§4.7).
type BusyGate struct {
	mu     sync.RWMutex
	closed bool
}

func NewBusyGate() *BusyGate {
	return &BusyGate{}
}

// TryReadLock attempts to acquire a read hold. It returns false immediately
// if shutdown has begun or completed.
func (g *BusyGate) TryReadLock() bool {
	if !g.mu.TryRLock() {
		return false
	}
	if g.closed {
		g.mu.RUnlock()
		return false
	}
	return true
}

// ReadUnlock releases a read hold acquired by a successful TryReadLock.
func (g *BusyGate) ReadUnlock() {
	g.mu.RUnlock()
}

// Close acquires the write hold, waiting for all in-flight readers, and
// marks the gate permanently closed. Idempotent.
func (g *BusyGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
}
