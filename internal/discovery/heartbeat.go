// Package discovery is a heartbeat-based cluster membership tracker, grounded
// in the teacher's service.WorkerHealthChecker ticker loop and
// WorkerStore.GetStaleWorkers staleness check, adapted from "deregister one
// worker" to "raise a NodeFailed event with the resulting live set" as
// jobtracker.Discovery requires. It never raises NodeLeft.
package discovery

import (
	"sort"
	"sync"
	"time"

	"github.com/distmr/tracker/internal/jobtracker"
	"github.com/distmr/tracker/internal/shared/logging"
)

// Heartbeat tracks the most recent heartbeat timestamp seen for every peer
// node and periodically evicts nodes silent for longer than staleTimeout.
// The local node is always considered live.
type Heartbeat struct {
	localNodeId   jobtracker.NodeId
	checkInterval time.Duration
	staleTimeout  time.Duration
	logger        logging.Logger

	mu       sync.Mutex
	lastSeen map[jobtracker.NodeId]time.Time

	subMu sync.Mutex
	subs  []func(jobtracker.DiscoveryEvent)

	stop chan struct{}
	done chan struct{}
}

func New(localNodeId jobtracker.NodeId, checkInterval, staleTimeout time.Duration, logger logging.Logger) *Heartbeat {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Heartbeat{
		localNodeId:   localNodeId,
		checkInterval: checkInterval,
		staleTimeout:  staleTimeout,
		logger:        logger.With("discovery"),
		lastSeen:      make(map[jobtracker.NodeId]time.Time),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start launches the staleness-checking ticker loop.
func (h *Heartbeat) Start() {
	go func() {
		defer close(h.done)

		ticker := time.NewTicker(h.checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				h.removeStaleNodes()
			}
		}
	}()
}

// Stop halts the ticker loop and waits for it to exit.
func (h *Heartbeat) Stop() {
	close(h.stop)
	<-h.done
}

// Touch records a heartbeat from node, observed now.
func (h *Heartbeat) Touch(node jobtracker.NodeId) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastSeen[node] = time.Now()
}

func (h *Heartbeat) removeStaleNodes() {
	now := time.Now()

	h.mu.Lock()
	var stale []jobtracker.NodeId
	for node, seen := range h.lastSeen {
		if now.Sub(seen) > h.staleTimeout {
			stale = append(stale, node)
		}
	}
	for _, node := range stale {
		delete(h.lastSeen, node)
	}
	live := h.liveNodesLocked()
	h.mu.Unlock()

	for _, node := range stale {
		h.logger.Info("removing stale node", "node_id", string(node))
		h.publish(jobtracker.DiscoveryEvent{Kind: jobtracker.NodeFailed, NodeId: node, LiveNodes: live})
	}
}

// LiveNodes returns every node that has heartbeated and not yet been evicted
// by a staleness check, plus the local node. A node silent for longer than
// staleTimeout stays in the result until the next check tick removes it.
func (h *Heartbeat) LiveNodes() []jobtracker.NodeId {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.liveNodesLocked()
}

func (h *Heartbeat) liveNodesLocked() []jobtracker.NodeId {
	nodes := make([]jobtracker.NodeId, 0, len(h.lastSeen)+1)
	nodes = append(nodes, h.localNodeId)
	for node := range h.lastSeen {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	return nodes
}

func (h *Heartbeat) LocalNodeId() jobtracker.NodeId {
	return h.localNodeId
}

func (h *Heartbeat) Subscribe(callback func(jobtracker.DiscoveryEvent)) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	h.subs = append(h.subs, callback)
}

func (h *Heartbeat) publish(evt jobtracker.DiscoveryEvent) {
	h.subMu.Lock()
	subs := append([]func(jobtracker.DiscoveryEvent){}, h.subs...)
	h.subMu.Unlock()

	for _, cb := range subs {
		cb(evt)
	}
}
