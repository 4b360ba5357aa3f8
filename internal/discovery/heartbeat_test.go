package discovery_test

import (
	"testing"
	"time"

	"github.com/distmr/tracker/internal/discovery"
	"github.com/distmr/tracker/internal/jobtracker"
	"github.com/distmr/tracker/internal/shared/logging"
)

func TestHeartbeatLocalNodeAlwaysLive(t *testing.T) {
	h := discovery.New("local", time.Hour, time.Hour, logging.NopLogger{})

	live := h.LiveNodes()
	if len(live) != 1 || live[0] != "local" {
		t.Fatalf("live = %v, want [local]", live)
	}
}

func TestHeartbeatTouchAddsLiveNode(t *testing.T) {
	h := discovery.New("local", time.Hour, time.Hour, logging.NopLogger{})
	h.Touch("peer")

	live := h.LiveNodes()
	found := false
	for _, n := range live {
		if n == "peer" {
			found = true
		}
	}
	if !found {
		t.Fatalf("live = %v, want to contain peer", live)
	}
}

func TestHeartbeatEvictsStaleNodesAndNotifies(t *testing.T) {
	h := discovery.New("local", 5*time.Millisecond, 10*time.Millisecond, logging.NopLogger{})
	h.Touch("peer")

	evt := make(chan jobtracker.DiscoveryEvent, 1)
	h.Subscribe(func(e jobtracker.DiscoveryEvent) { evt <- e })

	h.Start()
	defer h.Stop()

	select {
	case e := <-evt:
		if e.NodeId != "peer" || e.Kind != jobtracker.NodeFailed {
			t.Fatalf("event = %+v, want NodeFailed for peer", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for stale-node eviction event")
	}

	for _, n := range h.LiveNodes() {
		if n == "peer" {
			t.Fatal("peer should have been evicted from live set")
		}
	}
}
