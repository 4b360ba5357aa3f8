package jobtracker

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// NodeId identifies a cluster node. Nodes are compared and sorted by this
// string, which backs update-leader election (§4.5).
type NodeId string

// JobId is an opaque, globally unique job identifier: a cluster tag, a
// monotonically increasing local counter, and a UUID disambiguator so two
// trackers sharing a cluster tag with a reset counter never collide.
type JobId struct {
	ClusterTag string
	Counter    uint64
	disambig   uuid.UUID
}

func (id JobId) String() string {
	return fmt.Sprintf("%s-%d-%s", id.ClusterTag, id.Counter, id.disambig)
}

// ParseJobId parses the String() form of a JobId, for API layers that hand
// an opaque job identifier back to callers and must recognise it on a
// subsequent request. ClusterTag must not itself contain a "-", since
// String() joins the three fields with it.
func ParseJobId(s string) (JobId, error) {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return JobId{}, fmt.Errorf("jobtracker: malformed job id %q", s)
	}

	var counter uint64
	if _, err := fmt.Sscanf(parts[1], "%d", &counter); err != nil {
		return JobId{}, fmt.Errorf("jobtracker: malformed job id %q: %w", s, err)
	}

	disambig, err := uuid.Parse(parts[2])
	if err != nil {
		return JobId{}, fmt.Errorf("jobtracker: malformed job id %q: %w", s, err)
	}

	return JobId{ClusterTag: parts[0], Counter: counter, disambig: disambig}, nil
}

// IdGenerator produces unique JobIds for a single cluster tag.
type IdGenerator struct {
	clusterTag string
	counter    uint64
}

func NewIdGenerator(clusterTag string) *IdGenerator {
	return &IdGenerator{clusterTag: clusterTag}
}

func (g *IdGenerator) Next() JobId {
	return JobId{
		ClusterTag: g.clusterTag,
		Counter:    atomic.AddUint64(&g.counter, 1),
		disambig:   uuid.New(),
	}
}
