package jobtracker

import "errors"

// Sentinel error kinds (§7). Task failure, shuffle-flush failure, and
// node-loss cancellation are carried as *FailCause values inside
// JobMetadata rather than as these sentinels, since they must replicate.
var (
	// ErrShutdown is returned synchronously to submitters and status
	// queries once the tracker has begun or completed shutdown.
	ErrShutdown = errors.New("jobtracker: stopping")

	// ErrJobNotFound is returned by Status when metadata for the job was
	// never written or has already been evicted by the store (§9 open
	// question: treated as "job never existed", not a nil dereference).
	ErrJobNotFound = errors.New("jobtracker: job not found")

	// ErrDuplicateJob is returned by Submit when a completion future already
	// exists for the given JobId.
	ErrDuplicateJob = errors.New("jobtracker: duplicate job submission")
)

const (
	FailCauseKindTask     = "task_failure"
	FailCauseKindShuffle  = "shuffle_flush_failure"
	FailCauseKindNodeLoss = "node_loss"
	FailCauseKindPlanner  = "planner_failure"
)

// NodeLossFailCause is the distinguishable message used when the update
// leader cancels a job because one or more participating nodes departed.
func NodeLossFailCause() *FailCause {
	return &FailCause{
		Kind:    FailCauseKindNodeLoss,
		Message: "one or more nodes participating in the job failed",
	}
}

func TaskFailCause(err error) *FailCause {
	if err == nil {
		return nil
	}
	return &FailCause{Kind: FailCauseKindTask, Message: err.Error()}
}

func ShuffleFailCause(err error) *FailCause {
	if err == nil {
		return nil
	}
	return &FailCause{Kind: FailCauseKindShuffle, Message: err.Error()}
}

// PlannerFailCause wraps a planner error returned synchronously from Submit.
// It never reaches the replicated store — the job never entered it — but is
// still tagged the way task and shuffle failures are, so callers can
// distinguish planner failures from other Submit errors by Kind.
func PlannerFailCause(err error) *FailCause {
	if err == nil {
		return nil
	}
	return &FailCause{Kind: FailCauseKindPlanner, Message: err.Error()}
}
