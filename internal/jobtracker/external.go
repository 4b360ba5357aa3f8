package jobtracker

import "time"

// Job is a runnable handle produced by the (out-of-scope) job factory from a
// JobInfo. The core never inspects its contents beyond HasCombiner.
type Job interface {
	Id() JobId
	HasCombiner() bool
}

// JobFactory materialises a runnable Job from a JobInfo (§6, out of scope:
// contract only).
type JobFactory interface {
	CreateJob(id JobId, info JobInfo) (Job, error)
}

// Planner computes a MapReducePlan for a job given its input splits and the
// currently live nodes (§6, out of scope: contract only).
type Planner interface {
	PreparePlan(job Job, info JobInfo, liveNodes []NodeId) (MapReducePlan, error)
}

// TaskType enumerates the task kinds the executor can be asked to run.
type TaskType int

const (
	TaskMap TaskType = iota
	TaskReduce
	TaskCombine
	TaskCommit
	TaskAbort
)

// TaskState is the lifecycle state of a single task attempt.
type TaskState int

const (
	TaskRunning TaskState = iota
	TaskCompleted
	TaskFailed
	TaskCrashed
)

// TaskInfo describes a single task attempt handed to the executor.
type TaskInfo struct {
	NodeId     NodeId
	Type       TaskType
	JobId      JobId
	TaskNumber int
	Attempt    int
	Split      *InputSplit // set only for TaskMap
}

// TaskStatus is reported back through OnTaskFinished.
type TaskStatus struct {
	State     TaskState
	FailCause *FailCause
}

// OnFinished is how a TaskExecutor reports a task attempt's outcome back to
// the tracker that started it. Implementations must call it exactly once per
// TaskInfo passed to Run, from any goroutine, and must not block in it.
type OnFinished func(TaskInfo, TaskStatus)

// TaskExecutor runs tasks and reports completion through the onFinished
// callback passed to Run (§6, out of scope: contract only). Two instances
// exist per node — internal and external — selected by
// JobMetadata.ExternalExecution, except Commit/Abort which always use the
// internal executor.
type TaskExecutor interface {
	Run(job Job, tasks []TaskInfo, onFinished OnFinished) error
	CancelTasks(id JobId)
	OnJobStateChanged(id JobId, meta JobMetadata)
}

// Shuffle is the (out-of-scope) shuffle subsystem contract.
type Shuffle interface {
	// Flush asynchronously flushes this node's intermediate output for id and
	// reports the result on the returned channel exactly once.
	Flush(id JobId) <-chan error
	// JobFinished fires once per job on the local node when it completes.
	JobFinished(id JobId)
}

// DiscoveryEventKind distinguishes a graceful departure from a failure.
type DiscoveryEventKind int

const (
	NodeLeft DiscoveryEventKind = iota
	NodeFailed
)

// DiscoveryEvent reports a node departure and the resulting live set.
type DiscoveryEvent struct {
	Kind      DiscoveryEventKind
	NodeId    NodeId
	LiveNodes []NodeId
}

// Discovery is the (out-of-scope) cluster membership contract.
type Discovery interface {
	Subscribe(callback func(DiscoveryEvent))
	LiveNodes() []NodeId
	LocalNodeId() NodeId
}

// Change is one entry of a store change-notification batch.
type Change struct {
	JobId JobId
	Meta  JobMetadata
}

// Store is the (out-of-scope) replicated key-value store contract,
// restricted to the JobId -> JobMetadata projection (§6).
type Store interface {
	Get(id JobId) (*JobMetadata, error)
	Put(id JobId, meta JobMetadata) error
	TransformAsync(id JobId, t Transform)
	TransformSync(id JobId, t Transform) (JobMetadata, error)
	Values() []JobMetadata
	Subscribe(callback func([]Change))
	SetTTL(id JobId, ttl time.Duration) error
}
