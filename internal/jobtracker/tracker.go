// Package jobtracker implements the replicated MapReduce job state machine
// described in SPEC_FULL.md: transform closures over a replicated JobId ->
// JobMetadata store, a per-node lifecycle controller, and the submission,
// completion, and node-loss paths that drive a job from PhaseMap through
// PhaseComplete without any central master.
package jobtracker

import (
	"fmt"
	"sync"

	"github.com/distmr/tracker/internal/shared/logging"
)

// Outcome is the terminal result of a job: the error is nil iff the job
// reached PhaseComplete with no FailCause.
type Outcome struct {
	JobId JobId
	Err   error
}

// future is a completion handle completed at most once.
type future struct {
	once sync.Once
	ch   chan Outcome
}

func newFuture() *future {
	return &future{ch: make(chan Outcome, 1)}
}

func (f *future) complete(id JobId, err error) {
	f.once.Do(func() {
		f.ch <- Outcome{JobId: id, Err: err}
		close(f.ch)
	})
}

// activeJob bundles the local-only state for a job this node is tracking.
type activeJob struct {
	job   Job
	state *LocalJobState
}

// Tracker is the C6 submission/status API and the wiring point for every
// other component (C1-C8). One Tracker instance runs per cluster node; every
// node runs identical code and reaches identical conclusions by observing
// the same replicated Store.
type Tracker struct {
	logger logging.Logger

	store        Store
	internalExec TaskExecutor
	externalExec TaskExecutor
	shuffle      Shuffle
	discovery    Discovery
	jobFactory   JobFactory
	planner      Planner

	dispatcher *Dispatcher
	gate       *BusyGate
	idGen      *IdGenerator

	localNodeId NodeId

	mu                sync.Mutex
	activeJobs        map[JobId]*activeJob
	activeFinishFuts  map[JobId]*future
}

// Deps bundles the external collaborators a Tracker is wired to (§6).
type Deps struct {
	Store        Store
	InternalExec TaskExecutor
	ExternalExec TaskExecutor
	Shuffle      Shuffle
	Discovery    Discovery
	JobFactory   JobFactory
	Planner      Planner
	Logger       logging.Logger
	ClusterTag   string
}

// NewTracker wires a Tracker from its collaborators and starts its
// dispatcher, store subscription, and discovery subscription.
func NewTracker(deps Deps) *Tracker {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NopLogger{}
	}
	logger = logger.With("jobtracker")

	t := &Tracker{
		logger:           logger,
		store:            deps.Store,
		internalExec:     deps.InternalExec,
		externalExec:     deps.ExternalExec,
		shuffle:          deps.Shuffle,
		discovery:        deps.Discovery,
		jobFactory:       deps.JobFactory,
		planner:          deps.Planner,
		dispatcher:       NewDispatcher(logger),
		gate:             NewBusyGate(),
		idGen:            NewIdGenerator(deps.ClusterTag),
		localNodeId:      deps.Discovery.LocalNodeId(),
		activeJobs:       make(map[JobId]*activeJob),
		activeFinishFuts: make(map[JobId]*future),
	}

	t.dispatcher.Start()

	t.store.Subscribe(func(changes []Change) {
		if !t.gate.TryReadLock() {
			return
		}
		defer t.gate.ReadUnlock()

		// Must hand off to the dispatcher rather than process inline: the
		// store must never be re-entered synchronously from its own
		// change-notification callback (§9 design notes).
		t.dispatcher.Enqueue(func() {
			if !t.gate.TryReadLock() {
				return
			}
			defer t.gate.ReadUnlock()
			t.processChanges(changes)
		})
	})

	t.discovery.Subscribe(func(evt DiscoveryEvent) {
		if !t.gate.TryReadLock() {
			return
		}
		defer t.gate.ReadUnlock()

		t.dispatcher.Enqueue(func() {
			if !t.gate.TryReadLock() {
				return
			}
			defer t.gate.ReadUnlock()
			t.onDiscoveryEvent(evt)
		})
	})

	return t
}

func (t *Tracker) executor(external bool) TaskExecutor {
	if external {
		return t.externalExec
	}
	return t.internalExec
}

// taskExecutorFor mirrors the teacher's "always use internal executor for
// Commit/Abort" rule.
// taskExecutorFor always routes Commit/Abort to the internal executor,
// regardless of the job's ExternalExecution flag (§6).
func (t *Tracker) taskExecutorFor(taskType TaskType, external bool) TaskExecutor {
	if taskType == TaskCommit || taskType == TaskAbort {
		return t.internalExec
	}
	return t.executor(external)
}

// NewJobId mints a fresh, cluster-unique JobId. Callers that don't already
// have a caller-assigned id (e.g. a REST request with none in its payload)
// use this before calling Submit.
func (t *Tracker) NewJobId() JobId {
	return t.idGen.Next()
}

// Submit builds the job, requests a plan, writes the initial MAP-phase
// metadata, and registers a completion future under the caller-supplied id
// (§4.6). Submitting the same id twice fails the second call with
// ErrDuplicateJob.
func (t *Tracker) Submit(id JobId, info JobInfo) (<-chan Outcome, error) {
	if !t.gate.TryReadLock() {
		return nil, ErrShutdown
	}
	defer t.gate.ReadUnlock()

	job, err := t.jobFactory.CreateJob(id, info)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	plan, err := t.planner.PreparePlan(job, info, t.discovery.LiveNodes())
	if err != nil {
		return nil, fmt.Errorf("prepare plan: %w", PlannerFailCause(err))
	}

	meta := NewJobMetadata(id, info, plan, job.HasCombiner(), t.localNodeId)

	t.mu.Lock()
	if _, exists := t.activeFinishFuts[id]; exists {
		t.mu.Unlock()
		return nil, ErrDuplicateJob
	}
	fut := newFuture()
	t.activeFinishFuts[id] = fut
	t.mu.Unlock()

	t.logger.Info("submitting job", "job_id", id.String())

	if err := t.store.Put(id, meta); err != nil {
		t.mu.Lock()
		delete(t.activeFinishFuts, id)
		t.mu.Unlock()
		return nil, fmt.Errorf("put job metadata: %w", err)
	}

	return fut.ch, nil
}

// Status fetches metadata for id. The returned JobPhase is a point-in-time
// snapshot callers can render without consuming the completion channel
// (which a concurrent caller, or the original Submit caller, may be relying
// on). If the job is terminal, it returns an already-completed channel;
// otherwise it returns (or creates) the completion future, re-reading
// metadata once to close the race window between the first read and future
// registration.
func (t *Tracker) Status(id JobId) (<-chan Outcome, *JobInfo, JobPhase, error) {
	if !t.gate.TryReadLock() {
		return nil, nil, PhaseSetup, ErrShutdown
	}
	defer t.gate.ReadUnlock()

	meta, err := t.store.Get(id)
	if err != nil {
		return nil, nil, PhaseSetup, err
	}
	if meta == nil {
		return nil, nil, PhaseSetup, ErrJobNotFound
	}

	info := meta.JobInfo
	phase := meta.Phase

	if meta.Phase == PhaseComplete {
		fut := newFuture()
		fut.complete(id, failCauseErr(meta.FailCause))
		return fut.ch, &info, phase, nil
	}

	t.mu.Lock()
	fut, exists := t.activeFinishFuts[id]
	if !exists {
		fut = newFuture()
		t.activeFinishFuts[id] = fut
	}
	t.mu.Unlock()

	// Re-read to close the window between the first Get and future
	// registration above. A nil re-read means the job was evicted or never
	// existed between the two reads: treat it as not-found rather than
	// dereferencing a nil FailCause (§9 open question).
	meta, err = t.store.Get(id)
	if err != nil {
		return nil, nil, phase, err
	}

	if meta == nil {
		fut.complete(id, ErrJobNotFound)

		t.mu.Lock()
		delete(t.activeFinishFuts, id)
		t.mu.Unlock()
	} else if meta.Phase == PhaseComplete {
		phase = PhaseComplete
		fut.complete(id, failCauseErr(meta.FailCause))

		t.mu.Lock()
		delete(t.activeFinishFuts, id)
		t.mu.Unlock()
	}

	return fut.ch, &info, phase, nil
}

// Plan returns the plan stored for id, or nil if the job doesn't exist.
func (t *Tracker) Plan(id JobId) (*MapReducePlan, error) {
	if !t.gate.TryReadLock() {
		return nil, ErrShutdown
	}
	defer t.gate.ReadUnlock()

	meta, err := t.store.Get(id)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, nil
	}
	plan := meta.Plan
	return &plan, nil
}

// JobHandle returns a runnable Job for id, preferring the local cache and
// falling back to materialising one from the store via the job factory.
func (t *Tracker) JobHandle(id JobId) (Job, error) {
	t.mu.Lock()
	aj, ok := t.activeJobs[id]
	t.mu.Unlock()
	if ok {
		return aj.job, nil
	}

	meta, err := t.store.Get(id)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, nil
	}
	return t.jobFactory.CreateJob(id, meta.JobInfo)
}

// Shutdown closes the busy-gate (blocking until in-flight reads drain),
// stops the dispatcher, and fails every outstanding completion future with
// ErrShutdown (§4.7).
func (t *Tracker) Shutdown() {
	t.gate.Close()
	t.dispatcher.Stop()

	t.mu.Lock()
	defer t.mu.Unlock()

	for id, fut := range t.activeFinishFuts {
		fut.complete(id, ErrShutdown)
	}
	t.activeFinishFuts = make(map[JobId]*future)
}

func (t *Tracker) initState(id JobId, job Job) *activeJob {
	t.mu.Lock()
	defer t.mu.Unlock()

	aj, ok := t.activeJobs[id]
	if !ok {
		aj = &activeJob{job: job, state: NewLocalJobState()}
		t.activeJobs[id] = aj
	}
	return aj
}

func (t *Tracker) lookupState(id JobId) *activeJob {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeJobs[id]
}

func (t *Tracker) removeState(id JobId) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.activeJobs, id)
}

func (t *Tracker) removeFuture(id JobId) *future {
	t.mu.Lock()
	defer t.mu.Unlock()
	fut := t.activeFinishFuts[id]
	delete(t.activeFinishFuts, id)
	return fut
}

// failCauseErr adapts a *FailCause (nil-safe) to the error interface so
// callers can compare the result with nil the normal Go way, avoiding the
// classic typed-nil-in-interface pitfall.
func failCauseErr(f *FailCause) error {
	if f == nil {
		return nil
	}
	return f
}
