// Package localexec is a process-local TaskExecutor, grounded in the
// teacher's pkg/local.Pool worker pool. It stands in for the (out-of-scope)
// real task executor in tests and single-process demos: actual map/reduce
// user-code invocation is a Non-goal of this repository, so Executor just
// runs a configurable work function per task and reports the outcome back
// through the callback it was given.
package localexec

import (
	"context"
	"fmt"
	"sync"

	"github.com/distmr/tracker/internal/jobtracker"
	"github.com/distmr/tracker/internal/shared/logging"
)

// Work is the per-task unit of execution. Returning a non-nil error marks
// the task TaskFailed; a panic (recovered by the pool) marks it TaskCrashed.
type Work func(ctx context.Context, job jobtracker.Job, info jobtracker.TaskInfo) error

// Executor is a fixed-size worker pool executing tasks submitted via Run.
// One Executor is typically wired as the internal executor; a second,
// independently configured Executor can stand in for the external executor.
type Executor struct {
	logger logging.Logger
	work   Work

	tasks chan func()
	wg    sync.WaitGroup

	mu      sync.Mutex
	ctxs    map[jobtracker.JobId]context.Context
	cancels map[jobtracker.JobId]context.CancelFunc
}

// NewExecutor starts numWorkers goroutines draining an internal task queue.
// work is invoked once per TaskInfo handed to Run.
func NewExecutor(numWorkers int, work Work, logger logging.Logger) *Executor {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	e := &Executor{
		logger:  logger.With("localexec"),
		work:    work,
		tasks:   make(chan func()),
		ctxs:    make(map[jobtracker.JobId]context.Context),
		cancels: make(map[jobtracker.JobId]context.CancelFunc),
	}
	for i := 0; i < numWorkers; i++ {
		e.wg.Add(1)
		go e.loop()
	}
	return e
}

func (e *Executor) loop() {
	defer e.wg.Done()
	for task := range e.tasks {
		task()
	}
}

// Run submits every task to the pool. Each task runs work under a
// per-job cancellable context and reports its outcome via onFinished exactly
// once, from a pool worker goroutine.
func (e *Executor) Run(job jobtracker.Job, tasks []jobtracker.TaskInfo, onFinished jobtracker.OnFinished) error {
	for _, info := range tasks {
		info := info
		ctx := e.ctxFor(info.JobId)

		e.tasks <- func() {
			status := e.runOne(ctx, job, info)
			onFinished(info, status)
		}
	}
	return nil
}

func (e *Executor) runOne(ctx context.Context, job jobtracker.Job, info jobtracker.TaskInfo) (status jobtracker.TaskStatus) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("task panicked", "job_id", info.JobId.String(), "panic", r)
			status = jobtracker.TaskStatus{State: jobtracker.TaskCrashed, FailCause: jobtracker.TaskFailCause(fmt.Errorf("task panicked: %v", r))}
		}
	}()

	if err := e.work(ctx, job, info); err != nil {
		if ctx.Err() != nil {
			return jobtracker.TaskStatus{State: jobtracker.TaskFailed, FailCause: jobtracker.TaskFailCause(ctx.Err())}
		}
		return jobtracker.TaskStatus{State: jobtracker.TaskFailed, FailCause: jobtracker.TaskFailCause(err)}
	}
	return jobtracker.TaskStatus{State: jobtracker.TaskCompleted}
}

// CancelTasks cancels the context shared by every in-flight task for id. It
// is a best-effort signal: Work must observe ctx.Done() cooperatively.
func (e *Executor) CancelTasks(id jobtracker.JobId) {
	e.mu.Lock()
	cancel, ok := e.cancels[id]
	e.mu.Unlock()
	if ok {
		cancel()
	}
}

// OnJobStateChanged is a no-op: this executor has no external process to
// notify of metadata changes.
func (e *Executor) OnJobStateChanged(jobtracker.JobId, jobtracker.JobMetadata) {}

// Close stops accepting new tasks and waits for the pool to drain.
func (e *Executor) Close() {
	close(e.tasks)
	e.wg.Wait()
}

func (e *Executor) ctxFor(id jobtracker.JobId) context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ctx, ok := e.ctxs[id]; ok {
		return ctx
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.ctxs[id] = ctx
	e.cancels[id] = cancel
	return ctx
}
