package jobtracker

import "time"

// OnTaskFinished is the task executor's callback when a local task finishes
// (§4.8). status.State must not be TaskRunning.
func (t *Tracker) OnTaskFinished(info TaskInfo, status TaskStatus) {
	if !t.gate.TryReadLock() {
		return
	}
	defer t.gate.ReadUnlock()

	if status.State == TaskRunning {
		t.logger.Error("invalid task status reported as running", "job_id", info.JobId.String())
		return
	}

	aj := t.lookupState(info.JobId)
	if aj == nil {
		t.logger.Warn("task finished for unknown local job state", "job_id", info.JobId.String())
		return
	}

	switch info.Type {
	case TaskMap:
		t.onMapFinished(aj, info, status)
	case TaskReduce:
		t.onReduceFinished(info, status)
	case TaskCombine:
		t.onCombineFinished(aj, info, status)
	case TaskCommit, TaskAbort:
		t.onTerminalTaskFinished(info.JobId)
	}
}

func (t *Tracker) failed(status TaskStatus) bool {
	return status.State == TaskFailed || status.State == TaskCrashed
}

func (t *Tracker) onMapFinished(aj *activeJob, info TaskInfo, status TaskStatus) {
	jobId := info.JobId

	if t.failed(status) {
		// This both removes the split and, since Err is set, cancels the
		// whole job — a single mapper failure fails the job (§8 scenario 3).
		t.store.TransformAsync(jobId, RemoveMappers{Splits: []InputSplit{*info.Split}, Err: status.FailCause})
		return
	}

	_, _, lastMapper := aj.state.IncCompletedMappers()

	meta, err := t.store.Get(jobId)
	if err != nil || meta == nil {
		t.logger.Error("failed to re-read metadata after map completion", "job_id", jobId.String())
		return
	}

	if aj.job.HasCombiner() && !meta.ExternalExecution {
		if lastMapper {
			combineInfo := TaskInfo{
				NodeId:     t.localNodeId,
				Type:       TaskCombine,
				JobId:      jobId,
				TaskNumber: meta.Plan.NodeTaskNumber(t.localNodeId),
			}
			if err := t.executor(meta.ExternalExecution).Run(aj.job, []TaskInfo{combineInfo}, t.OnTaskFinished); err != nil {
				t.logger.Error("failed to run combine task", "job_id", jobId.String(), "error", err)
			}
		}
		// The combine path (onCombineFinished) issues RemoveMappers for the
		// whole node's batch; do not issue it here.
		return
	}

	// No combiner, or a combiner that external execution bypasses: the
	// combine task is never scheduled locally for external execution (§8
	// boundary case), so this falls through to the same per-split,
	// flush-on-last-mapper RemoveMappers path used when there is no
	// combiner at all.

	split := *info.Split

	if !lastMapper {
		t.store.TransformAsync(jobId, RemoveMappers{Splits: []InputSplit{split}})
		return
	}

	errCh := t.shuffle.Flush(jobId)
	go func() {
		flushErr := <-errCh
		t.store.TransformAsync(jobId, RemoveMappers{Splits: []InputSplit{split}, Err: ShuffleFailCause(flushErr)})
	}()
}

func (t *Tracker) onReduceFinished(info TaskInfo, status TaskStatus) {
	if t.failed(status) {
		t.store.TransformAsync(info.JobId, RemoveReducer{Idx: info.TaskNumber, Err: status.FailCause})
		return
	}
	t.store.TransformAsync(info.JobId, RemoveReducer{Idx: info.TaskNumber})
}

func (t *Tracker) onCombineFinished(aj *activeJob, info TaskInfo, status TaskStatus) {
	jobId := info.JobId

	if t.failed(status) {
		t.store.TransformAsync(jobId, RemoveMappers{Splits: aj.state.CurrMappers(), Err: status.FailCause})
		return
	}

	errCh := t.shuffle.Flush(jobId)
	go func() {
		flushErr := <-errCh
		t.store.TransformAsync(jobId, RemoveMappers{Splits: aj.state.CurrMappers(), Err: ShuffleFailCause(flushErr)})
	}()
}

func (t *Tracker) onTerminalTaskFinished(jobId JobId) {
	ttl := time.Duration(0)
	if meta, err := t.store.Get(jobId); err == nil && meta != nil {
		ttl = meta.JobInfo.FinishedJobInfoTTL()
	}

	if ttl > 0 {
		if err := t.store.SetTTL(jobId, ttl); err != nil {
			t.logger.Error("failed to set ttl on finished job", "job_id", jobId.String(), "error", err)
		}
	}

	t.store.TransformAsync(jobId, UpdatePhase{Phase: PhaseComplete})
}
