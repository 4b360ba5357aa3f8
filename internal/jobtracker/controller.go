package jobtracker

// processChanges handles one batch of store change notifications, in
// arrival order, on the dispatcher goroutine (§4.5).
func (t *Tracker) processChanges(changes []Change) {
	for _, change := range changes {
		t.onMetadataChanged(change.JobId, change.Meta)
	}
}

// onMetadataChanged is the lifecycle controller's entry point. It inspects
// the current phase and this node's share of the plan, and only ever acts on
// work owed by this node.
func (t *Tracker) onMetadataChanged(id JobId, meta JobMetadata) {
	job, err := t.jobFactory.CreateJob(id, meta.JobInfo)
	if err != nil {
		t.logger.Error("failed to materialise job for metadata update", "job_id", id.String(), "error", err)
		return
	}

	if meta.ExternalExecution {
		t.executor(true).OnJobStateChanged(id, meta)
	}

	switch meta.Phase {
	case PhaseMap:
		t.onPhaseMap(id, job, meta)
	case PhaseReduce:
		t.onPhaseReduce(id, job, meta)
	case PhaseCancelling:
		t.onPhaseCancelling(id, job, meta)
	case PhaseComplete:
		t.onPhaseComplete(id, meta)
	case PhaseSetup:
		// No local action; a job never replicates in PhaseSetup (Submit
		// writes it directly in PhaseMap).
	}
}

func (t *Tracker) onPhaseMap(id JobId, job Job, meta JobMetadata) {
	aj := t.initState(id, job)

	tasks := t.mapperTasks(aj.state, meta)

	if meta.ExternalExecution {
		// The external worker process is launched once per node per job, so
		// mapper and reducer scheduling must be coupled into one dispatch
		// (§4.5, §9 design notes).
		tasks = t.reducerTasks(aj.state, meta, tasks)
	}

	if len(tasks) > 0 {
		if err := t.executor(meta.ExternalExecution).Run(job, tasks, t.OnTaskFinished); err != nil {
			t.logger.Error("failed to run tasks", "job_id", id.String(), "error", err)
		}
	}
}

func (t *Tracker) onPhaseReduce(id JobId, job Job, meta JobMetadata) {
	if len(meta.PendingReducers) == 0 {
		if isUpdateLeader(meta, t.discovery.LiveNodes(), t.localNodeId) {
			info := TaskInfo{NodeId: t.localNodeId, Type: TaskCommit, JobId: id}
			t.logger.Info("submitting commit task", "job_id", id.String())
			if err := t.taskExecutorFor(TaskCommit, meta.ExternalExecution).Run(job, []TaskInfo{info}, t.OnTaskFinished); err != nil {
				t.logger.Error("failed to run commit task", "job_id", id.String(), "error", err)
			}
		}
		return
	}

	if meta.ExternalExecution {
		return
	}

	aj := t.initState(id, job)
	tasks := t.reducerTasks(aj.state, meta, nil)
	if len(tasks) > 0 {
		if err := t.executor(false).Run(job, tasks, t.OnTaskFinished); err != nil {
			t.logger.Error("failed to run reducer tasks", "job_id", id.String(), "error", err)
		}
	}
}

func (t *Tracker) onPhaseCancelling(id JobId, job Job, meta JobMetadata) {
	aj := t.lookupState(id)

	if aj != nil && aj.state.OnCancel() {
		t.logger.Info("cancelling local task execution", "job_id", id.String())
		t.executor(meta.ExternalExecution).CancelTasks(id)
	}

	if len(meta.PendingSplits) == 0 && len(meta.PendingReducers) == 0 {
		if isUpdateLeader(meta, t.discovery.LiveNodes(), t.localNodeId) {
			info := TaskInfo{NodeId: t.localNodeId, Type: TaskAbort, JobId: id}
			t.logger.Info("submitting abort task", "job_id", id.String())
			if err := t.taskExecutorFor(TaskAbort, meta.ExternalExecution).Run(job, []TaskInfo{info}, t.OnTaskFinished); err != nil {
				t.logger.Error("failed to run abort task", "job_id", id.String(), "error", err)
			}
		}
		return
	}

	var cancelSplits []InputSplit
	for _, split := range meta.Plan.Mappers(t.localNodeId) {
		if aj == nil || !aj.state.MapperScheduled(split) {
			cancelSplits = append(cancelSplits, split)
		}
	}

	var cancelReducers []int
	for _, idx := range meta.Plan.Reducers(t.localNodeId) {
		if aj == nil || !aj.state.ReducerScheduled(idx) {
			cancelReducers = append(cancelReducers, idx)
		}
	}

	if len(cancelSplits) > 0 || len(cancelReducers) > 0 {
		t.store.TransformAsync(id, CancelJob{Splits: cancelSplits, Reducers: cancelReducers})
	}
}

func (t *Tracker) onPhaseComplete(id JobId, meta JobMetadata) {
	if t.lookupState(id) != nil {
		t.removeState(id)
		t.shuffle.JobFinished(id)
	}

	if fut := t.removeFuture(id); fut != nil {
		t.logger.Info("completing job future", "job_id", id.String())
		fut.complete(id, failCauseErr(meta.FailCause))
	}
}

func (t *Tracker) mapperTasks(state *LocalJobState, meta JobMetadata) []TaskInfo {
	var tasks []TaskInfo
	for _, split := range meta.Plan.Mappers(t.localNodeId) {
		if !state.AddMapper(split) {
			continue
		}
		split := split
		tasks = append(tasks, TaskInfo{
			NodeId:     t.localNodeId,
			Type:       TaskMap,
			JobId:      meta.JobId,
			TaskNumber: meta.Plan.TaskNumber(split),
			Split:      &split,
		})
	}
	return tasks
}

func (t *Tracker) reducerTasks(state *LocalJobState, meta JobMetadata, tasks []TaskInfo) []TaskInfo {
	for _, idx := range meta.Plan.Reducers(t.localNodeId) {
		if !state.AddReducer(idx) {
			continue
		}
		tasks = append(tasks, TaskInfo{
			NodeId:     t.localNodeId,
			Type:       TaskReduce,
			JobId:      meta.JobId,
			TaskNumber: idx,
		})
	}
	return tasks
}
