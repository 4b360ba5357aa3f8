package jobtracker

// Transform is a pure function applied atomically by the store to evolve a
// JobMetadata value. Implemented as tagged-variant values rather than bare Go
// closures so they stay serialisable if the store is ever distributed
// out-of-process (§9 design notes).
type Transform interface {
	Apply(meta JobMetadata) JobMetadata
}

// UpdatePhase sets Phase unconditionally.
type UpdatePhase struct {
	Phase JobPhase
}

func (t UpdatePhase) Apply(meta JobMetadata) JobMetadata {
	cp := meta.clone()
	cp.Phase = t.Phase
	return cp
}

// RemoveMappers removes splits from PendingSplits. If Err is set it records
// the failure and cancels the job; otherwise, once PendingSplits empties and
// the job isn't already cancelling, it advances to PhaseReduce.
type RemoveMappers struct {
	Splits []InputSplit
	Err    *FailCause
}

func (t RemoveMappers) Apply(meta JobMetadata) JobMetadata {
	cp := meta.clone()

	for _, s := range t.Splits {
		delete(cp.PendingSplits, s)
	}

	if t.Err != nil {
		cp.FailCause = t.Err
		cp.Phase = PhaseCancelling
	} else if len(cp.PendingSplits) == 0 && cp.Phase != PhaseCancelling {
		cp.Phase = PhaseReduce
	}

	return cp
}

// RemoveReducer removes idx from PendingReducers. If Err is set it records
// the failure and cancels the job.
type RemoveReducer struct {
	Idx int
	Err *FailCause
}

func (t RemoveReducer) Apply(meta JobMetadata) JobMetadata {
	cp := meta.clone()

	delete(cp.PendingReducers, t.Idx)

	if t.Err != nil {
		cp.FailCause = t.Err
		cp.Phase = PhaseCancelling
	}

	return cp
}

// CancelJob removes the given splits and reducers from their pending sets
// and moves the job to PhaseCancelling; if both sets become empty it
// advances straight to PhaseComplete.
type CancelJob struct {
	Splits   []InputSplit
	Reducers []int
	Err      *FailCause
}

func (t CancelJob) Apply(meta JobMetadata) JobMetadata {
	cp := meta.clone()

	for _, r := range t.Reducers {
		delete(cp.PendingReducers, r)
	}
	for _, s := range t.Splits {
		delete(cp.PendingSplits, s)
	}

	if t.Err != nil {
		cp.FailCause = t.Err
	}
	cp.Phase = PhaseCancelling

	if len(cp.PendingSplits) == 0 && len(cp.PendingReducers) == 0 {
		cp.Phase = PhaseComplete
	}

	return cp
}
