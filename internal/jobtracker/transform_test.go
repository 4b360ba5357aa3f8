package jobtracker

import "testing"

func split(path string) InputSplit { return InputSplit{Path: path} }

func baseMeta() JobMetadata {
	plan := NewMapReducePlan(
		map[NodeId][]InputSplit{"n1": {split("a"), split("b")}},
		map[NodeId][]int{"n1": {0, 1}},
	)
	info := JobInfo{Reducers: 2}
	return NewJobMetadata(JobId{ClusterTag: "t"}, info, plan, false, "n1")
}

func TestUpdatePhaseApply(t *testing.T) {
	meta := baseMeta()
	updated := UpdatePhase{Phase: PhaseCancelling}.Apply(meta)

	if updated.Phase != PhaseCancelling {
		t.Fatalf("phase = %v, want PhaseCancelling", updated.Phase)
	}
	if meta.Phase != PhaseMap {
		t.Fatalf("original meta mutated: phase = %v", meta.Phase)
	}
}

func TestRemoveMappersAdvancesToReduceWhenDrained(t *testing.T) {
	meta := baseMeta()

	meta = RemoveMappers{Splits: []InputSplit{split("a")}}.Apply(meta)
	if meta.Phase != PhaseMap {
		t.Fatalf("phase = %v, want still PhaseMap with one split pending", meta.Phase)
	}
	if len(meta.PendingSplits) != 1 {
		t.Fatalf("pending splits = %d, want 1", len(meta.PendingSplits))
	}

	meta = RemoveMappers{Splits: []InputSplit{split("b")}}.Apply(meta)
	if meta.Phase != PhaseReduce {
		t.Fatalf("phase = %v, want PhaseReduce once all splits drained", meta.Phase)
	}
}

func TestRemoveMappersWithErrCancels(t *testing.T) {
	meta := baseMeta()
	meta = RemoveMappers{Splits: []InputSplit{split("a")}, Err: TaskFailCause(errBoom)}.Apply(meta)

	if meta.Phase != PhaseCancelling {
		t.Fatalf("phase = %v, want PhaseCancelling", meta.Phase)
	}
	if meta.FailCause == nil {
		t.Fatal("FailCause not recorded")
	}
}

func TestRemoveReducerRecordsFailureWithoutDrainingPendingSplits(t *testing.T) {
	meta := baseMeta()
	meta.Phase = PhaseReduce

	meta = RemoveReducer{Idx: 0, Err: TaskFailCause(errBoom)}.Apply(meta)

	if meta.Phase != PhaseCancelling {
		t.Fatalf("phase = %v, want PhaseCancelling", meta.Phase)
	}
	if _, ok := meta.PendingReducers[0]; ok {
		t.Fatal("reducer 0 still pending")
	}
	if len(meta.PendingSplits) != 2 {
		t.Fatalf("pending splits = %d, want 2 (RemoveReducer must not touch them)", len(meta.PendingSplits))
	}
}

func TestCancelJobCompletesWhenBothSetsEmpty(t *testing.T) {
	meta := baseMeta()
	meta.PendingSplits = map[InputSplit]struct{}{split("a"): {}}
	meta.PendingReducers = map[int]struct{}{0: {}}

	meta = CancelJob{Splits: []InputSplit{split("a")}, Reducers: []int{0}}.Apply(meta)

	if meta.Phase != PhaseComplete {
		t.Fatalf("phase = %v, want PhaseComplete", meta.Phase)
	}
}

func TestCancelJobStaysCancellingWithRemainingWork(t *testing.T) {
	meta := baseMeta()
	meta.PendingSplits = map[InputSplit]struct{}{split("a"): {}, split("b"): {}}
	meta.PendingReducers = map[int]struct{}{0: {}}

	meta = CancelJob{Splits: []InputSplit{split("a")}}.Apply(meta)

	if meta.Phase != PhaseCancelling {
		t.Fatalf("phase = %v, want PhaseCancelling", meta.Phase)
	}
	if len(meta.PendingSplits) != 1 {
		t.Fatalf("pending splits = %d, want 1", len(meta.PendingSplits))
	}
}

func TestRemoveMappersApplyTwiceIsIdempotent(t *testing.T) {
	meta := baseMeta()

	once := RemoveMappers{Splits: []InputSplit{split("a")}}.Apply(meta)
	twice := RemoveMappers{Splits: []InputSplit{split("a")}}.Apply(once)

	if len(once.PendingSplits) != len(twice.PendingSplits) {
		t.Fatalf("pending splits changed on second apply: %d -> %d", len(once.PendingSplits), len(twice.PendingSplits))
	}
	if _, ok := twice.PendingSplits[split("a")]; ok {
		t.Fatal("split a still pending after two applications")
	}
	if once.Phase != twice.Phase {
		t.Fatalf("phase changed on second apply: %v -> %v", once.Phase, twice.Phase)
	}
}

func TestCancelJobApplyTwiceIsIdempotent(t *testing.T) {
	meta := baseMeta()
	meta.PendingSplits = map[InputSplit]struct{}{split("a"): {}}
	meta.PendingReducers = map[int]struct{}{0: {}}

	cancel := CancelJob{Splits: []InputSplit{split("a")}, Reducers: []int{0}}
	once := cancel.Apply(meta)
	twice := cancel.Apply(once)

	if len(once.PendingSplits) != len(twice.PendingSplits) || len(once.PendingReducers) != len(twice.PendingReducers) {
		t.Fatal("pending sets changed on second apply")
	}
	if once.Phase != twice.Phase {
		t.Fatalf("phase changed on second apply: %v -> %v", once.Phase, twice.Phase)
	}
}

var errBoom = errBoomType{}

type errBoomType struct{}

func (errBoomType) Error() string { return "boom" }
