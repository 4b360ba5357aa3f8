package jobtracker

import (
	"testing"
	"time"
)

func TestNewMapReducePlanAssignsDeterministicTaskNumbers(t *testing.T) {
	plan := NewMapReducePlan(
		map[NodeId][]InputSplit{
			"n2": {split("c")},
			"n1": {split("a"), split("b")},
		},
		nil,
	)

	if plan.TaskNumber(split("a")) != 0 {
		t.Fatalf("task number for a = %d, want 0", plan.TaskNumber(split("a")))
	}
	if plan.TaskNumber(split("b")) != 1 {
		t.Fatalf("task number for b = %d, want 1", plan.TaskNumber(split("b")))
	}
	if plan.TaskNumber(split("c")) != 2 {
		t.Fatalf("task number for c = %d, want 2 (n1 sorts before n2)", plan.TaskNumber(split("c")))
	}
}

func TestNewJobMetadataInitialState(t *testing.T) {
	meta := baseMeta()

	if meta.Phase != PhaseMap {
		t.Fatalf("phase = %v, want PhaseMap", meta.Phase)
	}
	if len(meta.PendingSplits) != 2 {
		t.Fatalf("pending splits = %d, want 2", len(meta.PendingSplits))
	}
	if len(meta.PendingReducers) != 2 {
		t.Fatalf("pending reducers = %d, want 2", len(meta.PendingReducers))
	}
}

func TestJobMetadataCloneIsIndependent(t *testing.T) {
	meta := baseMeta()
	cp := meta.clone()

	delete(cp.PendingSplits, split("a"))

	if _, ok := meta.PendingSplits[split("a")]; !ok {
		t.Fatal("mutating clone's PendingSplits affected the original")
	}
}

func TestFailCauseErrorNilSafe(t *testing.T) {
	var f *FailCause
	if f.Error() != "" {
		t.Fatalf("nil FailCause.Error() = %q, want empty", f.Error())
	}

	f = &FailCause{Kind: "x", Message: "y"}
	if f.Error() != "x: y" {
		t.Fatalf("Error() = %q, want %q", f.Error(), "x: y")
	}
}

func TestJobInfoExternalExecutionAndTTL(t *testing.T) {
	info := JobInfo{Config: map[string]string{
		ConfigExternalExecution:  "true",
		ConfigFinishedJobInfoTTL: "2m",
	}}

	if !info.ExternalExecution() {
		t.Fatal("expected ExternalExecution true")
	}
	if info.FinishedJobInfoTTL() != 2*time.Minute {
		t.Fatalf("FinishedJobInfoTTL = %v, want 2m", info.FinishedJobInfoTTL())
	}
}
