package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/distmr/tracker/internal/api/rest"
	"github.com/distmr/tracker/internal/jobfactory"
	"github.com/distmr/tracker/internal/jobtracker"
	"github.com/distmr/tracker/internal/localexec"
	"github.com/distmr/tracker/internal/shared/logging"
	"github.com/distmr/tracker/internal/shuffle"
	"github.com/distmr/tracker/internal/store"
)

type fakeDiscovery struct{ node jobtracker.NodeId }

func (d fakeDiscovery) Subscribe(func(jobtracker.DiscoveryEvent)) {}
func (d fakeDiscovery) LiveNodes() []jobtracker.NodeId             { return []jobtracker.NodeId{d.node} }
func (d fakeDiscovery) LocalNodeId() jobtracker.NodeId             { return d.node }

type fakePlanner struct{ node jobtracker.NodeId }

func (p fakePlanner) PreparePlan(job jobtracker.Job, info jobtracker.JobInfo, liveNodes []jobtracker.NodeId) (jobtracker.MapReducePlan, error) {
	var split jobtracker.InputSplit
	if len(info.InputPaths) > 0 {
		split = jobtracker.InputSplit{Path: info.InputPaths[0]}
	}
	return jobtracker.NewMapReducePlan(map[jobtracker.NodeId][]jobtracker.InputSplit{p.node: {split}}, nil), nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	registry := jobfactory.NewRegistry()
	if err := registry.Register("wordcount", jobfactory.Spec{}); err != nil {
		t.Fatalf("register job: %v", err)
	}
	exec := localexec.NewExecutor(1, func(ctx context.Context, job jobtracker.Job, info jobtracker.TaskInfo) error {
		return nil
	}, logging.NopLogger{})
	t.Cleanup(exec.Close)

	const node jobtracker.NodeId = "node-1"
	tracker := jobtracker.NewTracker(jobtracker.Deps{
		Store:        store.NewMemoryStore(),
		InternalExec: exec,
		ExternalExec: exec,
		Shuffle:      shuffle.New(),
		Discovery:    fakeDiscovery{node: node},
		JobFactory:   jobfactory.New(registry),
		Planner:      fakePlanner{node: node},
		Logger:       logging.NopLogger{},
		ClusterTag:   "test",
	})
	t.Cleanup(tracker.Shutdown)

	server := rest.NewServer("", tracker, logging.NopLogger{})
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestSubmitAndGetJob(t *testing.T) {
	ts := newTestServer(t)

	body, _ := json.Marshal(rest.SubmitJobRequest{
		InputPaths: []string{"a"},
		Config:     map[string]string{"job_name": "wordcount"},
	})
	resp, err := http.Post(ts.URL+"/api/jobs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var submitResp rest.SubmitJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if submitResp.JobID == "" {
		t.Fatal("expected non-empty job id")
	}

	getResp, err := http.Get(ts.URL + "/api/jobs/" + submitResp.JobID)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", getResp.StatusCode)
	}
}

func TestGetUnknownJobReturns404(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/jobs/test-999-" + "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSubmitJobMissingInputPathsReturns400(t *testing.T) {
	ts := newTestServer(t)

	body, _ := json.Marshal(rest.SubmitJobRequest{})
	resp, err := http.Post(ts.URL+"/api/jobs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
