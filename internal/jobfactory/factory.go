// Package jobfactory materialises a runnable jobtracker.Job from a
// JobInfo's job_name config key, grounded in the teacher's pkg/jobs registry
// of named Map/Reduce function pairs.
package jobfactory

import (
	"fmt"
	"sync"

	"github.com/distmr/tracker/internal/jobtracker"
)

// ConfigJobName is the JobInfo.Config key naming a registered Spec.
const ConfigJobName = "job_name"

type KeyValue struct {
	Key   string
	Value string
}

type MapFunc func(key, value string) []KeyValue
type ReduceFunc func(key string, values []string) KeyValue

// Spec bundles the user code for a registered job. Combine is optional; a
// nil Combine means the job has no combiner (§3 HasCombiner).
type Spec struct {
	Map     MapFunc
	Reduce  ReduceFunc
	Combine ReduceFunc
}

// Registry is a thread-safe name -> Spec table, unlike the teacher's
// package-level map, since multiple Trackers in one process (as in tests)
// must not share mutable global state.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

func (r *Registry) Register(name string, spec Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[name]; exists {
		return fmt.Errorf("jobfactory: job already registered: %s", name)
	}
	r.specs[name] = spec
	return nil
}

func (r *Registry) Get(name string) (Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, exists := r.specs[name]
	if !exists {
		return Spec{}, fmt.Errorf("jobfactory: job not found: %s", name)
	}
	return spec, nil
}

// Job adapts a registered Spec to the jobtracker.Job contract and carries
// the function references localexec.Work needs to actually run a task.
type Job struct {
	JobId jobtracker.JobId
	Spec  Spec
}

func (j *Job) Id() jobtracker.JobId   { return j.JobId }
func (j *Job) HasCombiner() bool      { return j.Spec.Combine != nil }

// Factory implements jobtracker.JobFactory over a Registry.
type Factory struct {
	registry *Registry
}

func New(registry *Registry) *Factory {
	return &Factory{registry: registry}
}

func (f *Factory) CreateJob(id jobtracker.JobId, info jobtracker.JobInfo) (jobtracker.Job, error) {
	name := info.Config[ConfigJobName]
	if name == "" {
		return nil, fmt.Errorf("jobfactory: job_name not set in job config")
	}
	spec, err := f.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return &Job{JobId: id, Spec: spec}, nil
}
