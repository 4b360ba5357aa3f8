// Package planner computes a MapReducePlan by expanding a job's input globs
// into splits and assigning them, round-robin, across the live node set. It
// is grounded in the teacher's core.FindLocalFiles (doublestar glob over the
// local filesystem) and its round-robin task distribution in
// core.jobController.SubmitJob.
package planner

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/distmr/tracker/internal/jobtracker"
)

// RoundRobin assigns mapper splits and reducer indices to the live node set
// in round-robin order, sorted by NodeId so every node derives the same
// assignment from the same inputs.
type RoundRobin struct{}

func New() RoundRobin { return RoundRobin{} }

func (RoundRobin) PreparePlan(job jobtracker.Job, info jobtracker.JobInfo, liveNodes []jobtracker.NodeId) (jobtracker.MapReducePlan, error) {
	if len(liveNodes) == 0 {
		return jobtracker.MapReducePlan{}, fmt.Errorf("planner: no live nodes to place job %s on", job.Id().String())
	}

	files, err := findLocalFiles(info.InputPaths)
	if err != nil {
		return jobtracker.MapReducePlan{}, fmt.Errorf("planner: %w", err)
	}
	if len(files) == 0 {
		return jobtracker.MapReducePlan{}, fmt.Errorf("planner: no input files matched for job %s", job.Id().String())
	}

	nodes := append([]jobtracker.NodeId(nil), liveNodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	mappers := make(map[jobtracker.NodeId][]jobtracker.InputSplit, len(nodes))
	for i, f := range files {
		node := nodes[i%len(nodes)]
		mappers[node] = append(mappers[node], jobtracker.InputSplit{Path: f.path, Offset: 0, Length: f.size})
	}

	reducers := make(map[jobtracker.NodeId][]int, len(nodes))
	for i := 0; i < info.Reducers; i++ {
		node := nodes[i%len(nodes)]
		reducers[node] = append(reducers[node], i)
	}

	return jobtracker.NewMapReducePlan(mappers, reducers), nil
}

type localFile struct {
	path string
	size int64
}

func findLocalFiles(patterns []string) ([]localFile, error) {
	var files []localFile
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, err
		}
		for _, name := range matches {
			info, err := os.Lstat(name)
			if err != nil {
				continue
			}
			if info.Mode().IsRegular() {
				files = append(files, localFile{path: name, size: info.Size()})
			}
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files, nil
}
