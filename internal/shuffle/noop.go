// Package shuffle is a trivial stand-in for the (out-of-scope) shuffle
// transport: SPEC_FULL.md's Non-goals explicitly exclude defining a shuffle
// wire protocol, so NoopShuffle only satisfies the jobtracker.Shuffle
// contract closely enough to drive the completion handler in tests and
// single-process demos.
package shuffle

import "github.com/distmr/tracker/internal/jobtracker"

// NoopShuffle reports every flush as an immediate success.
type NoopShuffle struct{}

func New() NoopShuffle { return NoopShuffle{} }

func (NoopShuffle) Flush(jobtracker.JobId) <-chan error {
	ch := make(chan error, 1)
	ch <- nil
	return ch
}

func (NoopShuffle) JobFinished(jobtracker.JobId) {}
