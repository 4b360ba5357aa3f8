package jobtracker

import (
	"sync"
	"testing"
	"time"

	"github.com/distmr/tracker/internal/shared/logging"
)

func TestDispatcherRunsInOrderOnOneGoroutine(t *testing.T) {
	d := NewDispatcher(logging.NopLogger{})
	d.Start()
	defer d.Stop()

	var mu sync.Mutex
	var order []int
	var running, maxRunning int

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		d.Enqueue(func() {
			defer wg.Done()
			mu.Lock()
			running++
			if running > maxRunning {
				maxRunning = running
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			order = append(order, i)
			running--
			mu.Unlock()
		})
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if maxRunning != 1 {
		t.Fatalf("%d events ran concurrently, want 1", maxRunning)
	}
	for idx, v := range order {
		if idx != v {
			t.Fatalf("events ran out of order: %v", order)
		}
	}
}

func TestDispatcherRecoversPanics(t *testing.T) {
	d := NewDispatcher(logging.NopLogger{})
	d.Start()
	defer d.Stop()

	done := make(chan struct{})
	d.Enqueue(func() { panic("boom") })
	d.Enqueue(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher stalled after a panicking task")
	}
}

func TestDispatcherStopDrainsQueueThenExits(t *testing.T) {
	d := NewDispatcher(logging.NopLogger{})
	d.Start()

	ran := make(chan struct{}, 1)
	d.Enqueue(func() { ran <- struct{}{} })
	d.Stop()

	select {
	case <-ran:
	default:
		t.Fatal("queued task did not run before Stop returned")
	}

	d.Enqueue(func() { t.Fatal("should not run after Stop") })
}
