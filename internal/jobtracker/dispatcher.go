package jobtracker

import (
	"container/list"
	"sync"

	"github.com/distmr/tracker/internal/shared/logging"
)

// Dispatcher is a single background worker draining an unbounded FIFO queue
// of closures, grounded in the teacher's channel-fed worker pool
// (pkg/local.Pool) but narrowed to exactly one goroutine. Both the
// store-change callback and the discovery event handler enqueue work here so
// neither ever re-enters the store or races the other (§4.4).
type Dispatcher struct {
	logger logging.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  *list.List
	closed bool

	done chan struct{}
}

func NewDispatcher(logger logging.Logger) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		queue:  list.New(),
		done:   make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// Start launches the single worker goroutine.
func (d *Dispatcher) Start() {
	go d.run()
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for {
		d.mu.Lock()
		for d.queue.Len() == 0 && !d.closed {
			d.cond.Wait()
		}
		if d.queue.Len() == 0 && d.closed {
			d.mu.Unlock()
			return
		}
		elem := d.queue.Front()
		d.queue.Remove(elem)
		d.mu.Unlock()

		fn := elem.Value.(func())
		d.safeRun(fn)
	}
}

func (d *Dispatcher) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("unhandled panic while processing event", "panic", r)
		}
	}()
	fn()
}

// Enqueue appends fn to the end of the queue. It is safe to call from any
// goroutine, including store/discovery callback goroutines, which must
// never block or re-enter their caller.
func (d *Dispatcher) Enqueue(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.queue.PushBack(fn)
	d.cond.Signal()
}

// Stop closes the queue and waits for the worker to drain and exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	d.closed = true
	d.cond.Signal()
	d.mu.Unlock()

	<-d.done
}
