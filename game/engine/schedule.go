package engine

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Scheduler runs one-shot callbacks after a delay
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

// Task is a scheduled callback that can be cancelled before it fires
type Task interface {
	Stop() bool
}

// ClockScheduler schedules callbacks on a clock.Clock
type ClockScheduler struct {
	clock clock.Clock
}

// NewClockScheduler wraps c. Pass clock.New() for wall time.
func NewClockScheduler(c clock.Clock) *ClockScheduler {
	return &ClockScheduler{clock: c}
}

// AfterFunc implements Scheduler
func (s *ClockScheduler) AfterFunc(d time.Duration, f func()) Task {
	return s.clock.AfterFunc(d, f)
}

// repeater fires fn every interval by rescheduling a one-shot task before each call
type repeater struct {
	sched    Scheduler
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	task    Task
	stopped bool
}

func startRepeater(s Scheduler, interval time.Duration, fn func()) *repeater {
	r := &repeater{sched: s, interval: interval, fn: fn}
	r.mu.Lock()
	r.task = s.AfterFunc(interval, r.fire)
	r.mu.Unlock()
	return r
}

func (r *repeater) fire() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.task = r.sched.AfterFunc(r.interval, r.fire)
	r.mu.Unlock()

	r.fn()
}

// Stop cancels the pending tick. Safe to call more than once and on nil.
func (r *repeater) Stop() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.task != nil {
		r.task.Stop()
		r.task = nil
	}
}

// notifier fans snapshots out to listeners in subscription order.
// The owning engine serializes access with its own lock.
type notifier struct {
	nextID    int
	order     []int
	listeners map[int]Listener
}

func (n *notifier) subscribe(fn Listener) int {
	if n.listeners == nil {
		n.listeners = make(map[int]Listener)
	}
	n.nextID++
	n.listeners[n.nextID] = fn
	n.order = append(n.order, n.nextID)
	return n.nextID
}

func (n *notifier) unsubscribe(id int) {
	if _, ok := n.listeners[id]; !ok {
		return
	}
	delete(n.listeners, id)
	for i, v := range n.order {
		if v == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

func (n *notifier) publish(s Snapshot) {
	for _, id := range n.order {
		n.listeners[id](s)
	}
}
