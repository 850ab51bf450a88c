// Package enginetest provides deterministic time and randomness for engine tests.
package enginetest

import (
	"sort"
	"sync"
	"time"

	"github.com/wricardo/puzzle-arcade/game/engine"
)

// Scheduler is a manual engine.Scheduler. Callbacks fire synchronously, in due
// order, from Advance.
type Scheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*task
}

type task struct {
	s    *Scheduler
	at   time.Duration
	seq  int
	fn   func()
	done bool
}

var _ engine.Scheduler = (*Scheduler)(nil)

// NewScheduler returns a scheduler at time zero
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// AfterFunc implements engine.Scheduler
func (s *Scheduler) AfterFunc(d time.Duration, f func()) engine.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &task{s: s, at: s.now + d, seq: s.seq, fn: f}
	s.tasks = append(s.tasks, t)
	return t
}

// Stop cancels the task if it has not fired
func (t *task) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.s.remove(t)
	return true
}

// Advance moves time forward by d, firing every task that falls due,
// including tasks scheduled by callbacks along the way
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDue(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.at
		next.done = true
		s.remove(next)
		s.mu.Unlock()

		next.fn()
	}
}

// Now reports the elapsed virtual time
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending reports how many tasks are waiting to fire
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Scheduler) nextDue(target time.Duration) *task {
	if len(s.tasks) == 0 {
		return nil
	}
	sort.Slice(s.tasks, func(i, j int) bool {
		if s.tasks[i].at != s.tasks[j].at {
			return s.tasks[i].at < s.tasks[j].at
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})
	if s.tasks[0].at > target {
		return nil
	}
	return s.tasks[0]
}

func (s *Scheduler) remove(t *task) {
	for i, v := range s.tasks {
		if v == t {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

// Rand replays a fixed sequence of values, reduced modulo n, and wraps around
type Rand struct {
	mu     sync.Mutex
	values []int
	next   int
}

var _ engine.Rand = (*Rand)(nil)

// NewRand returns a Rand that yields values in order. With no values it always yields 0.
func NewRand(values ...int) *Rand {
	return &Rand{values: values}
}

// IntN implements engine.Rand
func (r *Rand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.next%len(r.values)]
	r.next++
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
