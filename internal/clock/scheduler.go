// Package clock provides the per-agent cooperative scheduler: periodic tasks
// and delayed one-shot callbacks advanced by the simulation frame tick.
package clock

import (
	"slices"
	"time"
)

// TaskID identifies a scheduled task. Zero is never issued.
type TaskID uint64

type task struct {
	id     TaskID
	due    time.Duration
	period time.Duration // 0 for one-shot tasks
	fn     func()
}

// Scheduler runs tasks relative to its own frame clock.
// It is not safe for concurrent use: one agent, one goroutine.
type Scheduler struct {
	now    time.Duration
	nextID TaskID
	tasks  []*task
}

// NewScheduler creates a scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns elapsed frame time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Every schedules fn to run every period. The first run happens one period
// from now; a task fires at most once per Advance and the next period starts
// from the frame it fired in.
func (s *Scheduler) Every(period time.Duration, fn func()) TaskID {
	return s.add(period, period, fn)
}

// After schedules fn to run once, delay from now.
func (s *Scheduler) After(delay time.Duration, fn func()) TaskID {
	return s.add(delay, 0, fn)
}

// Cancel removes a pending task. Unknown or finished IDs are ignored.
func (s *Scheduler) Cancel(id TaskID) {
	s.tasks = slices.DeleteFunc(s.tasks, func(t *task) bool {
		return t.id == id
	})
}

// CancelAll removes every pending task.
func (s *Scheduler) CancelAll() {
	clear(s.tasks)
	s.tasks = s.tasks[:0]
}

// Pending returns number of scheduled tasks.
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Advance moves the clock forward by dt and runs every due task in due-time
// order (ties in scheduling order). Tasks scheduled or cancelled by a running
// task take effect immediately; tasks scheduled during Advance never run in
// the same call.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt > 0 {
		s.now += dt
	}

	due := make([]*task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.due <= s.now {
			due = append(due, t)
		}
	}
	slices.SortStableFunc(due, func(a, b *task) int {
		if a.due != b.due {
			if a.due < b.due {
				return -1
			}
			return 1
		}
		if a.id < b.id {
			return -1
		}
		return 1
	})

	for _, t := range due {
		if !s.has(t) {
			continue // cancelled by an earlier task
		}
		if t.period > 0 {
			t.due = s.now + t.period
		} else {
			s.Cancel(t.id)
		}
		t.fn()
	}
}

func (s *Scheduler) add(delay, period time.Duration, fn func()) TaskID {
	s.nextID++
	s.tasks = append(s.tasks, &task{
		id:     s.nextID,
		due:    s.now + max(delay, 0),
		period: period,
		fn:     fn,
	})
	return s.nextID
}

func (s *Scheduler) has(t *task) bool {
	return slices.Contains(s.tasks, t)
}
