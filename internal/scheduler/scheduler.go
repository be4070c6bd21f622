package scheduler

import (
	"sync"
	"time"
)

// Scheduler runs delayed tasks. Tasks never run after Stop.
type Scheduler struct {
	mu      sync.Mutex
	stopped bool
	nextID  uint64
	timers  map[uint64]*time.Timer
}

func New() *Scheduler {
	return &Scheduler{
		timers: make(map[uint64]*time.Timer),
	}
}

// After runs fn once d has elapsed and returns false when the scheduler is stopped.
func (that *Scheduler) After(d time.Duration, fn func()) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.stopped {
		return false
	}

	that.nextID++
	id := that.nextID

	that.timers[id] = time.AfterFunc(d, func() {
		that.mu.Lock()
		if that.stopped {
			that.mu.Unlock()
			return
		}
		delete(that.timers, id)
		that.mu.Unlock()

		fn()
	})

	return true
}

// Pending returns the number of tasks that have not fired yet.
func (that *Scheduler) Pending() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.timers)
}

func (that *Scheduler) Stop() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.stopped = true
	for id, timer := range that.timers {
		timer.Stop()
		delete(that.timers, id)
	}
}
