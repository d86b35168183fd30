// Package schedule provides the cooperative schedulers that throttle
// expensive recomputation: a frame scheduler that drains queued work inside
// a fixed per-tick time budget, and a timer scheduler that runs delayed or
// recurring tasks from a priority queue with per-task timeouts.
//
// Neither scheduler parallelizes anything. They exist to bound how much work
// happens per rendering tick, deferring the excess to the next one.
package schedule

import (
	"time"
)

// DefaultFrameBudget is the per-tick execution budget, matching a 60 Hz
// rendering tick.
const DefaultFrameBudget = 16 * time.Millisecond

// FrameScheduler drains queued one-shot work and runs recurring tasks once
// per tick, stopping when the tick's time budget is spent. Excess queued
// work carries over to the next tick. Not safe for concurrent use.
type FrameScheduler struct {
	budget    time.Duration
	queue     []func()
	recurring []func()
	now       func() time.Time // injectable for tests
}

// NewFrameScheduler creates a scheduler with the given per-tick budget. A
// non-positive budget falls back to DefaultFrameBudget.
func NewFrameScheduler(budget time.Duration) *FrameScheduler {
	if budget <= 0 {
		budget = DefaultFrameBudget
	}
	return &FrameScheduler{budget: budget, now: time.Now}
}

// Enqueue adds a one-shot task to the back of the queue.
func (s *FrameScheduler) Enqueue(fn func()) {
	if fn != nil {
		s.queue = append(s.queue, fn)
	}
}

// AddRecurring registers a task that runs once on every tick, before queued
// work. Recurring tasks share the tick budget with the queue.
func (s *FrameScheduler) AddRecurring(fn func()) {
	if fn != nil {
		s.recurring = append(s.recurring, fn)
	}
}

// Pending returns the number of queued one-shot tasks.
func (s *FrameScheduler) Pending() int { return len(s.queue) }

// Tick runs recurring tasks and then drains queued work until the budget is
// exhausted. It returns the number of tasks executed. Work that does not
// fit stays queued for the next tick; at least one queued task runs per
// tick so a single oversized task cannot stall the queue forever.
func (s *FrameScheduler) Tick() int {
	deadline := s.now().Add(s.budget)
	ran := 0

	for _, fn := range s.recurring {
		fn()
		ran++
		if !s.now().Before(deadline) {
			return ran
		}
	}

	for len(s.queue) > 0 {
		fn := s.queue[0]
		s.queue = s.queue[1:]
		fn()
		ran++
		if !s.now().Before(deadline) {
			break
		}
	}
	return ran
}
