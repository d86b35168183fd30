package schedule

import (
	"container/heap"
	"context"
	"time"

	"github.com/kciter/pegboard-sub000/pkg/errors"
)

// Priority orders due tasks: when several tasks are due at the same instant,
// the more urgent one runs first.
type Priority int

// Task priorities.
const (
	Low Priority = iota
	Normal
	High
	Urgent
)

// TaskResult reports one task execution.
type TaskResult struct {
	Name     string
	Err      error
	Duration time.Duration
}

// TimedOut reports whether the task was abandoned by its per-task timeout.
func (r TaskResult) TimedOut() bool {
	return errors.Is(r.Err, errors.ErrCodeTimeout)
}

// task is one scheduled unit of work.
type task struct {
	name     string
	fn       func(context.Context) error
	runAt    time.Time
	priority Priority
	interval time.Duration // > 0 for recurring tasks
	timeout  time.Duration // > 0 converts a stalled run into a failure
	seq      uint64        // insertion order tiebreak
	index    int           // heap bookkeeping
}

// taskHeap orders tasks by (runAt, priority desc, seq).
type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if !h[i].runAt.Equal(h[j].runAt) {
		return h[i].runAt.Before(h[j].runAt)
	}
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// TimerScheduler executes delayed and recurring tasks. Advance drives it
// deterministically with an explicit clock; Run drives it from wall time.
// Not safe for concurrent use.
type TimerScheduler struct {
	heap taskHeap
	seq  uint64
	now  func() time.Time // injectable for tests
}

// NewTimerScheduler creates an empty timer scheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{now: time.Now}
}

// Schedule queues fn to run once after delay. A timeout > 0 abandons a
// stalled run and reports a TIMEOUT failure instead of blocking forever.
func (s *TimerScheduler) Schedule(name string, delay time.Duration, p Priority, timeout time.Duration, fn func(context.Context) error) {
	s.add(name, delay, 0, p, timeout, fn)
}

// Every queues fn to run repeatedly at the given interval, first after one
// interval. The task reschedules itself after every run, including failed
// ones.
func (s *TimerScheduler) Every(name string, interval time.Duration, p Priority, timeout time.Duration, fn func(context.Context) error) {
	if interval <= 0 {
		return
	}
	s.add(name, interval, interval, p, timeout, fn)
}

func (s *TimerScheduler) add(name string, delay, interval time.Duration, p Priority, timeout time.Duration, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	s.seq++
	heap.Push(&s.heap, &task{
		name:     name,
		fn:       fn,
		runAt:    s.now().Add(delay),
		priority: p,
		interval: interval,
		timeout:  timeout,
		seq:      s.seq,
	})
}

// Len returns the number of scheduled tasks.
func (s *TimerScheduler) Len() int { return len(s.heap) }

// NextDue returns the earliest scheduled run time. The second return value
// is false when nothing is scheduled.
func (s *TimerScheduler) NextDue() (time.Time, bool) {
	if len(s.heap) == 0 {
		return time.Time{}, false
	}
	return s.heap[0].runAt, true
}

// Advance runs every task due at or before now, in (due time, priority)
// order, and returns their results. Recurring tasks are rescheduled
// relative to now.
func (s *TimerScheduler) Advance(now time.Time) []TaskResult {
	var results []TaskResult
	for len(s.heap) > 0 && !s.heap[0].runAt.After(now) {
		t := heap.Pop(&s.heap).(*task)
		results = append(results, s.runTask(t))
		if t.interval > 0 {
			t.runAt = now.Add(t.interval)
			s.seq++
			t.seq = s.seq
			heap.Push(&s.heap, t)
		}
	}
	return results
}

// runTask executes one task, enforcing its timeout. A timed-out task keeps
// running in the background until its context cancels it, but its slot in
// the schedule is released immediately with a TIMEOUT result.
func (s *TimerScheduler) runTask(t *task) TaskResult {
	start := s.now()

	if t.timeout <= 0 {
		err := t.fn(context.Background())
		return TaskResult{Name: t.name, Err: err, Duration: s.now().Sub(start)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- t.fn(ctx) }()

	select {
	case err := <-done:
		return TaskResult{Name: t.name, Err: err, Duration: s.now().Sub(start)}
	case <-ctx.Done():
		return TaskResult{
			Name:     t.name,
			Err:      errors.New(errors.ErrCodeTimeout, "task %q exceeded its %s timeout", t.name, t.timeout),
			Duration: s.now().Sub(start),
		}
	}
}

// Run drives the scheduler from wall time until ctx is cancelled, sleeping
// until the next task is due. Results are delivered to onResult when it is
// non-nil.
func (s *TimerScheduler) Run(ctx context.Context, onResult func(TaskResult)) error {
	const idlePoll = 50 * time.Millisecond

	for {
		wait := idlePoll
		if due, ok := s.NextDue(); ok {
			if d := time.Until(due); d < wait {
				wait = d
			}
		}
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		for _, res := range s.Advance(time.Now()) {
			if onResult != nil {
				onResult(res)
			}
		}
	}
}
