package schedule

import (
	"context"
	stderrors "errors"
	"testing"
	"time"
)

// fakeClock advances only when told, making budget checks deterministic.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestFrameSchedulerDrainsWithinBudget(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewFrameScheduler(10 * time.Millisecond)
	s.now = clock.now

	var ran []int
	for i := 0; i < 5; i++ {
		i := i
		s.Enqueue(func() {
			ran = append(ran, i)
			clock.advance(4 * time.Millisecond)
		})
	}

	// 10ms budget, 4ms per task: three tasks run (the third crosses the
	// deadline), two defer to the next tick.
	if got := s.Tick(); got != 3 {
		t.Fatalf("first Tick ran %d tasks, want 3", got)
	}
	if s.Pending() != 2 {
		t.Fatalf("Pending = %d, want 2 deferred", s.Pending())
	}

	if got := s.Tick(); got != 2 {
		t.Fatalf("second Tick ran %d tasks, want 2", got)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", s.Pending())
	}

	// FIFO order preserved across ticks.
	for i, v := range ran {
		if v != i {
			t.Fatalf("execution order %v, want FIFO", ran)
		}
	}
}

func TestFrameSchedulerOversizedTaskStillRuns(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewFrameScheduler(time.Millisecond)
	s.now = clock.now

	ran := 0
	s.Enqueue(func() { ran++; clock.advance(50 * time.Millisecond) })
	s.Enqueue(func() { ran++ })

	s.Tick()
	if ran != 1 || s.Pending() != 1 {
		t.Errorf("oversized task: ran=%d pending=%d, want 1 and 1", ran, s.Pending())
	}
}

func TestFrameSchedulerRecurring(t *testing.T) {
	s := NewFrameScheduler(DefaultFrameBudget)

	ticks := 0
	s.AddRecurring(func() { ticks++ })

	s.Tick()
	s.Tick()
	s.Tick()
	if ticks != 3 {
		t.Errorf("recurring task ran %d times over 3 ticks, want 3", ticks)
	}
}

func TestTimerSchedulerOrdering(t *testing.T) {
	base := time.Unix(1000, 0)
	clock := &fakeClock{t: base}
	s := NewTimerScheduler()
	s.now = clock.now

	var order []string
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			order = append(order, name)
			return nil
		}
	}

	s.Schedule("late", 20*time.Millisecond, Urgent, 0, record("late"))
	s.Schedule("early-low", 5*time.Millisecond, Low, 0, record("early-low"))
	s.Schedule("early-high", 5*time.Millisecond, High, 0, record("early-high"))

	clock.advance(5 * time.Millisecond)
	s.Advance(clock.t)
	if len(order) != 2 || order[0] != "early-high" || order[1] != "early-low" {
		t.Fatalf("order after 5ms = %v, want [early-high early-low]", order)
	}

	// Not yet due.
	if res := s.Advance(clock.t); len(res) != 0 {
		t.Fatalf("nothing further should be due, got %v", res)
	}

	clock.advance(15 * time.Millisecond)
	results := s.Advance(clock.t)
	if len(results) != 1 || results[0].Name != "late" {
		t.Fatalf("results = %v, want [late]", results)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want empty schedule", s.Len())
	}
}

func TestTimerSchedulerRecurring(t *testing.T) {
	base := time.Unix(1000, 0)
	clock := &fakeClock{t: base}
	s := NewTimerScheduler()
	s.now = clock.now

	runs := 0
	s.Every("pulse", 10*time.Millisecond, Normal, 0, func(context.Context) error {
		runs++
		return nil
	})

	for i := 0; i < 3; i++ {
		clock.advance(10 * time.Millisecond)
		s.Advance(clock.t)
	}
	if runs != 3 {
		t.Errorf("recurring task ran %d times, want 3", runs)
	}
	if s.Len() != 1 {
		t.Errorf("recurring task should stay scheduled, Len = %d", s.Len())
	}
}

func TestTimerSchedulerTimeout(t *testing.T) {
	s := NewTimerScheduler()

	s.Schedule("stalls", 0, Normal, 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	results := s.Advance(time.Now().Add(time.Millisecond))
	if len(results) != 1 {
		t.Fatalf("results = %v, want one entry", results)
	}
	if !results[0].TimedOut() {
		t.Errorf("stalled task should convert to a TIMEOUT failure, got %v", results[0].Err)
	}
}

func TestTimerSchedulerTaskError(t *testing.T) {
	s := NewTimerScheduler()
	sentinel := stderrors.New("task failed")

	s.Schedule("fails", 0, Normal, time.Second, func(context.Context) error {
		return sentinel
	})

	results := s.Advance(time.Now().Add(time.Millisecond))
	if len(results) != 1 || !stderrors.Is(results[0].Err, sentinel) {
		t.Errorf("results = %v, want wrapped sentinel error", results)
	}
	if results[0].TimedOut() {
		t.Error("a plain failure is not a timeout")
	}
}

func TestTimerSchedulerRunCancellation(t *testing.T) {
	s := NewTimerScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx, nil); !stderrors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}
