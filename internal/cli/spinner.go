package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// spinnerFrames walks a quadrant block around a cell, one corner per tick.
var spinnerFrames = []string{"▘", "▝", "▗", "▖"}

const spinnerTick = 120 * time.Millisecond

// Spinner renders an in-place progress indicator on stderr while a slow
// operation (store round-trip, file write) runs. Stopping is idempotent,
// and a cancelled parent context stops the animation on its own.
type Spinner struct {
	out      io.Writer
	message  string
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext ties the spinner's lifetime to ctx in addition to
// explicit Stop calls.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		out:     os.Stderr,
		message: message,
		ctx:     spinCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start launches the animation goroutine. It returns immediately.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerTick)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.render(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) render(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
}

// Stop halts the animation and clears the line. Safe to call more than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		close(s.done)
	})
	<-s.stopped
	s.clearLine()
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// StopWithSuccess replaces the spinner line with a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError replaces the spinner line with an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context ended before Stop.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
