package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line with the elapsed time until it is stopped
// or its parent context ends.
type spinner struct {
	w       io.Writer
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once

	mu      sync.Mutex
	message string
	started time.Time
	drawn   int // widest line drawn so far, in cells
}

// newSpinner returns a spinner that draws on stderr.
func newSpinner(ctx context.Context, message string) *spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *spinner {
	inner, cancel := context.WithCancel(ctx)
	return &spinner{
		w:       w,
		parent:  ctx,
		ctx:     inner,
		cancel:  cancel,
		stopped: make(chan struct{}),
		message: message,
	}
}

// Start draws the first frame and begins the animation.
func (s *spinner) Start() {
	s.mu.Lock()
	s.started = time.Now()
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			s.draw(spinnerFrames[i%len(spinnerFrames)])
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Update replaces the message shown next to the spinner.
func (s *spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop ends the animation, clears the line and returns how long the
// spinner ran. Calling Stop more than once is safe.
func (s *spinner) Stop() time.Duration {
	s.once.Do(func() {
		s.cancel()
		s.mu.Lock()
		started := !s.started.IsZero()
		s.mu.Unlock()
		if started {
			<-s.stopped
		}
		s.clear()
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started.IsZero() {
		return 0
	}
	return time.Since(s.started)
}

// StopWithError stops the spinner and prints message as an error.
func (s *spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the parent context ended.
func (s *spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Since(s.started).Truncate(100 * time.Millisecond)
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(fmt.Sprintf("%s %s", s.message, elapsed))
	s.drawn = max(s.drawn, lipgloss.Width(line))
	fmt.Fprintf(s.w, "\r%s", line)
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.drawn))
	}
}
