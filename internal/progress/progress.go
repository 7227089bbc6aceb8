// Package progress shows a spinner on stderr while a model call is in flight.
// Output never goes to stdout so piped results stay clean.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Spinner animates a label until Stop is called. A disabled spinner is a no-op.
type Spinner struct {
	Label   string
	Enabled bool

	w       io.Writer
	mu      sync.Mutex
	done    chan struct{}
	wg      sync.WaitGroup
	running bool
}

// NewSpinner creates a spinner on stderr. It is disabled when quiet is set
// (e.g. --json), when SHEETLENS_NO_PROGRESS=1, or when stderr is not a TTY.
func NewSpinner(label string, quiet bool) *Spinner {
	return &Spinner{
		Label:   label,
		Enabled: !quiet && shouldEnable(),
		w:       os.Stderr,
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Enabled || s.running {
		return
	}
	if s.w == nil {
		s.w = os.Stderr
	}

	s.running = true
	s.done = make(chan struct{})
	s.wg.Add(1)

	go func(done <-chan struct{}) {
		defer s.wg.Done()
		frames := []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r\033[K%c %s", frames[i%len(frames)], s.Label)
				s.mu.Unlock()
			}
		}
	}(s.done)
}

// Stop ends the animation and prints result, if any. Safe to call more than once.
func (s *Spinner) Stop(result string) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()

	if result == "" {
		fmt.Fprint(s.w, "\r\033[K")
		return
	}
	fmt.Fprintf(s.w, "\r\033[K✓ %s\n", result)
}

// Update changes the label while the spinner is running.
func (s *Spinner) Update(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Label = label
}

func shouldEnable() bool {
	if os.Getenv("SHEETLENS_NO_PROGRESS") == "1" {
		return false
	}
	return isTTY()
}

func isTTY() bool {
	stat, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
