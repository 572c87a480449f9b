package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// spinnerFrames are the braille animation frames.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is a line-rewriting progress indicator for long operations.
// Only start one on a terminal; piped output should skip it.
type Spinner struct {
	w      io.Writer
	msg    string
	styles *Styles

	stop chan struct{}
	done sync.WaitGroup
	once sync.Once
}

// NewSpinner creates a spinner writing to the renderer's output.
func (r *Renderer) NewSpinner(msg string) *Spinner {
	return &Spinner{
		w:      r.out,
		msg:    msg,
		styles: r.styles,
		stop:   make(chan struct{}),
	}
}

// Start begins the animation. Call Success, Fail, or Stop to end it.
func (s *Spinner) Start() {
	s.done.Add(1)
	go func() {
		defer s.done.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				_, _ = fmt.Fprintf(s.w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], s.msg)
				i++
			}
		}
	}()
}

// Success stops the spinner and prints a success line in its place.
func (s *Spinner) Success(msg string) {
	s.finish(s.styles.Success.Render("✓"), msg)
}

// Fail stops the spinner and prints a failure line in its place.
func (s *Spinner) Fail(msg string) {
	s.finish(s.styles.Error.Render("✗"), msg)
}

// Stop halts the animation and clears the line without printing.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
		s.done.Wait()
		_, _ = fmt.Fprint(s.w, "\r\033[K")
	})
}

func (s *Spinner) finish(marker, msg string) {
	s.once.Do(func() {
		close(s.stop)
		s.done.Wait()
		_, _ = fmt.Fprintf(s.w, "\r\033[K%s %s\n", marker, msg)
	})
}
