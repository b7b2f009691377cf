package utils

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Spinner is the progress indicator shown while a blocking call runs,
// e.g. while the camera is opening.
type Spinner struct {
	mu         sync.Mutex
	delay      time.Duration
	writer     io.Writer
	message    string
	lastOutput string
	StopMsg    string
	animate    bool
	running    bool
	stopChan   chan struct{}
	doneChan   chan struct{}
}

// NewSpinner instantiates a new progress indicator writing to stderr.
// The animation is turned off when stderr is not a terminal; the message
// is then printed once.
func NewSpinner(msg string, d time.Duration) *Spinner {
	return &Spinner{
		delay:   d,
		writer:  os.Stderr,
		message: msg,
		animate: IsTerminal(),
	}
}

// SetWriter redirects the spinner output.
func (s *Spinner) SetWriter(w io.Writer, animate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writer = w
	s.animate = animate
}

// Start starts the progress indicator.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	if !s.animate {
		fmt.Fprintln(s.writer, s.message)
		return
	}
	if runtime.GOOS != "windows" {
		// hides the cursor
		fmt.Fprint(s.writer, "\033[?25l")
	}

	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	go s.spin()
}

func (s *Spinner) spin() {
	defer close(s.doneChan)

	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for {
		for _, r := range `⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏` {
			s.mu.Lock()
			output := fmt.Sprintf("\r%s%s %c%s", s.message, SuccessColor, r, DefaultColor)
			fmt.Fprint(s.writer, output)
			s.lastOutput = output
			s.mu.Unlock()

			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
			}
		}
	}
}

// Stop stops the progress indicator and prints StopMsg, if any.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	animated := s.stopChan != nil
	s.mu.Unlock()

	if animated {
		close(s.stopChan)
		<-s.doneChan
		s.stopChan, s.doneChan = nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if animated {
		s.clear()
		s.restoreCursor()
	}
	if len(s.StopMsg) > 0 {
		fmt.Fprint(s.writer, s.StopMsg)
	}
}

// RestoreCursor restores back the cursor visibility.
func (s *Spinner) RestoreCursor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreCursor()
}

func (s *Spinner) restoreCursor() {
	if s.animate && runtime.GOOS != "windows" {
		// makes the cursor visible
		fmt.Fprint(s.writer, "\033[?25h")
	}
}

// clear deletes the last line. Caller must hold the locker.
func (s *Spinner) clear() {
	n := utf8.RuneCountInString(s.lastOutput)
	if runtime.GOOS == "windows" {
		clearString := "\r" + strings.Repeat(" ", n) + "\r"
		fmt.Fprint(s.writer, clearString)
		s.lastOutput = ""
		return
	}
	fmt.Fprint(s.writer, "\r\033[K") // clear line
	s.lastOutput = ""
}
