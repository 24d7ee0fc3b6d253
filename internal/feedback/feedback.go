// Package feedback signals challenge outcomes and rings the alarm.
package feedback

import (
	"io"
	"sync"
	"time"

	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/logger"
)

// Device delivers one-shot haptic or audio cues. Signal never blocks on the
// hardware and never fails.
type Device interface {
	Signal(kind constants.FeedbackKind)
}

type RingOptions struct {
	Sound     bool
	Vibration bool
}

// Ringer plays the alarm until stopped. Start while ringing and Stop while
// silent are no-ops.
type Ringer interface {
	Start(opts RingOptions)
	Stop()
}

// bell patterns per feedback kind
var patterns = map[constants.FeedbackKind]string{
	constants.FeedbackSuccess: "\a",
	constants.FeedbackFailure: "\a\a",
	constants.FeedbackWarning: "\a",
}

// Terminal rings the terminal bell. Vibration has no terminal equivalent
// and is only logged.
type Terminal struct {
	mu       sync.Mutex
	w        io.Writer
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, interval: 1500 * time.Millisecond}
}

func (t *Terminal) Signal(kind constants.FeedbackKind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := patterns[kind]; ok {
		_, _ = io.WriteString(t.w, p)
	}
	logger.Debug("Feedback signal", "kind", kind)
}

func (t *Terminal) Start(opts RingOptions) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return
	}
	if opts.Vibration {
		logger.Debug("Vibration requested; not supported on this device")
	}
	if !opts.Sound {
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	t.stop, t.done = stop, done
	go func() {
		defer close(done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		t.ring()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				t.ring()
			}
		}
	}()
}

func (t *Terminal) ring() {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, "\a")
}

func (t *Terminal) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Recorder captures signals and ringer transitions for tests.
type Recorder struct {
	mu      sync.Mutex
	signals []constants.FeedbackKind
	ringing bool
	starts  int
	stops   int
	last    RingOptions
}

func (r *Recorder) Signal(kind constants.FeedbackKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, kind)
}

func (r *Recorder) Start(opts RingOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ringing {
		return
	}
	r.ringing = true
	r.starts++
	r.last = opts
}

func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ringing {
		return
	}
	r.ringing = false
	r.stops++
}

func (r *Recorder) Signals() []constants.FeedbackKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]constants.FeedbackKind(nil), r.signals...)
}

func (r *Recorder) Ringing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ringing
}

// Counts returns how many times the ringer started and stopped.
func (r *Recorder) Counts() (starts, stops int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts, r.stops
}

func (r *Recorder) LastOptions() RingOptions {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
