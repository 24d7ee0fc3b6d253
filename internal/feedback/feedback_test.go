package feedback

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/snaprise/internal/constants"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTerminalSignal(t *testing.T) {
	var buf syncBuffer
	term := NewTerminal(&buf)

	term.Signal(constants.FeedbackFailure)
	if got := buf.String(); got != "\a\a" {
		t.Errorf("failure signal wrote %q, want two bells", got)
	}
	term.Signal("unknown")
	if got := buf.String(); got != "\a\a" {
		t.Errorf("unknown signal wrote output: %q", got)
	}
}

func TestTerminalRinger(t *testing.T) {
	var buf syncBuffer
	term := NewTerminal(&buf)
	term.interval = 5 * time.Millisecond

	term.Start(RingOptions{Sound: true})
	term.Start(RingOptions{Sound: true})
	time.Sleep(30 * time.Millisecond)
	term.Stop()
	term.Stop()

	rung := strings.Count(buf.String(), "\a")
	if rung < 2 {
		t.Errorf("ringer rang %d times, want repeated bells", rung)
	}

	time.Sleep(20 * time.Millisecond)
	if after := strings.Count(buf.String(), "\a"); after != rung {
		t.Errorf("ringer kept ringing after Stop: %d -> %d", rung, after)
	}
}

func TestTerminalSilentWhenSoundOff(t *testing.T) {
	var buf syncBuffer
	term := NewTerminal(&buf)
	term.interval = 5 * time.Millisecond

	term.Start(RingOptions{Sound: false, Vibration: true})
	time.Sleep(15 * time.Millisecond)
	term.Stop()
	if buf.String() != "" {
		t.Errorf("ringer made sound with sound disabled: %q", buf.String())
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Start(RingOptions{Sound: true})
	r.Start(RingOptions{})
	r.Signal(constants.FeedbackWarning)
	r.Stop()
	r.Stop()

	starts, stops := r.Counts()
	if starts != 1 || stops != 1 {
		t.Errorf("Counts() = %d, %d, want 1, 1", starts, stops)
	}
	if !r.LastOptions().Sound {
		t.Error("LastOptions() lost sound flag")
	}
	if sig := r.Signals(); len(sig) != 1 || sig[0] != constants.FeedbackWarning {
		t.Errorf("Signals() = %v", sig)
	}
}
