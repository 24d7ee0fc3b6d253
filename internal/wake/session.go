// Package wake runs the state machine for a firing alarm: ringing, snooze
// limits, buddy-mode lockout and challenge completion.
package wake

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/snaprise/internal/challenge"
	"github.com/julianstephens/snaprise/internal/clock"
	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/feedback"
	"github.com/julianstephens/snaprise/internal/logger"
	"github.com/julianstephens/snaprise/internal/models"
)

var (
	ErrNotSucceeded    = errors.New("challenge has not been completed")
	ErrSessionEnded    = errors.New("wake session has ended")
	ErrNoChallenge     = errors.New("no challenge in progress")
	ErrResolverMissing = errors.New("wake session has no challenge resolver")
)

type SnoozeResult int

const (
	SnoozeAccepted SnoozeResult = iota
	SnoozeRejectedBuddy
	SnoozeExhausted
	SnoozeUnavailable
)

func (r SnoozeResult) String() string {
	switch r {
	case SnoozeAccepted:
		return "snoozed"
	case SnoozeRejectedBuddy:
		return "snooze disabled in buddy mode"
	case SnoozeExhausted:
		return "no snoozes left"
	case SnoozeUnavailable:
		return "snooze unavailable"
	}
	return "unknown"
}

type Options struct {
	Settings  models.Settings
	BuddyMode bool
	Resolver  *challenge.Resolver
	Clock     clock.Clock
	Device    feedback.Device
	Ringer    feedback.Ringer
	// OnChange runs after a timer changes the session, outside the lock.
	OnChange func()
}

// Session is the ephemeral runtime state of one firing alarm. All methods
// are safe for concurrent use; timer callbacks from cancelled timers are
// discarded.
type Session struct {
	mu    sync.Mutex
	alarm models.Alarm
	opts  Options

	snoozeCount    int
	snoozeDisabled bool
	snoozedUntil   time.Time
	ringing        bool
	dismissed      bool
	closed         bool
	challenge      *challenge.Instance

	gen      uint64
	resume   clock.Timer
	deadline clock.Timer
}

type nopDevice struct{}

func (nopDevice) Signal(constants.FeedbackKind) {}
func (nopDevice) Start(feedback.RingOptions)    {}
func (nopDevice) Stop()                         {}

// New starts ringing for alarm.
func New(alarm models.Alarm, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Device == nil {
		opts.Device = nopDevice{}
	}
	if opts.Ringer == nil {
		opts.Ringer = nopDevice{}
	}
	if opts.Settings == (models.Settings{}) {
		opts.Settings = models.DefaultSettings()
	}

	s := &Session{alarm: alarm, opts: opts}
	s.startRinging()
	logger.Info("Wake session started", "alarm", alarm.ID, "buddy_mode", opts.BuddyMode)
	return s
}

func (s *Session) ringOptions() feedback.RingOptions {
	return feedback.RingOptions{
		Sound:     s.opts.Settings.SoundEnabled,
		Vibration: s.opts.Settings.VibrationEnabled,
	}
}

// startRinging. Caller holds s.mu or owns s exclusively.
func (s *Session) startRinging() {
	s.ringing = true
	s.snoozedUntil = time.Time{}
	s.opts.Ringer.Start(s.ringOptions())
	s.opts.Device.Signal(constants.FeedbackWarning)
}

func (s *Session) stopRinging() {
	if s.ringing {
		s.opts.Ringer.Stop()
	}
	s.ringing = false
}

func (s *Session) ended() bool {
	return s.closed || s.dismissed
}

// cancelTimers stops both timers and invalidates callbacks already in flight.
func (s *Session) cancelTimers() {
	s.gen++
	for _, t := range []clock.Timer{s.resume, s.deadline} {
		if t != nil {
			t.Stop()
		}
	}
	s.resume, s.deadline = nil, nil
}

// after arms fn to run under s.mu after d, unless the timers are cancelled
// first. Caller holds s.mu and stores the returned timer.
func (s *Session) after(d time.Duration, fn func()) clock.Timer {
	gen := s.gen
	t := s.opts.Clock.AfterFunc(d, func() {
		s.mu.Lock()
		if s.gen != gen || s.ended() {
			s.mu.Unlock()
			return
		}
		fn()
		s.mu.Unlock()
		if s.opts.OnChange != nil {
			s.opts.OnChange()
		}
	})
	return t
}

// Snooze silences the alarm for the configured delay, at most twice per
// session. Buddy mode refuses every snooze.
func (s *Session) Snooze() SnoozeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.BuddyMode {
		logger.Info("Snooze rejected in buddy mode", "alarm", s.alarm.ID)
		return SnoozeRejectedBuddy
	}
	if s.ended() || s.challenge != nil {
		return SnoozeUnavailable
	}
	if s.snoozeDisabled {
		return SnoozeExhausted
	}
	if s.snoozeCount >= constants.MaxSnoozes {
		s.snoozeDisabled = true
		logger.Info("Snooze limit reached", "alarm", s.alarm.ID)
		return SnoozeExhausted
	}

	s.snoozeCount++
	s.stopRinging()
	// a snooze during a snooze restarts the delay
	s.cancelTimers()
	delay := s.opts.Settings.SnoozeDelay()
	s.snoozedUntil = s.opts.Clock.Now().Add(delay)
	s.resume = s.after(delay, func() {
		s.resume = nil
		s.startRinging()
	})
	logger.Info("Alarm snoozed", "alarm", s.alarm.ID, "count", s.snoozeCount, "delay", delay)
	return SnoozeAccepted
}

// BeginChallenge stops ringing for good and starts the alarm's challenge.
// A barcode alarm without a stored code gets a riddle instead.
func (s *Session) BeginChallenge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended() {
		return ErrSessionEnded
	}
	if s.challenge != nil {
		return nil
	}
	if s.opts.Resolver == nil {
		return ErrResolverMissing
	}

	now := s.opts.Clock.Now()
	c, err := s.opts.Resolver.Start(ctx, s.alarm, now)
	if errors.Is(err, challenge.ErrNoBarcode) {
		logger.Warn("No barcode stored for alarm, falling back to a riddle", "alarm", s.alarm.ID)
		c = s.opts.Resolver.StartRiddle(ctx, s.alarm.ID, s.opts.Settings.DefaultDifficulty, now)
		c.Fallback = true
	} else if err != nil {
		return err
	}

	s.stopRinging()
	s.snoozeDisabled = true
	s.snoozedUntil = time.Time{}
	s.cancelTimers()
	s.challenge = c
	s.armDeadline()
	return nil
}

// armDeadline schedules the timeout for the current challenge. Caller holds s.mu.
func (s *Session) armDeadline() {
	c := s.challenge
	s.deadline = s.after(c.Remaining(s.opts.Clock.Now()), func() {
		s.deadline = nil
		s.opts.Resolver.OnTimeout(c, s.opts.Clock.Now())
		s.opts.Device.Signal(constants.FeedbackWarning)
		if c.State == constants.ChallengeInProgress {
			s.armDeadline()
		}
	})
}

func (s *Session) active() (*challenge.Instance, bool) {
	if s.ended() || s.challenge == nil {
		return nil, false
	}
	return s.challenge, true
}

func (s *Session) signalResult(ok bool) {
	if ok {
		s.cancelTimers()
		s.opts.Device.Signal(constants.FeedbackSuccess)
		return
	}
	s.opts.Device.Signal(constants.FeedbackFailure)
}

// SubmitBarcode feeds a decoded scan into the challenge.
func (s *Session) SubmitBarcode(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.active()
	if !ok || c.Kind != constants.ChallengeBarcode || c.State != constants.ChallengeInProgress {
		return false
	}
	passed := s.opts.Resolver.SubmitBarcode(c, code)
	s.signalResult(passed)
	return passed
}

// SubmitAnswer feeds a riddle answer into the challenge. Blank answers are
// ignored.
func (s *Session) SubmitAnswer(answer string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.active()
	if !ok || c.Kind != constants.ChallengeRiddle || c.State != constants.ChallengeInProgress {
		return false
	}
	if strings.TrimSpace(answer) == "" {
		return false
	}
	passed := s.opts.Resolver.SubmitRiddleAnswer(c, answer)
	s.signalResult(passed)
	return passed
}

// Skip replaces the current riddle. The deadline keeps running.
func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.active()
	if !ok {
		return ErrNoChallenge
	}
	return s.opts.Resolver.Skip(c)
}

// AcceptFallback switches a timed-out barcode challenge to a riddle.
func (s *Session) AcceptFallback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.active()
	if !ok {
		return ErrNoChallenge
	}
	if err := s.opts.Resolver.AcceptFallback(c, s.opts.Clock.Now()); err != nil {
		return err
	}
	s.cancelTimers()
	s.armDeadline()
	return nil
}

// Dismiss ends the session once the challenge has been passed.
func (s *Session) Dismiss() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionEnded
	}
	if s.challenge == nil || s.challenge.State != constants.ChallengeSucceeded {
		return ErrNotSucceeded
	}
	s.dismissed = true
	s.cancelTimers()
	s.stopRinging()
	logger.Info("Alarm dismissed", "alarm", s.alarm.ID, "snoozes", s.snoozeCount)
	return nil
}

// Close tears the session down. It is idempotent, and no timer callback
// changes the session afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancelTimers()
	s.stopRinging()
}

// State is a point-in-time copy of a session for display.
type State struct {
	Alarm          models.Alarm
	Ringing        bool
	SnoozeCount    int
	SnoozeDisabled bool
	SnoozedUntil   time.Time
	BuddyMode      bool
	Dismissed      bool
	Closed         bool
	// Challenge is nil until BeginChallenge.
	Challenge *challenge.Instance
}

func (st State) ChallengeState() constants.ChallengeState {
	if st.Challenge == nil {
		return constants.ChallengeNotStarted
	}
	return st.Challenge.State
}

func (st State) SnoozesLeft() int {
	if st.BuddyMode || st.SnoozeDisabled {
		return 0
	}
	return constants.MaxSnoozes - st.SnoozeCount
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Alarm:          s.alarm,
		Ringing:        s.ringing,
		SnoozeCount:    s.snoozeCount,
		SnoozeDisabled: s.snoozeDisabled,
		SnoozedUntil:   s.snoozedUntil,
		BuddyMode:      s.opts.BuddyMode,
		Dismissed:      s.dismissed,
		Closed:         s.closed,
	}
	if s.challenge != nil {
		c := *s.challenge
		st.Challenge = &c
	}
	return st
}

// Now returns the session clock's current time.
func (s *Session) Now() time.Time {
	return s.opts.Clock.Now()
}
