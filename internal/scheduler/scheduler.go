// Package scheduler arms timers for active alarms. It stands in for the
// operating system's alarm service and only fires while the process runs.
package scheduler

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/julianstephens/snaprise/internal/clock"
	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/logger"
)

var (
	ErrNoDays          = errors.New("trigger has no active days")
	ErrInvalidTime     = errors.New("invalid trigger time")
	ErrSchedulerClosed = errors.New("scheduler is closed")
)

// TriggerSpec describes a weekly repeating trigger.
type TriggerSpec struct {
	AlarmID string
	Time    string // HH:MM
	Days    []time.Weekday
}

// Handle identifies one armed trigger.
type Handle string

type Scheduler interface {
	Schedule(spec TriggerSpec) (Handle, error)
	Cancel(h Handle) error
}

// NextTrigger returns the first instant strictly after `after` that falls
// on one of days at the given HH:MM, in after's location.
func NextTrigger(hhmm string, days []time.Weekday, after time.Time) (time.Time, error) {
	if len(days) == 0 {
		return time.Time{}, ErrNoDays
	}
	t, err := time.Parse(constants.TimeFormat, hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidTime, hhmm, err)
	}

	loc := after.Location()
	y, m, d := after.Date()
	// today plus seven days covers "same weekday, next week"
	for i := 0; i <= 7; i++ {
		candidate := time.Date(y, m, d+i, t.Hour(), t.Minute(), 0, 0, loc)
		if candidate.After(after) && slices.Contains(days, candidate.Weekday()) {
			return candidate, nil
		}
	}
	return time.Time{}, fmt.Errorf("no trigger found for days %v", days)
}

// FireFunc receives the alarm id and the scheduled instant of each firing.
type FireFunc func(alarmID string, at time.Time)

type entry struct {
	spec  TriggerSpec
	next  time.Time
	timer clock.Timer
}

// Local is an in-process Scheduler. After each firing the trigger re-arms
// for its next weekday occurrence.
type Local struct {
	mu      sync.Mutex
	clock   clock.Clock
	onFire  FireFunc
	entries map[Handle]*entry
	seq     int
	closed  bool
}

func NewLocal(clk clock.Clock, onFire FireFunc) *Local {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Local{
		clock:   clk,
		onFire:  onFire,
		entries: make(map[Handle]*entry),
	}
}

func (s *Local) Schedule(spec TriggerSpec) (Handle, error) {
	spec.Days = slices.Clone(spec.Days)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrSchedulerClosed
	}

	next, err := NextTrigger(spec.Time, spec.Days, s.clock.Now())
	if err != nil {
		return "", err
	}

	s.seq++
	h := Handle(spec.AlarmID + "#" + strconv.Itoa(s.seq))
	e := &entry{spec: spec}
	s.entries[h] = e
	s.arm(h, e, next)

	logger.Debug("Scheduled alarm", "alarm", spec.AlarmID, "next", next.Format(time.RFC3339))
	return h, nil
}

// arm starts the timer for e. Caller holds s.mu.
func (s *Local) arm(h Handle, e *entry, next time.Time) {
	e.next = next
	e.timer = s.clock.AfterFunc(next.Sub(s.clock.Now()), func() {
		s.fire(h, e)
	})
}

func (s *Local) fire(h Handle, e *entry) {
	s.mu.Lock()
	// A cancelled or replaced entry may still have a timer in flight
	if s.closed || s.entries[h] != e {
		s.mu.Unlock()
		return
	}
	at := e.next
	if next, err := NextTrigger(e.spec.Time, e.spec.Days, at); err == nil {
		s.arm(h, e, next)
	} else {
		logger.Error("Failed to re-arm alarm", "alarm", e.spec.AlarmID, "error", err)
		delete(s.entries, h)
	}
	onFire := s.onFire
	s.mu.Unlock()

	logger.Info("Alarm fired", "alarm", e.spec.AlarmID, "at", at.Format(time.RFC3339))
	if onFire != nil {
		onFire(e.spec.AlarmID, at)
	}
}

// Cancel disarms h. Cancelling an unknown or already cancelled handle is a no-op.
func (s *Local) Cancel(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h]
	if !ok {
		return nil
	}
	e.timer.Stop()
	delete(s.entries, h)
	logger.Debug("Cancelled alarm", "alarm", e.spec.AlarmID)
	return nil
}

// Next reports when h fires next.
func (s *Local) Next(h Handle) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h]
	if !ok {
		return time.Time{}, false
	}
	return e.next, true
}

// Len returns the number of armed triggers.
func (s *Local) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close cancels every trigger. Later Schedule calls fail.
func (s *Local) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, e := range s.entries {
		e.timer.Stop()
		delete(s.entries, h)
	}
	s.closed = true
}

// Nop validates triggers without arming anything. One-shot CLI commands use
// it; `snaprise watch` owns the real timers.
type Nop struct{}

func (Nop) Schedule(spec TriggerSpec) (Handle, error) {
	if _, err := NextTrigger(spec.Time, spec.Days, time.Now()); err != nil {
		return "", err
	}
	return Handle(spec.AlarmID), nil
}

func (Nop) Cancel(Handle) error { return nil }
