package wake

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/julianstephens/snaprise/internal/barcode"
	"github.com/julianstephens/snaprise/internal/challenge"
	"github.com/julianstephens/snaprise/internal/clock"
	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/feedback"
	"github.com/julianstephens/snaprise/internal/models"
	"github.com/julianstephens/snaprise/internal/riddles"
	"github.com/julianstephens/snaprise/internal/storage"
)

var t0 = time.Date(2026, 3, 4, 7, 0, 0, 0, time.UTC)

type harness struct {
	session  *Session
	clock    *clock.Fake
	rec      *feedback.Recorder
	barcodes *barcode.Store
	changes  int
}

func newHarness(t *testing.T, alarm models.Alarm, buddy bool) *harness {
	t.Helper()
	kv := storage.NewMemoryStore()
	h := &harness{
		clock:    clock.NewFake(t0),
		rec:      &feedback.Recorder{},
		barcodes: barcode.NewStore(kv),
	}
	if alarm.Challenge.IsBarcode() {
		if err := h.barcodes.Put(context.Background(), alarm.ID, "ITEM-42"); err != nil {
			t.Fatal(err)
		}
	}
	bank := riddles.NewBank(riddles.WithRand(rand.New(rand.NewPCG(3, 5))))
	h.session = New(alarm, Options{
		Settings:  models.DefaultSettings(),
		BuddyMode: buddy,
		Resolver:  challenge.NewResolver(h.barcodes, bank, nil),
		Clock:     h.clock,
		Device:    h.rec,
		Ringer:    h.rec,
		OnChange:  func() { h.changes++ },
	})
	t.Cleanup(h.session.Close)
	return h
}

func riddleAlarm() models.Alarm {
	return models.Alarm{ID: "r1", Time: "07:00", Days: []time.Weekday{time.Wednesday}, Challenge: models.RiddleChallenge(constants.DifficultyMedium)}
}

func barcodeAlarm() models.Alarm {
	return models.Alarm{ID: "b1", Time: "07:00", Days: []time.Weekday{time.Wednesday}, Challenge: models.BarcodeChallenge()}
}

func TestNewStartsRinging(t *testing.T) {
	h := newHarness(t, riddleAlarm(), false)
	if !h.rec.Ringing() || !h.session.Snapshot().Ringing {
		t.Error("new session is not ringing")
	}
	if opts := h.rec.LastOptions(); !opts.Sound || !opts.Vibration {
		t.Errorf("ring options = %+v, want sound and vibration from defaults", opts)
	}
	if st := h.session.Snapshot(); st.ChallengeState() != constants.ChallengeNotStarted {
		t.Errorf("ChallengeState() = %s, want not started", st.ChallengeState())
	}
}

func TestSnoozeLimit(t *testing.T) {
	h := newHarness(t, riddleAlarm(), false)

	for i := 1; i <= 2; i++ {
		if got := h.session.Snooze(); got != SnoozeAccepted {
			t.Fatalf("snooze %d = %s, want accepted", i, got)
		}
		if h.rec.Ringing() {
			t.Fatalf("still ringing after snooze %d", i)
		}
		h.clock.Advance(constants.DefaultSnoozeDelay)
		if !h.rec.Ringing() {
			t.Fatalf("did not resume ringing after snooze %d delay", i)
		}
	}

	if got := h.session.Snooze(); got != SnoozeExhausted {
		t.Errorf("third snooze = %s, want exhausted", got)
	}
	if got := h.session.Snooze(); got != SnoozeExhausted {
		t.Errorf("fourth snooze = %s, want exhausted (permanent)", got)
	}
	st := h.session.Snapshot()
	if st.SnoozeCount != 2 || !st.SnoozeDisabled || st.SnoozesLeft() != 0 {
		t.Errorf("state = count %d disabled %v left %d", st.SnoozeCount, st.SnoozeDisabled, st.SnoozesLeft())
	}
	if !st.Ringing {
		t.Error("exhausted snooze silenced the alarm")
	}
	if h.changes != 2 {
		t.Errorf("OnChange ran %d times, want 2 resumes", h.changes)
	}
}

func TestSnoozeWhileSnoozed(t *testing.T) {
	h := newHarness(t, riddleAlarm(), false)
	if got := h.session.Snooze(); got != SnoozeAccepted {
		t.Fatalf("first snooze = %s, want accepted", got)
	}
	h.clock.Advance(constants.DefaultSnoozeDelay - time.Second)
	if h.rec.Ringing() {
		t.Error("resumed before snooze delay elapsed")
	}

	if got := h.session.Snooze(); got != SnoozeAccepted {
		t.Fatalf("snooze while snoozed = %s, want accepted", got)
	}
	if h.clock.Pending() != 1 {
		t.Errorf("pending timers = %d, want a single resume", h.clock.Pending())
	}
	want := t0.Add(2*constants.DefaultSnoozeDelay - time.Second)
	if until := h.session.Snapshot().SnoozedUntil; !until.Equal(want) {
		t.Errorf("snoozed until %v, want %v", until, want)
	}

	// The first delay would have ended here
	h.clock.Advance(time.Second)
	if h.rec.Ringing() {
		t.Error("first snooze resumed after being replaced")
	}
	h.clock.Advance(constants.DefaultSnoozeDelay - time.Second)
	if !h.rec.Ringing() {
		t.Fatal("did not resume after the second snooze delay")
	}
	if h.changes != 1 {
		t.Errorf("OnChange ran %d times, want one resume", h.changes)
	}

	if got := h.session.Snooze(); got != SnoozeExhausted {
		t.Errorf("third snooze = %s, want exhausted", got)
	}
	if st := h.session.Snapshot(); st.SnoozeCount != 2 || !st.Ringing {
		t.Errorf("state = count %d ringing %v", st.SnoozeCount, st.Ringing)
	}
}

func TestBuddyModeRejectsSnooze(t *testing.T) {
	h := newHarness(t, riddleAlarm(), true)
	if got := h.session.Snooze(); got != SnoozeRejectedBuddy {
		t.Errorf("Snooze() = %s, want rejected by buddy mode", got)
	}
	st := h.session.Snapshot()
	if !st.Ringing || st.SnoozeCount != 0 {
		t.Errorf("buddy rejection changed state: ringing %v count %d", st.Ringing, st.SnoozeCount)
	}
}

func TestBeginChallengeStopsRingingAndCancelsResume(t *testing.T) {
	h := newHarness(t, riddleAlarm(), false)
	h.session.Snooze()

	if err := h.session.BeginChallenge(context.Background()); err != nil {
		t.Fatalf("BeginChallenge() error = %v", err)
	}
	h.clock.Advance(constants.DefaultSnoozeDelay)
	if h.rec.Ringing() {
		t.Error("snooze resume fired after challenge began")
	}
	if got := h.session.Snooze(); got != SnoozeUnavailable {
		t.Errorf("Snooze() during challenge = %s, want unavailable", got)
	}

	first := h.session.Snapshot().Challenge
	if err := h.session.BeginChallenge(context.Background()); err != nil {
		t.Fatal(err)
	}
	if again := h.session.Snapshot().Challenge; again.Riddle != first.Riddle || !again.Deadline.Equal(first.Deadline) {
		t.Error("second BeginChallenge() replaced the active challenge")
	}
}

func TestRiddleTimeoutRearms(t *testing.T) {
	h := newHarness(t, riddleAlarm(), false)
	_ = h.session.BeginChallenge(context.Background())
	h.session.SubmitAnswer("definitely wrong")

	h.clock.Advance(constants.DefaultChallengeTimeLimit)
	c := h.session.Snapshot().Challenge
	if c.Riddle.Difficulty != constants.DifficultyEasy || c.Attempts != 0 {
		t.Errorf("after timeout: difficulty %s attempts %d", c.Riddle.Difficulty, c.Attempts)
	}
	if want := t0.Add(2 * constants.DefaultChallengeTimeLimit); !c.Deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v", c.Deadline, want)
	}

	// A second timeout fires from the re-armed timer
	h.clock.Advance(constants.DefaultChallengeTimeLimit)
	if c2 := h.session.Snapshot().Challenge; !c2.Deadline.After(c.Deadline) {
		t.Error("deadline timer was not re-armed")
	}
}

func TestRepeatedTimeoutsKeepOneDeadline(t *testing.T) {
	h := newHarness(t, riddleAlarm(), false)
	_ = h.session.BeginChallenge(context.Background())

	for i := 1; i <= 5; i++ {
		h.clock.Advance(constants.DefaultChallengeTimeLimit)
		if h.clock.Pending() != 1 {
			t.Fatalf("after timeout %d: %d timers pending, want 1", i, h.clock.Pending())
		}
	}
	h.session.mu.Lock()
	deadline, resume := h.session.deadline, h.session.resume
	h.session.mu.Unlock()
	if deadline == nil || resume != nil {
		t.Fatalf("session timers: deadline %v resume %v", deadline, resume)
	}
	if !deadline.Stop() {
		t.Error("session holds a deadline timer that already fired")
	}
	if h.clock.Pending() != 0 {
		t.Errorf("%d timers pending after stopping the held deadline", h.clock.Pending())
	}
}

func TestRiddleSuccessAndDismiss(t *testing.T) {
	h := newHarness(t, riddleAlarm(), false)

	if err := h.session.Dismiss(); !errors.Is(err, ErrNotSucceeded) {
		t.Errorf("Dismiss() before challenge error = %v, want ErrNotSucceeded", err)
	}
	_ = h.session.BeginChallenge(context.Background())
	if err := h.session.Dismiss(); !errors.Is(err, ErrNotSucceeded) {
		t.Errorf("Dismiss() during challenge error = %v, want ErrNotSucceeded", err)
	}

	if h.session.SubmitAnswer("   ") {
		t.Error("blank answer accepted")
	}
	if h.session.SubmitAnswer("wrong") {
		t.Error("wrong answer accepted")
	}
	answer := h.session.Snapshot().Challenge.Riddle.Answer
	if !h.session.SubmitAnswer(answer) {
		t.Fatal("correct answer rejected")
	}
	if h.clock.Pending() != 0 {
		t.Errorf("%d timers pending after success", h.clock.Pending())
	}

	sig := h.rec.Signals()
	if len(sig) != 3 || sig[1] != constants.FeedbackFailure || sig[2] != constants.FeedbackSuccess {
		t.Errorf("signals = %v, want [warning failure success]", sig)
	}

	if err := h.session.Dismiss(); err != nil {
		t.Fatalf("Dismiss() error = %v", err)
	}
	if !h.session.Snapshot().Dismissed {
		t.Error("session not marked dismissed")
	}
}

func TestBarcodeTimeoutFallback(t *testing.T) {
	h := newHarness(t, barcodeAlarm(), false)
	ctx := context.Background()
	_ = h.session.BeginChallenge(ctx)

	if h.session.SubmitBarcode("item-42") {
		t.Error("lowercase scan accepted")
	}
	h.clock.Advance(constants.DefaultChallengeTimeLimit)

	st := h.session.Snapshot()
	if st.ChallengeState() != constants.ChallengeTimedOut || !st.Challenge.FallbackOffered {
		t.Fatalf("after timeout: state %s offered %v", st.ChallengeState(), st.Challenge.FallbackOffered)
	}
	if h.session.SubmitBarcode("ITEM-42") {
		t.Error("scan accepted after timeout")
	}

	if err := h.session.AcceptFallback(); err != nil {
		t.Fatalf("AcceptFallback() error = %v", err)
	}
	c := h.session.Snapshot().Challenge
	if c.Kind != constants.ChallengeRiddle || c.Difficulty != constants.DifficultyMedium {
		t.Errorf("fallback challenge = %s/%s", c.Kind, c.Difficulty)
	}
	if h.clock.Pending() != 1 {
		t.Errorf("pending timers = %d, want fresh deadline", h.clock.Pending())
	}
	if !h.session.SubmitAnswer(c.Riddle.Answer) {
		t.Error("fallback riddle answer rejected")
	}
	if err := h.session.Dismiss(); err != nil {
		t.Errorf("Dismiss() error = %v", err)
	}
}

func TestBarcodeSuccess(t *testing.T) {
	h := newHarness(t, barcodeAlarm(), false)
	_ = h.session.BeginChallenge(context.Background())
	if !h.session.SubmitBarcode("ITEM-42") {
		t.Fatal("exact scan rejected")
	}
	if err := h.session.Dismiss(); err != nil {
		t.Errorf("Dismiss() error = %v", err)
	}
}

func TestBarcodeWithoutCodeFallsBackToRiddle(t *testing.T) {
	h := newHarness(t, riddleAlarm(), false)
	// Same harness, but the session is for a barcode alarm with nothing stored
	alarm := barcodeAlarm()
	alarm.ID = "no-code"
	s := New(alarm, Options{
		Resolver: challenge.NewResolver(h.barcodes, nil, nil),
		Clock:    h.clock,
	})
	defer s.Close()

	if err := s.BeginChallenge(context.Background()); err != nil {
		t.Fatalf("BeginChallenge() error = %v", err)
	}
	c := s.Snapshot().Challenge
	if c.Kind != constants.ChallengeRiddle || !c.Fallback {
		t.Errorf("challenge = %s fallback %v, want riddle fallback", c.Kind, c.Fallback)
	}
}

func TestSkipKeepsDeadline(t *testing.T) {
	h := newHarness(t, riddleAlarm(), false)
	if err := h.session.Skip(); !errors.Is(err, ErrNoChallenge) {
		t.Errorf("Skip() before challenge error = %v", err)
	}
	_ = h.session.BeginChallenge(context.Background())
	h.clock.Advance(20 * time.Second)
	deadline := h.session.Snapshot().Challenge.Deadline

	if err := h.session.Skip(); err != nil {
		t.Fatalf("Skip() error = %v", err)
	}
	if got := h.session.Snapshot().Challenge.Deadline; !got.Equal(deadline) {
		t.Errorf("deadline moved from %v to %v", deadline, got)
	}
}

func TestCloseCancelsTimers(t *testing.T) {
	h := newHarness(t, riddleAlarm(), false)
	h.session.Snooze()

	h.session.Close()
	h.session.Close()
	if h.clock.Pending() != 0 {
		t.Errorf("%d timers pending after Close", h.clock.Pending())
	}
	h.clock.Advance(time.Hour)
	st := h.session.Snapshot()
	if st.Ringing || h.rec.Ringing() {
		t.Error("timer callback rang after Close")
	}
	if err := h.session.BeginChallenge(context.Background()); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("BeginChallenge() after Close error = %v", err)
	}
	if got := h.session.Snooze(); got != SnoozeUnavailable {
		t.Errorf("Snooze() after Close = %s", got)
	}
}

func TestStaleTimerCallbackIgnored(t *testing.T) {
	h := newHarness(t, riddleAlarm(), false)
	_ = h.session.BeginChallenge(context.Background())

	// Simulate a deadline callback that was already running when the timers
	// were cancelled: capture it, cancel, then run it.
	h.session.mu.Lock()
	gen := h.session.gen
	h.session.cancelTimers()
	h.session.mu.Unlock()
	if gen == h.session.gen {
		t.Fatal("cancelTimers() did not advance the generation")
	}
	h.clock.Advance(time.Hour)
	if c := h.session.Snapshot().Challenge; c.Riddle.Difficulty != constants.DifficultyMedium {
		t.Errorf("cancelled deadline still fired: difficulty %s", c.Riddle.Difficulty)
	}
}
