// Package challenge produces wake-up challenge instances and drives their
// pass, fail, timeout and fallback transitions.
package challenge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/snaprise/internal/barcode"
	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/logger"
	"github.com/julianstephens/snaprise/internal/models"
	"github.com/julianstephens/snaprise/internal/riddles"
)

var (
	ErrNoBarcode           = errors.New("no barcode registered for alarm")
	ErrFallbackUnavailable = errors.New("fallback is only offered after a barcode challenge times out")
	ErrNotRiddle           = errors.New("only riddle challenges can be skipped")
)

// Instance is one attempt at a challenge. It is owned by a single wake
// session and is not safe for concurrent use.
type Instance struct {
	AlarmID      string
	Kind         constants.ChallengeKind
	State        constants.ChallengeState
	ExpectedCode string
	Riddle       riddles.Riddle
	Difficulty   constants.Difficulty
	Attempts     int
	HintVisible  bool
	Deadline     time.Time
	// FallbackOffered is set when a barcode challenge times out.
	FallbackOffered bool
	// Fallback marks a riddle that replaced a barcode challenge.
	Fallback bool

	timeLimit          time.Duration
	fallbackDifficulty constants.Difficulty
}

// Hint returns the riddle hint while it is visible.
func (c *Instance) Hint() string {
	if !c.HintVisible || c.Kind != constants.ChallengeRiddle {
		return ""
	}
	return riddles.Hint(c.Riddle)
}

// Remaining returns the time left before the deadline, never negative.
func (c *Instance) Remaining(now time.Time) time.Duration {
	return max(c.Deadline.Sub(now), 0)
}

func (c *Instance) TimeLimit() time.Duration {
	return c.timeLimit
}

// Prompt is the text shown to the user for the current challenge.
func (c *Instance) Prompt() string {
	if c.Kind == constants.ChallengeBarcode {
		return "Scan the barcode registered for this alarm"
	}
	return c.Riddle.Question
}

// SettingsSource supplies the time limit and fallback difficulty.
type SettingsSource interface {
	Get(ctx context.Context) (models.Settings, error)
}

type Resolver struct {
	barcodes *barcode.Store
	bank     *riddles.Bank
	settings SettingsSource
}

// NewResolver builds a resolver. A nil settings source uses the defaults.
func NewResolver(barcodes *barcode.Store, bank *riddles.Bank, settings SettingsSource) *Resolver {
	if bank == nil {
		bank = riddles.NewBank()
	}
	return &Resolver{barcodes: barcodes, bank: bank, settings: settings}
}

func (r *Resolver) loadSettings(ctx context.Context) models.Settings {
	if r.settings == nil {
		return models.DefaultSettings()
	}
	st, err := r.settings.Get(ctx)
	if err != nil {
		logger.Warn("Failed to load settings, using defaults", "error", err)
		return models.DefaultSettings()
	}
	return st
}

// Start creates the challenge configured on alarm with a deadline of now
// plus the configured time limit.
func (r *Resolver) Start(ctx context.Context, alarm models.Alarm, now time.Time) (*Instance, error) {
	if alarm.Challenge.IsRiddle() {
		return r.StartRiddle(ctx, alarm.ID, alarm.Challenge.Difficulty, now), nil
	}
	if !alarm.Challenge.IsBarcode() {
		return nil, fmt.Errorf("%w: unknown challenge type %q", models.ErrValidation, alarm.Challenge.Kind)
	}
	if r.barcodes == nil {
		return nil, ErrNoBarcode
	}

	code, found, err := r.barcodes.Get(ctx, alarm.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNoBarcode, alarm.ID)
	}

	st := r.loadSettings(ctx)
	c := &Instance{
		AlarmID:            alarm.ID,
		Kind:               constants.ChallengeBarcode,
		State:              constants.ChallengeInProgress,
		ExpectedCode:       code,
		timeLimit:          st.ChallengeTimeLimit(),
		fallbackDifficulty: st.DefaultDifficulty,
	}
	c.Deadline = now.Add(c.timeLimit)
	logger.Debug("Started barcode challenge", "alarm", alarm.ID, "deadline", c.Deadline.Format(time.RFC3339))
	return c, nil
}

// StartRiddle creates a riddle challenge regardless of the alarm's
// configuration. Wake sessions use it when a barcode alarm has no code.
func (r *Resolver) StartRiddle(ctx context.Context, alarmID string, d constants.Difficulty, now time.Time) *Instance {
	st := r.loadSettings(ctx)
	if d == "" {
		d = st.DefaultDifficulty
	}
	c := &Instance{
		AlarmID:            alarmID,
		Kind:               constants.ChallengeRiddle,
		State:              constants.ChallengeInProgress,
		Difficulty:         d,
		Riddle:             r.bank.PickRandom(d),
		timeLimit:          st.ChallengeTimeLimit(),
		fallbackDifficulty: st.DefaultDifficulty,
	}
	c.Deadline = now.Add(c.timeLimit)
	logger.Debug("Started riddle challenge", "alarm", alarmID, "difficulty", d)
	return c
}

// SubmitBarcode succeeds only on an exact, case-sensitive match. It does
// nothing unless a barcode challenge is in progress.
func (r *Resolver) SubmitBarcode(c *Instance, scanned string) bool {
	if c.Kind != constants.ChallengeBarcode || c.State != constants.ChallengeInProgress {
		return false
	}
	if scanned != c.ExpectedCode {
		logger.Debug("Barcode mismatch", "alarm", c.AlarmID)
		return false
	}
	c.State = constants.ChallengeSucceeded
	logger.Info("Barcode challenge passed", "alarm", c.AlarmID)
	return true
}

// SubmitRiddleAnswer checks an answer. Each wrong answer counts as an
// attempt and the hint appears on the third. Blank answers are ignored.
func (r *Resolver) SubmitRiddleAnswer(c *Instance, submitted string) bool {
	if c.Kind != constants.ChallengeRiddle || c.State != constants.ChallengeInProgress {
		return false
	}
	if strings.TrimSpace(submitted) == "" {
		return false
	}
	if riddles.CheckAnswer(c.Riddle, submitted) {
		c.State = constants.ChallengeSucceeded
		logger.Info("Riddle challenge passed", "alarm", c.AlarmID, "attempts", c.Attempts+1)
		return true
	}

	if c.Attempts >= constants.HintAfterFailures {
		c.HintVisible = true
	}
	c.Attempts++
	logger.Debug("Wrong riddle answer", "alarm", c.AlarmID, "attempts", c.Attempts)
	return false
}

// OnTimeout handles an expired deadline. Riddles restart with a fresh easy
// riddle; barcodes time out and offer the riddle fallback.
func (r *Resolver) OnTimeout(c *Instance, now time.Time) {
	if c.State != constants.ChallengeInProgress {
		return
	}
	if c.Kind == constants.ChallengeRiddle {
		c.Difficulty = constants.DifficultyEasy
		c.Riddle = r.bank.PickRandom(constants.DifficultyEasy)
		c.Attempts = 0
		c.HintVisible = false
		c.Deadline = now.Add(c.timeLimit)
		logger.Info("Riddle timed out, switching to an easy riddle", "alarm", c.AlarmID)
		return
	}
	c.State = constants.ChallengeTimedOut
	c.FallbackOffered = true
	logger.Info("Barcode challenge timed out, offering riddle fallback", "alarm", c.AlarmID)
}

// AcceptFallback turns a timed-out barcode challenge into a riddle for the
// rest of this session. The stored alarm keeps its barcode challenge.
func (r *Resolver) AcceptFallback(c *Instance, now time.Time) error {
	if c.Kind != constants.ChallengeBarcode || c.State != constants.ChallengeTimedOut || !c.FallbackOffered {
		return ErrFallbackUnavailable
	}
	d := c.fallbackDifficulty
	if !models.ValidDifficulty(d) {
		d = constants.DefaultDifficulty
	}
	c.Kind = constants.ChallengeRiddle
	c.State = constants.ChallengeInProgress
	c.ExpectedCode = ""
	c.Difficulty = d
	c.Riddle = r.bank.PickRandom(d)
	c.Attempts = 0
	c.HintVisible = false
	c.FallbackOffered = false
	c.Fallback = true
	c.Deadline = now.Add(c.timeLimit)
	logger.Info("Switched to riddle fallback", "alarm", c.AlarmID, "difficulty", d)
	return nil
}

// Skip swaps the current riddle for another of the same difficulty. The
// deadline is left alone.
func (r *Resolver) Skip(c *Instance) error {
	if c.Kind != constants.ChallengeRiddle {
		return ErrNotRiddle
	}
	if c.State != constants.ChallengeInProgress {
		return nil
	}
	c.Riddle = r.bank.PickRandom(c.Difficulty)
	c.Attempts = 0
	c.HintVisible = false
	logger.Debug("Skipped riddle", "alarm", c.AlarmID)
	return nil
}
