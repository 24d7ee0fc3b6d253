package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/snaprise/internal/constants"
)

// ErrValidation is wrapped by every alarm validation failure
var ErrValidation = errors.New("validation failed")

// ErrNoActiveDays is returned when an active alarm has no weekdays selected
var ErrNoActiveDays = fmt.Errorf("%w: at least one active day is required", ErrValidation)

// Challenge is the wake-up challenge configured on an alarm. It is a tagged
// union: Kind selects the variant and Difficulty is only meaningful for
// riddles. Build values with BarcodeChallenge or RiddleChallenge.
type Challenge struct {
	Kind       constants.ChallengeKind `json:"kind"`
	Difficulty constants.Difficulty    `json:"difficulty,omitempty"`
}

// BarcodeChallenge requires scanning the barcode registered for the alarm.
func BarcodeChallenge() Challenge {
	return Challenge{Kind: constants.ChallengeBarcode}
}

// RiddleChallenge requires answering a riddle of the given difficulty.
func RiddleChallenge(d constants.Difficulty) Challenge {
	return Challenge{Kind: constants.ChallengeRiddle, Difficulty: d}
}

func (c Challenge) IsBarcode() bool { return c.Kind == constants.ChallengeBarcode }
func (c Challenge) IsRiddle() bool  { return c.Kind == constants.ChallengeRiddle }

func (c Challenge) Validate() error {
	switch c.Kind {
	case constants.ChallengeBarcode:
		if c.Difficulty != "" {
			return fmt.Errorf("%w: barcode challenges do not take a difficulty", ErrValidation)
		}
	case constants.ChallengeRiddle:
		if !ValidDifficulty(c.Difficulty) {
			return fmt.Errorf("%w: invalid riddle difficulty %q", ErrValidation, c.Difficulty)
		}
	default:
		return fmt.Errorf("%w: unknown challenge type %q", ErrValidation, c.Kind)
	}
	return nil
}

func (c Challenge) String() string {
	if c.IsRiddle() {
		return fmt.Sprintf("riddle (%s)", c.Difficulty)
	}
	return string(c.Kind)
}

// ValidDifficulty reports whether d is one of the known riddle tiers.
func ValidDifficulty(d constants.Difficulty) bool {
	switch d {
	case constants.DifficultyEasy, constants.DifficultyMedium, constants.DifficultyHard:
		return true
	}
	return false
}

// Alarm is a persisted alarm record. Time is the time of day the alarm fires
// on each of its Days, not an absolute timestamp.
type Alarm struct {
	ID        string         `json:"id"`
	Time      string         `json:"time"` // HH:MM format
	Days      []time.Weekday `json:"days"`
	Active    bool           `json:"active"`
	Label     string         `json:"label,omitempty"`
	Challenge Challenge      `json:"challenge"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Validate checks the record's structure. It does not check activation
// requirements; see ValidateActivation.
func (a *Alarm) Validate() error {
	if a.Time == "" {
		return fmt.Errorf("%w: alarm time cannot be empty", ErrValidation)
	}
	if _, err := time.Parse(constants.TimeFormat, a.Time); err != nil {
		return fmt.Errorf("%w: invalid time format (expected HH:MM): %v", ErrValidation, err)
	}
	for _, d := range a.Days {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: weekday %d out of range (0=Sunday..6=Saturday)", ErrValidation, d)
		}
	}
	return a.Challenge.Validate()
}

// ValidateActivation checks the rules that only apply to an active alarm.
func (a *Alarm) ValidateActivation() error {
	if len(a.Days) == 0 {
		return ErrNoActiveDays
	}
	return nil
}

// NormalizeDays sorts and deduplicates Days in place.
func (a *Alarm) NormalizeDays() {
	a.Days = NormalizeDays(a.Days)
}

// NormalizeDays returns a sorted copy of days without duplicates.
func NormalizeDays(days []time.Weekday) []time.Weekday {
	out := slices.Clone(days)
	slices.Sort(out)
	return slices.Compact(out)
}

// Clock returns the alarm's hour and minute.
func (a *Alarm) Clock() (hour, minute int, err error) {
	t, err := time.Parse(constants.TimeFormat, a.Time)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid alarm time %q: %w", a.Time, err)
	}
	return t.Hour(), t.Minute(), nil
}

// RingsOn reports whether the alarm is set for the given weekday.
func (a *Alarm) RingsOn(day time.Weekday) bool {
	return slices.Contains(a.Days, day)
}

// FormatDays returns a short human-readable description of the alarm's days
func (a *Alarm) FormatDays() string {
	days := NormalizeDays(a.Days)
	switch {
	case len(days) == 0:
		return "Never"
	case len(days) == 7:
		return "Every day"
	case slices.Equal(days, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}):
		return "Weekdays"
	case slices.Equal(days, []time.Weekday{time.Sunday, time.Saturday}):
		return "Weekends"
	}
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()[:3]
	}
	return strings.Join(names, ", ")
}

// DisplayName returns the label, or a default derived from the time.
func (a *Alarm) DisplayName() string {
	if a.Label != "" {
		return a.Label
	}
	return "Alarm " + a.Time
}
