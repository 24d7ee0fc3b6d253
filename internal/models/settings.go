package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/snaprise/internal/constants"
)

// Settings represents application-wide settings
type Settings struct {
	SoundEnabled          bool                 `json:"sound_enabled"`            // play the alarm sound
	VibrationEnabled      bool                 `json:"vibration_enabled"`        // pulse the vibration pattern
	DarkTheme             bool                 `json:"dark_theme"`               // use the dark wake screen palette
	BuddyMode             bool                 `json:"buddy_mode"`               // default buddy mode for new wake sessions
	SnoozeDelayMin        int                  `json:"snooze_delay_min"`         // minutes a snooze keeps the alarm quiet
	ChallengeTimeLimitSec int                  `json:"challenge_time_limit_sec"` // countdown per challenge instance
	DefaultDifficulty     constants.Difficulty `json:"default_difficulty"`       // riddle tier for new alarms and barcode fallback
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{
		SoundEnabled:          constants.DefaultSoundEnabled,
		VibrationEnabled:      constants.DefaultVibrationEnabled,
		DarkTheme:             constants.DefaultDarkTheme,
		BuddyMode:             constants.DefaultBuddyMode,
		SnoozeDelayMin:        constants.DefaultSnoozeDelayMin,
		ChallengeTimeLimitSec: constants.DefaultChallengeTimeLimitSec,
		DefaultDifficulty:     constants.DefaultDifficulty,
	}
}

// ApplyDefaultSettings fills zero numeric fields and an empty difficulty.
func ApplyDefaultSettings(settings *Settings) {
	if settings.SnoozeDelayMin == 0 {
		settings.SnoozeDelayMin = constants.DefaultSnoozeDelayMin
	}
	if settings.ChallengeTimeLimitSec == 0 {
		settings.ChallengeTimeLimitSec = constants.DefaultChallengeTimeLimitSec
	}
	if settings.DefaultDifficulty == "" {
		settings.DefaultDifficulty = constants.DefaultDifficulty
	}
}

func (s Settings) Validate() error {
	if s.SnoozeDelayMin < constants.MinSnoozeDelayMin || s.SnoozeDelayMin > constants.MaxSnoozeDelayMin {
		return fmt.Errorf("%w: snooze delay must be between %d and %d minutes",
			ErrValidation, constants.MinSnoozeDelayMin, constants.MaxSnoozeDelayMin)
	}
	if s.ChallengeTimeLimitSec < constants.MinChallengeTimeLimitSec || s.ChallengeTimeLimitSec > constants.MaxChallengeTimeLimitSec {
		return fmt.Errorf("%w: challenge time limit must be between %d and %d seconds",
			ErrValidation, constants.MinChallengeTimeLimitSec, constants.MaxChallengeTimeLimitSec)
	}
	if !ValidDifficulty(s.DefaultDifficulty) {
		return fmt.Errorf("%w: invalid default difficulty %q", ErrValidation, s.DefaultDifficulty)
	}
	return nil
}

func (s Settings) SnoozeDelay() time.Duration {
	return time.Duration(s.SnoozeDelayMin) * time.Minute
}

func (s Settings) ChallengeTimeLimit() time.Duration {
	return time.Duration(s.ChallengeTimeLimitSec) * time.Second
}
