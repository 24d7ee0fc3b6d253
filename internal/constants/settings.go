package constants

const (
	// Settings keys
	SettingSoundEnabled          = "sound_enabled"
	SettingVibrationEnabled      = "vibration_enabled"
	SettingDarkTheme             = "dark_theme"
	SettingBuddyMode             = "buddy_mode"
	SettingSnoozeDelayMin        = "snooze_delay_min"
	SettingChallengeTimeLimitSec = "challenge_time_limit_sec"
	SettingDefaultDifficulty     = "default_difficulty"

	// Default Settings Values
	DefaultSoundEnabled          = true
	DefaultVibrationEnabled      = true
	DefaultDarkTheme             = false
	DefaultBuddyMode             = true
	DefaultSnoozeDelayMin        = 5
	DefaultChallengeTimeLimitSec = 60
	DefaultDifficulty            = DifficultyMedium

	// Settings bounds
	MinSnoozeDelayMin        = 1
	MaxSnoozeDelayMin        = 60
	MinChallengeTimeLimitSec = 10
	MaxChallengeTimeLimitSec = 600
)
