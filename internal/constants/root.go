package constants

import "time"

// ChallengeKind identifies which wake-up challenge gates an alarm
type ChallengeKind string

// Difficulty is the riddle difficulty tier
type Difficulty string

// ChallengeState is the resolver state of a running challenge
type ChallengeState int

// FeedbackKind is a haptic/audio feedback event
type FeedbackKind string

const (
	AppName            = "snaprise"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/snaprise/snaprise.db"
	Version            = "v0.3.0"

	// TimeFormat is the standard time-of-day format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Challenge kinds
	ChallengeBarcode ChallengeKind = "barcode"
	ChallengeRiddle  ChallengeKind = "riddle"

	// Riddle difficulties
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"

	// Feedback kinds
	FeedbackSuccess FeedbackKind = "success"
	FeedbackFailure FeedbackKind = "failure"
	FeedbackWarning FeedbackKind = "warning"

	// Wake session limits
	MaxSnoozes = 2
	// HintAfterFailures is the number of failed answers already recorded
	// before the next failure reveals the hint.
	HintAfterFailures = 2

	// KV key layout
	AlarmKeyPrefix        = "snaprise_alarm_"
	AlarmIndexKey         = "snaprise_alarm_index"
	BarcodeKeyPrefix      = "snaprise_barcode_"
	BarcodeLabelKeyPrefix = "snaprise_barcode_label_"
	SettingsKey           = "snaprise_settings"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "snaprise-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifierLockfileName   = "snaprise-notifier.lock"
	NotificationDurationMs = 10000
	TrayAppIdentifier      = "com.julianstephens.snaprise"
	TrayExecutablePrefix   = "snaprise-tray"
)

// Challenge states
const (
	ChallengeNotStarted ChallengeState = iota
	ChallengeInProgress
	ChallengeSucceeded
	ChallengeTimedOut
)

// DefaultSnoozeDelay is how long a snoozed alarm stays quiet.
const DefaultSnoozeDelay = 5 * time.Minute

// DefaultChallengeTimeLimit is the countdown given to each challenge instance.
const DefaultChallengeTimeLimit = 60 * time.Second

func (s ChallengeState) String() string {
	switch s {
	case ChallengeNotStarted:
		return "not_started"
	case ChallengeInProgress:
		return "in_progress"
	case ChallengeSucceeded:
		return "succeeded"
	case ChallengeTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}
