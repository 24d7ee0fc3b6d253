// Package setup holds the interactive alarm form used by `alarm add -i`
// and `alarm edit -i`.
package setup

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/snaprise/internal/alarms"
	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/models"
)

// AlarmForm is the form's backing state.
type AlarmForm struct {
	Time         string
	Days         []time.Weekday
	Label        string
	Challenge    constants.ChallengeKind
	Difficulty   constants.Difficulty
	Barcode      string
	BarcodeLabel string
	Active       bool
}

// Defaults returns a blank form seeded from the user's settings.
func Defaults(st models.Settings) *AlarmForm {
	return &AlarmForm{
		Time:       "07:00",
		Days:       []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		Challenge:  constants.ChallengeRiddle,
		Difficulty: st.DefaultDifficulty,
		Active:     true,
	}
}

// FromAlarm prefills the form for editing. code and codeLabel are the
// alarm's stored barcode, if any.
func FromAlarm(a models.Alarm, st models.Settings, code, codeLabel string) *AlarmForm {
	fm := &AlarmForm{
		Time:         a.Time,
		Days:         models.NormalizeDays(a.Days),
		Label:        a.Label,
		Challenge:    a.Challenge.Kind,
		Difficulty:   a.Challenge.Difficulty,
		Barcode:      code,
		BarcodeLabel: codeLabel,
		Active:       a.Active,
	}
	if fm.Difficulty == "" {
		fm.Difficulty = st.DefaultDifficulty
	}
	return fm
}

// Spec converts the form into repository input, keeping id.
func (fm *AlarmForm) Spec(id string) alarms.Spec {
	ch := models.BarcodeChallenge()
	if fm.Challenge == constants.ChallengeRiddle {
		ch = models.RiddleChallenge(fm.Difficulty)
	}
	return alarms.Spec{
		ID:        id,
		Time:      strings.TrimSpace(fm.Time),
		Days:      models.NormalizeDays(fm.Days),
		Active:    fm.Active,
		Label:     strings.TrimSpace(fm.Label),
		Challenge: ch,
	}
}

func validateTime(s string) error {
	if _, err := time.Parse(constants.TimeFormat, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid time format, use HH:MM")
	}
	return nil
}

// validateDays only applies to alarms that will be switched on.
func (fm *AlarmForm) validateDays(days []time.Weekday) error {
	if len(days) == 0 && fm.Active {
		return fmt.Errorf("pick at least one day for an active alarm")
	}
	return nil
}

func (fm *AlarmForm) validateBarcode(s string) error {
	if strings.TrimSpace(s) == "" && fm.Active {
		return fmt.Errorf("scan or type the barcode to use for this alarm")
	}
	return nil
}

func weekdayOptions() []huh.Option[time.Weekday] {
	opts := make([]huh.Option[time.Weekday], 0, 7)
	for _, d := range []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	} {
		opts = append(opts, huh.NewOption(d.String(), d))
	}
	return opts
}

// NewAlarmForm builds the form. Difficulty and barcode fields are only
// shown for the matching challenge.
func NewAlarmForm(fm *AlarmForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Time (HH:MM)").
				Value(&fm.Time).
				Validate(validateTime),
			huh.NewInput().
				Title("Label").
				Description("Optional").
				Value(&fm.Label),
			huh.NewConfirm().
				Title("Active").
				Value(&fm.Active),
		),
		huh.NewGroup(
			huh.NewMultiSelect[time.Weekday]().
				Title("Days").
				Options(weekdayOptions()...).
				Value(&fm.Days).
				Validate(fm.validateDays),
			huh.NewSelect[constants.ChallengeKind]().
				Title("Challenge").
				Options(
					huh.NewOption("Answer a riddle", constants.ChallengeRiddle),
					huh.NewOption("Scan a barcode", constants.ChallengeBarcode),
				).
				Value(&fm.Challenge),
		),
		huh.NewGroup(
			huh.NewSelect[constants.Difficulty]().
				Title("Riddle difficulty").
				Options(
					huh.NewOption("Easy", constants.DifficultyEasy),
					huh.NewOption("Medium", constants.DifficultyMedium),
					huh.NewOption("Hard", constants.DifficultyHard),
				).
				Value(&fm.Difficulty),
		).WithHideFunc(func() bool { return fm.Challenge != constants.ChallengeRiddle }),
		huh.NewGroup(
			huh.NewInput().
				Title("Barcode").
				Description("Scan the item you will have to get up for").
				Value(&fm.Barcode).
				Validate(fm.validateBarcode),
			huh.NewInput().
				Title("Barcode label").
				Description("Optional, e.g. kitchen coffee tin").
				Value(&fm.BarcodeLabel),
		).WithHideFunc(func() bool { return fm.Challenge != constants.ChallengeBarcode }),
	).WithTheme(huh.ThemeDracula())
}
