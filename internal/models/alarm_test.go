package models

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/julianstephens/snaprise/internal/constants"
)

func TestAlarm_Validate(t *testing.T) {
	tests := []struct {
		name    string
		alarm   Alarm
		wantErr bool
	}{
		{
			name: "valid riddle alarm",
			alarm: Alarm{
				ID:        "a1",
				Time:      "06:30",
				Days:      []time.Weekday{time.Monday, time.Friday},
				Challenge: RiddleChallenge(constants.DifficultyMedium),
			},
		},
		{
			name: "valid barcode alarm",
			alarm: Alarm{
				ID:        "a2",
				Time:      "07:00",
				Days:      []time.Weekday{time.Saturday},
				Challenge: BarcodeChallenge(),
			},
		},
		{
			name: "inactive alarm without days is structurally valid",
			alarm: Alarm{
				ID:        "a3",
				Time:      "07:00",
				Challenge: BarcodeChallenge(),
			},
		},
		{
			name:    "empty time",
			alarm:   Alarm{ID: "x", Challenge: BarcodeChallenge()},
			wantErr: true,
		},
		{
			name:    "invalid time",
			alarm:   Alarm{ID: "x", Time: "25:00", Challenge: BarcodeChallenge()},
			wantErr: true,
		},
		{
			name: "weekday out of range",
			alarm: Alarm{
				ID:        "x",
				Time:      "07:00",
				Days:      []time.Weekday{7},
				Challenge: BarcodeChallenge(),
			},
			wantErr: true,
		},
		{
			name:    "riddle without difficulty",
			alarm:   Alarm{ID: "x", Time: "07:00", Challenge: Challenge{Kind: constants.ChallengeRiddle}},
			wantErr: true,
		},
		{
			name: "barcode carrying a difficulty",
			alarm: Alarm{
				ID:        "x",
				Time:      "07:00",
				Challenge: Challenge{Kind: constants.ChallengeBarcode, Difficulty: constants.DifficultyHard},
			},
			wantErr: true,
		},
		{
			name:    "unknown challenge",
			alarm:   Alarm{ID: "x", Time: "07:00", Challenge: Challenge{Kind: "math"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.alarm.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() error %v does not wrap ErrValidation", err)
			}
		})
	}
}

func TestAlarm_ValidateActivation(t *testing.T) {
	a := Alarm{Time: "07:00", Challenge: BarcodeChallenge()}
	if err := a.ValidateActivation(); !errors.Is(err, ErrNoActiveDays) {
		t.Errorf("ValidateActivation() = %v, want ErrNoActiveDays", err)
	}

	a.Days = []time.Weekday{time.Tuesday}
	if err := a.ValidateActivation(); err != nil {
		t.Errorf("ValidateActivation() = %v, want nil", err)
	}
}

func TestNormalizeDays(t *testing.T) {
	in := []time.Weekday{time.Friday, time.Monday, time.Friday, time.Sunday}
	got := NormalizeDays(in)
	want := []time.Weekday{time.Sunday, time.Monday, time.Friday}
	if !slices.Equal(got, want) {
		t.Errorf("NormalizeDays() = %v, want %v", got, want)
	}
	if in[0] != time.Friday {
		t.Error("NormalizeDays() modified its input")
	}
}

func TestAlarm_FormatDays(t *testing.T) {
	tests := []struct {
		days []time.Weekday
		want string
	}{
		{nil, "Never"},
		{[]time.Weekday{0, 1, 2, 3, 4, 5, 6}, "Every day"},
		{[]time.Weekday{5, 4, 3, 2, 1}, "Weekdays"},
		{[]time.Weekday{6, 0}, "Weekends"},
		{[]time.Weekday{1, 3}, "Mon, Wed"},
	}
	for _, tt := range tests {
		a := Alarm{Days: tt.days}
		if got := a.FormatDays(); got != tt.want {
			t.Errorf("FormatDays(%v) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestAlarm_Clock(t *testing.T) {
	a := Alarm{Time: "06:45"}
	h, m, err := a.Clock()
	if err != nil || h != 6 || m != 45 {
		t.Errorf("Clock() = (%d, %d, %v), want (6, 45, nil)", h, m, err)
	}
}

func TestChallengeString(t *testing.T) {
	if got := RiddleChallenge(constants.DifficultyHard).String(); got != "riddle (hard)" {
		t.Errorf("String() = %q", got)
	}
	if got := BarcodeChallenge().String(); got != "barcode" {
		t.Errorf("String() = %q", got)
	}
}

func TestSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
	if s.SnoozeDelay() != 5*time.Minute || s.ChallengeTimeLimit() != time.Minute {
		t.Errorf("unexpected default durations: %v %v", s.SnoozeDelay(), s.ChallengeTimeLimit())
	}

	s.SnoozeDelayMin = 0
	if err := s.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("Validate() with zero snooze delay = %v", err)
	}

	var empty Settings
	ApplyDefaultSettings(&empty)
	if err := empty.Validate(); err != nil {
		t.Errorf("ApplyDefaultSettings() left invalid settings: %v", err)
	}
}
