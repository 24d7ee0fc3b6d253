package setup

import (
	"slices"
	"testing"
	"time"

	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/models"
)

func TestValidateTime(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"07:00", false},
		{" 23:59 ", false},
		{"24:00", true},
		{"7am", true},
		{"", true},
	}
	for _, tt := range tests {
		if err := validateTime(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("validateTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestValidateDaysAndBarcodeOnlyWhenActive(t *testing.T) {
	fm := &AlarmForm{Active: true}
	if fm.validateDays(nil) == nil {
		t.Error("active alarm with no days accepted")
	}
	if fm.validateBarcode("  ") == nil {
		t.Error("active barcode alarm without a code accepted")
	}

	fm.Active = false
	if err := fm.validateDays(nil); err != nil {
		t.Errorf("inactive alarm with no days rejected: %v", err)
	}
	if err := fm.validateBarcode(""); err != nil {
		t.Errorf("inactive alarm without a code rejected: %v", err)
	}
}

func TestSpec(t *testing.T) {
	fm := Defaults(models.DefaultSettings())
	fm.Time = " 06:45 "
	fm.Days = []time.Weekday{time.Friday, time.Monday, time.Friday}
	fm.Label = "  gym  "

	spec := fm.Spec("a1")
	if spec.ID != "a1" || spec.Time != "06:45" || spec.Label != "gym" {
		t.Errorf("Spec() = %+v", spec)
	}
	if !slices.Equal(spec.Days, []time.Weekday{time.Monday, time.Friday}) {
		t.Errorf("Days = %v, want [Monday Friday]", spec.Days)
	}
	if spec.Challenge != models.RiddleChallenge(constants.DefaultDifficulty) {
		t.Errorf("Challenge = %+v, want default riddle", spec.Challenge)
	}

	fm.Challenge = constants.ChallengeBarcode
	if got := fm.Spec("a1").Challenge; got != models.BarcodeChallenge() {
		t.Errorf("barcode Challenge = %+v, want no difficulty", got)
	}
}

func TestFromAlarm(t *testing.T) {
	a := models.Alarm{
		ID:        "b1",
		Time:      "05:30",
		Days:      []time.Weekday{time.Saturday, time.Sunday},
		Label:     "Run",
		Challenge: models.BarcodeChallenge(),
	}
	st := models.DefaultSettings()
	st.DefaultDifficulty = constants.DifficultyHard

	fm := FromAlarm(a, st, "ITEM-42", "shoe box")
	if fm.Barcode != "ITEM-42" || fm.BarcodeLabel != "shoe box" {
		t.Errorf("barcode fields = %q/%q", fm.Barcode, fm.BarcodeLabel)
	}
	if fm.Difficulty != constants.DifficultyHard {
		t.Errorf("Difficulty = %q, want settings default for barcode alarms", fm.Difficulty)
	}
	if fm.Active {
		t.Error("inactive alarm prefilled as active")
	}

	spec := fm.Spec(a.ID)
	if spec.Challenge != a.Challenge || !slices.Equal(spec.Days, []time.Weekday{time.Sunday, time.Saturday}) {
		t.Errorf("round trip spec = %+v", spec)
	}
	if NewAlarmForm(fm) == nil {
		t.Error("NewAlarmForm returned nil")
	}
}
