package settings

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/snaprise/internal/cli"
	"github.com/julianstephens/snaprise/internal/config"
	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/models"
	"github.com/julianstephens/snaprise/internal/storage"
)

func setupContext() (*cli.Context, *bytes.Buffer) {
	var out bytes.Buffer
	ctx := cli.NewContext(context.Background(), storage.NewMemoryStore(), config.Env{})
	ctx.Out = &out
	return ctx, &out
}

func TestSettingsList(t *testing.T) {
	ctx, out := setupContext()
	cmd := SettingsCmd{List: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Buddy Mode:           true", "Snooze Delay:         5 min", "Default Difficulty:   medium"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("list output missing %q:\n%s", want, out.String())
		}
	}
}

func TestSettingsUpdate(t *testing.T) {
	ctx, out := setupContext()
	buddy, delay, difficulty := false, 10, "hard"
	cmd := SettingsCmd{BuddyMode: &buddy, SnoozeDelay: &delay, Difficulty: &difficulty}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Settings updated") {
		t.Errorf("output = %q", out.String())
	}

	st, err := ctx.Settings().Get(ctx.Ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.BuddyMode || st.SnoozeDelayMin != 10 || st.DefaultDifficulty != constants.DifficultyHard {
		t.Errorf("saved settings = %+v", st)
	}
	if !st.SoundEnabled {
		t.Error("unrelated setting changed")
	}
}

func TestSettingsRejectsOutOfRange(t *testing.T) {
	ctx, _ := setupContext()
	limit := 5
	cmd := SettingsCmd{TimeLimit: &limit}
	if err := cmd.Run(ctx); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Run() error = %v, want validation error", err)
	}
}

func TestSettingsNoChanges(t *testing.T) {
	ctx, out := setupContext()
	cmd := SettingsCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No changes specified") {
		t.Errorf("output = %q", out.String())
	}
}
