package settings

import (
	"fmt"

	"github.com/julianstephens/snaprise/internal/cli"
	"github.com/julianstephens/snaprise/internal/constants"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Sound       *bool   `help:"Play the alarm sound."`
	Vibration   *bool   `help:"Pulse the vibration pattern."`
	DarkTheme   *bool   `help:"Use the dark wake screen."`
	BuddyMode   *bool   `help:"Disable snoozing for wake sessions by default."`
	SnoozeDelay *int    `help:"Minutes a snooze lasts (1-60)."`
	TimeLimit   *int    `help:"Seconds allowed per challenge (10-600)."`
	Difficulty  *string `help:"Default riddle difficulty (easy|medium|hard)."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	store := ctx.Settings()
	settings, err := store.Get(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		ctx.Println("Current Settings:")
		ctx.Printf("  Sound:                %v\n", settings.SoundEnabled)
		ctx.Printf("  Vibration:            %v\n", settings.VibrationEnabled)
		ctx.Printf("  Dark Theme:           %v\n", settings.DarkTheme)
		ctx.Printf("  Buddy Mode:           %v\n", settings.BuddyMode)
		ctx.Printf("  Snooze Delay:         %d min (max %d snoozes)\n", settings.SnoozeDelayMin, constants.MaxSnoozes)
		ctx.Printf("  Challenge Time Limit: %d sec\n", settings.ChallengeTimeLimitSec)
		ctx.Printf("  Default Difficulty:   %s\n", settings.DefaultDifficulty)
		return nil
	}

	updated := false
	if c.Sound != nil {
		settings.SoundEnabled = *c.Sound
		updated = true
	}
	if c.Vibration != nil {
		settings.VibrationEnabled = *c.Vibration
		updated = true
	}
	if c.DarkTheme != nil {
		settings.DarkTheme = *c.DarkTheme
		updated = true
	}
	if c.BuddyMode != nil {
		settings.BuddyMode = *c.BuddyMode
		updated = true
	}
	if c.SnoozeDelay != nil {
		settings.SnoozeDelayMin = *c.SnoozeDelay
		updated = true
	}
	if c.TimeLimit != nil {
		settings.ChallengeTimeLimitSec = *c.TimeLimit
		updated = true
	}
	if c.Difficulty != nil {
		settings.DefaultDifficulty = constants.Difficulty(*c.Difficulty)
		updated = true
	}

	if updated {
		if err := store.Save(ctx.Ctx, settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		ctx.Println("Settings updated successfully.")
	} else {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}
