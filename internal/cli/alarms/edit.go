package alarms

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/snaprise/internal/cli"
	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/tui/setup"
)

type AlarmEditCmd struct {
	ID           string  `arg:"" help:"Alarm ID."`
	Time         *string `short:"t" help:"New time of day (HH:MM)."`
	Days         *string `short:"d" help:"New comma-separated weekdays."`
	Label        *string `short:"l" help:"New label. Pass an empty string to clear it."`
	Challenge    *string `short:"c" help:"New wake-up challenge (barcode|riddle)."`
	Difficulty   *string `help:"New riddle difficulty (easy|medium|hard)."`
	Barcode      *string `short:"b" help:"Replace the alarm's barcode."`
	BarcodeLabel *string `help:"Replace the barcode label."`
	Active       *bool   `help:"Set active status."`
	Interactive  bool    `short:"i" help:"Edit the alarm with a form."`
}

func (c *AlarmEditCmd) Run(ctx *cli.Context) error {
	alarms := ctx.Alarms()
	a, err := alarms.Get(ctx.Ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to find alarm: %w", err)
	}
	st, err := ctx.Settings().Get(ctx.Ctx)
	if err != nil {
		return err
	}

	codes := ctx.Barcodes()
	code, _, err := codes.Get(ctx.Ctx, a.ID)
	if err != nil {
		return err
	}
	codeLabel, err := codes.Label(ctx.Ctx, a.ID)
	if err != nil {
		return err
	}

	fm := setup.FromAlarm(a, st, code, codeLabel)
	if c.Interactive {
		if err := setup.NewAlarmForm(fm).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				ctx.Println("Cancelled.")
				return nil
			}
			return err
		}
	} else if err := c.apply(fm); err != nil {
		return err
	}

	if fm.Challenge == constants.ChallengeBarcode && fm.Barcode != "" && (fm.Barcode != code || fm.BarcodeLabel != codeLabel) {
		if err := codes.PutWithLabel(ctx.Ctx, a.ID, fm.Barcode, fm.BarcodeLabel); err != nil {
			return err
		}
	}

	updated, err := alarms.Update(ctx.Ctx, a.ID, fm.Spec(a.ID))
	if err != nil {
		return err
	}
	ctx.Printf("✓ Updated alarm %s\n", updated.ID)
	printAlarm(ctx, updated, fm.Barcode != "")
	return nil
}

// apply copies the flags that were given onto the prefilled form.
func (c *AlarmEditCmd) apply(fm *setup.AlarmForm) error {
	if c.Time != nil {
		if _, err := time.Parse(constants.TimeFormat, *c.Time); err != nil {
			return fmt.Errorf("invalid time format (expected HH:MM): %w", err)
		}
		fm.Time = *c.Time
	}
	if c.Days != nil {
		days, err := cli.ParseWeekdays(*c.Days)
		if err != nil {
			return err
		}
		fm.Days = days
	}
	if c.Label != nil {
		fm.Label = *c.Label
	}
	if c.Challenge != nil || c.Difficulty != nil {
		kind := string(fm.Challenge)
		if c.Challenge != nil {
			kind = *c.Challenge
		}
		difficulty := ""
		if c.Difficulty != nil {
			difficulty = *c.Difficulty
		}
		ch, err := cli.ParseChallenge(kind, difficulty, fm.Difficulty)
		if err != nil {
			return err
		}
		fm.Challenge = ch.Kind
		if ch.IsRiddle() {
			fm.Difficulty = ch.Difficulty
		}
	}
	if c.Barcode != nil {
		fm.Barcode = *c.Barcode
	}
	if c.BarcodeLabel != nil {
		fm.BarcodeLabel = *c.BarcodeLabel
	}
	if c.Active != nil {
		fm.Active = *c.Active
	}
	return nil
}
