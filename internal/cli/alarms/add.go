package alarms

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/snaprise/internal/cli"
	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/logger"
	"github.com/julianstephens/snaprise/internal/models"
	"github.com/julianstephens/snaprise/internal/tui/setup"

	repo "github.com/julianstephens/snaprise/internal/alarms"
)

type AlarmAddCmd struct {
	Time         string `short:"t" help:"Time of day (HH:MM)."`
	Days         string `short:"d" help:"Comma-separated weekdays (mon,wed or 1,3; also daily, weekdays, weekends)." default:"weekdays"`
	Label        string `short:"l" help:"Optional label."`
	Challenge    string `short:"c" help:"Wake-up challenge (barcode|riddle)." default:"riddle"`
	Difficulty   string `help:"Riddle difficulty (easy|medium|hard). Defaults to the configured difficulty."`
	Barcode      string `short:"b" help:"Barcode the alarm must be dismissed with."`
	BarcodeLabel string `help:"Label for the barcode, e.g. 'kitchen coffee tin'."`
	Inactive     bool   `help:"Create the alarm switched off."`
	Interactive  bool   `short:"i" help:"Fill in the alarm with a form."`
}

func (c *AlarmAddCmd) Validate() error {
	if c.Interactive {
		return nil
	}
	if c.Time == "" {
		return fmt.Errorf("--time is required unless --interactive is set")
	}
	if _, err := time.Parse(constants.TimeFormat, c.Time); err != nil {
		return fmt.Errorf("invalid time format (expected HH:MM): %w", err)
	}
	if strings.EqualFold(c.Challenge, string(constants.ChallengeBarcode)) && c.Barcode == "" && !c.Inactive {
		return fmt.Errorf("--barcode is required for an active barcode alarm")
	}
	return nil
}

func (c *AlarmAddCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Settings().Get(ctx.Ctx)
	if err != nil {
		return err
	}

	var (
		spec            repo.Spec
		code, codeLabel string
	)
	if c.Interactive {
		fm := setup.Defaults(st)
		c.prefill(fm)
		if err := setup.NewAlarmForm(fm).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				ctx.Println("Cancelled.")
				return nil
			}
			return err
		}
		spec = fm.Spec(repo.NewID())
		code, codeLabel = fm.Barcode, fm.BarcodeLabel
	} else {
		days, err := cli.ParseWeekdays(c.Days)
		if err != nil {
			return err
		}
		ch, err := cli.ParseChallenge(c.Challenge, c.Difficulty, st.DefaultDifficulty)
		if err != nil {
			return err
		}
		spec = repo.Spec{
			ID:        repo.NewID(),
			Time:      c.Time,
			Days:      days,
			Active:    !c.Inactive,
			Label:     c.Label,
			Challenge: ch,
		}
		code, codeLabel = c.Barcode, c.BarcodeLabel
	}

	if err := spec.Validate(); err != nil {
		return err
	}
	// The code has to exist before an active barcode alarm can be created.
	if spec.Challenge.IsBarcode() && code != "" {
		if err := ctx.Barcodes().PutWithLabel(ctx.Ctx, spec.ID, code, codeLabel); err != nil {
			return err
		}
	}

	a, err := ctx.Alarms().Create(ctx.Ctx, spec)
	if err != nil {
		if code != "" {
			if rmErr := ctx.Barcodes().Remove(ctx.Ctx, spec.ID); rmErr != nil {
				logger.Warn("Failed to remove barcode after create failed", "alarm", spec.ID, "error", rmErr)
			}
		}
		return err
	}

	ctx.Printf("✓ Created alarm %s\n", a.ID)
	printAlarm(ctx, a, code != "")
	return nil
}

// prefill copies any flags given alongside --interactive into the form.
func (c *AlarmAddCmd) prefill(fm *setup.AlarmForm) {
	if c.Time != "" {
		fm.Time = c.Time
	}
	if days, err := cli.ParseWeekdays(c.Days); err == nil && len(days) > 0 {
		fm.Days = days
	}
	fm.Label = c.Label
	if kind := constants.ChallengeKind(strings.ToLower(c.Challenge)); kind == constants.ChallengeBarcode {
		fm.Challenge = kind
	}
	if d := constants.Difficulty(strings.ToLower(c.Difficulty)); models.ValidDifficulty(d) {
		fm.Difficulty = d
	}
	fm.Barcode = c.Barcode
	fm.BarcodeLabel = c.BarcodeLabel
	fm.Active = !c.Inactive
}

func printAlarm(ctx *cli.Context, a models.Alarm, hasCode bool) {
	status := "on"
	if !a.Active {
		status = "off"
	}
	ctx.Printf("  %s  %s  [%s]  %s  %s\n", a.Time, a.DisplayName(), status, a.FormatDays(), a.Challenge.String())
	if a.Challenge.IsBarcode() && !hasCode {
		ctx.Printf("      no barcode set: run 'snaprise barcode set %s CODE' before switching it on\n", a.ID)
	}
}
