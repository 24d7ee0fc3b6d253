package alarms

import (
	"errors"
	"fmt"

	"github.com/julianstephens/snaprise/internal/cli"

	repo "github.com/julianstephens/snaprise/internal/alarms"
)

type AlarmToggleCmd struct {
	ID    string `arg:"" help:"Alarm ID."`
	State string `arg:"" enum:"on,off" help:"Switch the alarm on or off."`
}

func (c *AlarmToggleCmd) Run(ctx *cli.Context) error {
	a, err := ctx.Alarms().Toggle(ctx.Ctx, c.ID, c.State == "on")
	if err != nil {
		if errors.Is(err, repo.ErrBarcodeMissing) {
			return fmt.Errorf("%w; run 'snaprise barcode set %s CODE' first", err, c.ID)
		}
		return err
	}
	ctx.Printf("✓ Alarm %s is now %s\n", a.ID, c.State)
	return nil
}

type AlarmDeleteCmd struct {
	ID string `arg:"" help:"Alarm ID."`
}

func (c *AlarmDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Alarms().Remove(ctx.Ctx, c.ID); err != nil {
		return fmt.Errorf("failed to delete alarm: %w", err)
	}
	ctx.Printf("✓ Deleted alarm %s\n", c.ID)
	return nil
}
