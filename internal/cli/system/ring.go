package system

import (
	"fmt"

	"github.com/julianstephens/snaprise/internal/cli"
)

// RingCmd runs a wake session immediately, e.g. to try out a challenge.
type RingCmd struct {
	ID    string `arg:"" help:"Alarm ID."`
	Buddy *bool  `help:"Override buddy mode for this session."`
}

func (c *RingCmd) Run(ctx *cli.Context) error {
	a, err := ctx.Alarms().Get(ctx.Ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to find alarm: %w", err)
	}

	dismissed, err := runWakeSession(ctx, a, c.Buddy)
	if err != nil {
		return err
	}
	if dismissed {
		ctx.Println("✓ Good morning!")
	} else {
		ctx.Println("Alarm abandoned before the challenge was completed.")
	}
	return nil
}
