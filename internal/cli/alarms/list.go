package alarms

import (
	"fmt"
	"time"

	"github.com/julianstephens/snaprise/internal/cli"
	"github.com/julianstephens/snaprise/internal/scheduler"
)

type AlarmListCmd struct {
	ActiveOnly bool `help:"Show only active alarms."`
}

func (c *AlarmListCmd) Run(ctx *cli.Context) error {
	alarms, err := ctx.Alarms().List(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to get alarms: %w", err)
	}
	if len(alarms) == 0 {
		ctx.Println("No alarms found")
		return nil
	}

	codes := ctx.Barcodes()
	now := time.Now()
	ctx.Println("Alarms:")
	for _, a := range alarms {
		if c.ActiveOnly && !a.Active {
			continue
		}
		hasCode, err := codes.Has(ctx.Ctx, a.ID)
		if err != nil {
			return err
		}
		ctx.Printf("%s\n", a.ID)
		printAlarm(ctx, a, hasCode)
		if a.Active {
			if next, err := scheduler.NextTrigger(a.Time, a.Days, now); err == nil {
				ctx.Printf("      next: %s\n", next.Format("Mon Jan 2 15:04"))
			}
		}
	}

	return nil
}
