package system

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/snaprise/internal/cli"
	"github.com/julianstephens/snaprise/internal/models"
	"github.com/julianstephens/snaprise/internal/scheduler"
)

type InspectDBPathCmd struct{}

func (cmd *InspectDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{"path": ctx.Store.GetConfigPath()})
}

type InspectAlarmCmd struct {
	ID string `arg:"" help:"Alarm ID."`
}

type alarmDump struct {
	models.Alarm
	HasBarcode  bool   `json:"has_barcode"`
	NextTrigger string `json:"next_trigger,omitempty"`
}

func (cmd *InspectAlarmCmd) Run(ctx *cli.Context) error {
	a, err := ctx.Alarms().Get(ctx.Ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("failed to find alarm: %w", err)
	}
	has, err := ctx.Barcodes().Has(ctx.Ctx, a.ID)
	if err != nil {
		return err
	}

	dump := alarmDump{Alarm: a, HasBarcode: has}
	if a.Active {
		if next, err := scheduler.NextTrigger(a.Time, a.Days, time.Now()); err == nil {
			dump.NextTrigger = next.Format(time.RFC3339)
		}
	}
	return printJSON(ctx, dump)
}

type InspectSettingsCmd struct{}

func (cmd *InspectSettingsCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Settings().Get(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return printJSON(ctx, st)
}

func printJSON(ctx *cli.Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}
