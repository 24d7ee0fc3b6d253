package barcodes

import (
	"fmt"

	"github.com/julianstephens/snaprise/internal/cli"
)

type BarcodeSetCmd struct {
	ID    string `arg:"" help:"Alarm ID."`
	Code  string `arg:"" help:"Decoded barcode value. Matching is exact and case-sensitive."`
	Label string `short:"l" help:"Where the barcode lives, e.g. 'kitchen coffee tin'."`
}

func (c *BarcodeSetCmd) Run(ctx *cli.Context) error {
	// Codes may be captured for a reserved ID before the alarm exists, but
	// the CLI only hands out IDs of saved alarms.
	if _, err := ctx.Alarms().Get(ctx.Ctx, c.ID); err != nil {
		return fmt.Errorf("failed to find alarm: %w", err)
	}

	codes := ctx.Barcodes()
	if err := codes.Put(ctx.Ctx, c.ID, c.Code); err != nil {
		return err
	}
	if c.Label != "" {
		if err := codes.PutLabel(ctx.Ctx, c.ID, c.Label); err != nil {
			return err
		}
	}
	ctx.Printf("✓ Barcode saved for alarm %s\n", c.ID)
	return nil
}

type BarcodeShowCmd struct {
	ID string `arg:"" help:"Alarm ID."`
}

func (c *BarcodeShowCmd) Run(ctx *cli.Context) error {
	codes := ctx.Barcodes()
	code, found, err := codes.Get(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}
	if !found {
		ctx.Printf("No barcode set for alarm %s\n", c.ID)
		return nil
	}
	label, err := codes.Label(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}

	ctx.Printf("Barcode: %s\n", code)
	if label != "" {
		ctx.Printf("Label:   %s\n", label)
	}
	return nil
}

type BarcodeClearCmd struct {
	ID string `arg:"" help:"Alarm ID."`
}

func (c *BarcodeClearCmd) Run(ctx *cli.Context) error {
	a, err := ctx.Alarms().Get(ctx.Ctx, c.ID)
	if err == nil && a.Active && a.Challenge.IsBarcode() {
		return fmt.Errorf("alarm %s is an active barcode alarm; switch it off or change its challenge first", c.ID)
	}
	if err := ctx.Barcodes().Remove(ctx.Ctx, c.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Barcode cleared for alarm %s\n", c.ID)
	return nil
}
