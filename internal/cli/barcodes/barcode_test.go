package barcodes

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/snaprise/internal/alarms"
	"github.com/julianstephens/snaprise/internal/cli"
	"github.com/julianstephens/snaprise/internal/config"
	"github.com/julianstephens/snaprise/internal/models"
	"github.com/julianstephens/snaprise/internal/storage"
)

func setupAlarm(t *testing.T, active bool) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	var out bytes.Buffer
	ctx := cli.NewContext(context.Background(), storage.NewMemoryStore(), config.Env{})
	ctx.Out = &out

	a, err := ctx.Alarms().Create(ctx.Ctx, alarms.Spec{
		Time:      "07:00",
		Days:      []time.Weekday{time.Monday},
		Challenge: models.BarcodeChallenge(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if active {
		if err := ctx.Barcodes().Put(ctx.Ctx, a.ID, "OLD"); err != nil {
			t.Fatal(err)
		}
		if _, err := ctx.Alarms().Toggle(ctx.Ctx, a.ID, true); err != nil {
			t.Fatal(err)
		}
	}
	return ctx, &out, a.ID
}

func TestSetAndShow(t *testing.T) {
	ctx, out, id := setupAlarm(t, false)

	set := BarcodeSetCmd{ID: id, Code: "ITEM-42", Label: "coffee tin"}
	if err := set.Run(ctx); err != nil {
		t.Fatalf("set error = %v", err)
	}

	out.Reset()
	show := BarcodeShowCmd{ID: id}
	if err := show.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "ITEM-42") || !strings.Contains(out.String(), "coffee tin") {
		t.Errorf("show output = %q", out.String())
	}
}

func TestSetUnknownAlarm(t *testing.T) {
	ctx, _, _ := setupAlarm(t, false)
	set := BarcodeSetCmd{ID: "missing", Code: "ITEM-42"}
	if err := set.Run(ctx); err == nil {
		t.Error("set on unknown alarm succeeded")
	}
}

func TestShowMissing(t *testing.T) {
	ctx, out, id := setupAlarm(t, false)
	show := BarcodeShowCmd{ID: id}
	if err := show.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No barcode set") {
		t.Errorf("show output = %q", out.String())
	}
}

func TestClear(t *testing.T) {
	ctx, _, id := setupAlarm(t, true)

	clear := BarcodeClearCmd{ID: id}
	if err := clear.Run(ctx); err == nil {
		t.Fatal("cleared the barcode of an active barcode alarm")
	}

	if _, err := ctx.Alarms().Toggle(ctx.Ctx, id, false); err != nil {
		t.Fatal(err)
	}
	if err := clear.Run(ctx); err != nil {
		t.Fatalf("clear error = %v", err)
	}
	if has, _ := ctx.Barcodes().Has(ctx.Ctx, id); has {
		t.Error("barcode still stored after clear")
	}
}
