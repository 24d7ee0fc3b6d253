package system

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/snaprise/internal/alarms"
	"github.com/julianstephens/snaprise/internal/cli"
	"github.com/julianstephens/snaprise/internal/config"
	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/models"
	"github.com/julianstephens/snaprise/internal/storage"
	"github.com/julianstephens/snaprise/internal/storage/sqlite"
)

func TestDoctorHealthyMemoryStore(t *testing.T) {
	var out bytes.Buffer
	ctx := cli.NewContext(context.Background(), storage.NewMemoryStore(), config.Env{})
	ctx.Out = &out

	cmd := DoctorCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v\n%s", err, out.String())
	}
	for _, want := range []string{
		"✓ Storage reachable: OK",
		"⊘ Schema version: SKIPPED (no schema for this backend)",
		"⊘ Backups present: SKIPPED (not a SQLite database)",
		"✓ Alarm records: OK",
		"All diagnostics passed!",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDoctorOrphanedBarcodeWarns(t *testing.T) {
	var out bytes.Buffer
	ctx := cli.NewContext(context.Background(), storage.NewMemoryStore(), config.Env{})
	ctx.Out = &out
	if err := ctx.Barcodes().Put(ctx.Ctx, "ghost", "ITEM-42"); err != nil {
		t.Fatal(err)
	}

	cmd := DoctorCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "⚠ Orphaned barcodes: WARNING") {
		t.Errorf("output = %s", out.String())
	}
}

func TestDoctorActiveBarcodeAlarmWithoutCode(t *testing.T) {
	var out bytes.Buffer
	store := storage.NewMemoryStore()
	ctx := cli.NewContext(context.Background(), store, config.Env{})
	ctx.Out = &out

	id := alarms.NewID()
	if err := ctx.Barcodes().Put(ctx.Ctx, id, "ITEM-42"); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Alarms().Create(ctx.Ctx, alarms.Spec{
		ID:        id,
		Time:      "06:30",
		Days:      []time.Weekday{time.Monday},
		Active:    true,
		Challenge: models.BarcodeChallenge(),
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.Remove(ctx.Ctx, constants.BarcodeKeyPrefix+id); err != nil {
		t.Fatal(err)
	}

	cmd := DoctorCmd{}
	if err := cmd.Run(ctx); err == nil {
		t.Fatal("Run() passed with an active barcode alarm missing its code")
	}
	if !strings.Contains(out.String(), "❌ Alarm records: FAIL") {
		t.Errorf("output = %s", out.String())
	}
}

func TestDoctorSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "snaprise.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	var out bytes.Buffer
	ctx := cli.NewContext(context.Background(), store, config.Env{})
	ctx.Out = &out

	cmd := DoctorCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "✓ Schema version: OK") {
		t.Errorf("output missing schema check:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "⚠ Backups present: WARNING") {
		t.Errorf("output missing backup warning:\n%s", out.String())
	}
}

func TestDoctorUninitializedSQLite(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "missing.db"))
	var out bytes.Buffer
	ctx := cli.NewContext(context.Background(), store, config.Env{})
	ctx.Out = &out

	cmd := DoctorCmd{}
	if err := cmd.Run(ctx); err == nil {
		t.Fatal("Run() passed without a database")
	}
	if !strings.Contains(out.String(), "⊘ Alarm records: SKIPPED (storage not reachable)") {
		t.Errorf("output = %s", out.String())
	}
}
