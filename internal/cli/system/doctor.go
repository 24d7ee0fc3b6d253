package system

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/snaprise/internal/cli"
	"github.com/julianstephens/snaprise/internal/constants"
)

// schemaReporter is implemented by the database backends.
type schemaReporter interface {
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}

var errSkipped = errors.New("skipped")

type DoctorCmd struct{}

type diagnostic struct {
	name      string
	warnOnly  bool
	needsData bool
	run       func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []diagnostic{
		{name: "Schema version", needsData: true, run: checkSchemaVersion},
		{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
		{name: "Settings", needsData: true, run: checkSettings},
		{name: "Alarm records", needsData: true, run: checkAlarms},
		{name: "Orphaned barcodes", warnOnly: true, needsData: true, run: checkOrphanedBarcodes},
		{name: "Clock/timezone", run: func(*cli.Context) error { return checkClockTimezone() }},
	}

	hasError := false
	reachable := true
	if err := checkStoreReachable(ctx); err != nil {
		ctx.Printf("❌ Storage reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		reachable = false
	} else {
		ctx.Printf("✓ Storage reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsData && !reachable {
			ctx.Printf("⊘ %s: SKIPPED (storage not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkipped):
			ctx.Printf("⊘ %s: SKIPPED (%s)\n", c.name, strings.TrimSuffix(err.Error(), ": "+errSkipped.Error()))
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	if _, err := ctx.Store.Keys(ctx.Ctx, constants.SettingsKey); err != nil {
		return fmt.Errorf("failed to query storage: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	reporter, ok := ctx.Store.(schemaReporter)
	if !ok {
		return fmt.Errorf("no schema for this backend: %w", errSkipped)
	}
	current, latest, err := reporter.SchemaVersion(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	switch {
	case current > latest:
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	case current < latest:
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if errors.Is(err, cli.ErrNoBackups) {
		return fmt.Errorf("not a SQLite database: %w", errSkipped)
	}
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	st, err := ctx.Settings().Get(ctx.Ctx)
	if err != nil {
		return err
	}
	return st.Validate()
}

// checkAlarms re-validates every stored alarm, including the rules an active
// alarm must meet.
func checkAlarms(ctx *cli.Context) error {
	list, err := ctx.Alarms().List(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to list alarms: %w", err)
	}
	codes := ctx.Barcodes()
	for _, a := range list {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("alarm %s: %w", a.ID, err)
		}
		if !a.Active {
			continue
		}
		if err := a.ValidateActivation(); err != nil {
			return fmt.Errorf("alarm %s: %w", a.ID, err)
		}
		if a.Challenge.IsBarcode() {
			has, err := codes.Has(ctx.Ctx, a.ID)
			if err != nil {
				return err
			}
			if !has {
				return fmt.Errorf("alarm %s is an active barcode alarm without a barcode", a.ID)
			}
		}
	}
	return nil
}

func checkOrphanedBarcodes(ctx *cli.Context) error {
	list, err := ctx.Alarms().List(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to list alarms: %w", err)
	}
	known := make(map[string]bool, len(list))
	for _, a := range list {
		known[a.ID] = true
	}

	keys, err := ctx.Store.Keys(ctx.Ctx, constants.BarcodeKeyPrefix)
	if err != nil {
		return err
	}
	orphans := 0
	for _, key := range keys {
		id, isLabel := strings.CutPrefix(key, constants.BarcodeLabelKeyPrefix)
		if !isLabel {
			id = strings.TrimPrefix(key, constants.BarcodeKeyPrefix)
		}
		if !known[id] {
			orphans++
		}
	}
	if orphans > 0 {
		return fmt.Errorf("found %d barcode entries for alarms that no longer exist", orphans)
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
