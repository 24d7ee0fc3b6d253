package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/snaprise/internal/cli"
	"github.com/julianstephens/snaprise/internal/cli/alarms"
	"github.com/julianstephens/snaprise/internal/cli/backups"
	"github.com/julianstephens/snaprise/internal/cli/barcodes"
	"github.com/julianstephens/snaprise/internal/cli/settings"
	"github.com/julianstephens/snaprise/internal/cli/system"
	"github.com/julianstephens/snaprise/internal/config"
	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/errors"
	"github.com/julianstephens/snaprise/internal/keyring"
	"github.com/julianstephens/snaprise/internal/logger"
	"github.com/julianstephens/snaprise/internal/models"
	"github.com/julianstephens/snaprise/internal/storage"
	"github.com/julianstephens/snaprise/internal/storage/postgres"
	"github.com/julianstephens/snaprise/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite database path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use SNAPRISE_DB_CONNECTION, .pgpass, or the OS keyring instead." type:"string" default:"${default_config}"`
	Debug   bool   `help:"Enable debug logging."`

	Init    system.InitCmd    `cmd:"" help:"Initialize snaprise storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Apply pending database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks on storage and alarms."`
	Inspect struct {
		DBPath   system.InspectDBPathCmd   `cmd:"" name:"db-path" help:"Show database path."`
		Alarm    system.InspectAlarmCmd    `cmd:"" help:"Dump an alarm as JSON."`
		Settings system.InspectSettingsCmd `cmd:"" help:"Dump settings as JSON."`
	} `cmd:"" help:"Inspect stored data for troubleshooting."`
	Alarm struct {
		List   alarms.AlarmListCmd   `cmd:"" help:"List alarms." default:"1"`
		Add    alarms.AlarmAddCmd    `cmd:"" help:"Add an alarm."`
		Edit   alarms.AlarmEditCmd   `cmd:"" help:"Edit an existing alarm."`
		Toggle alarms.AlarmToggleCmd `cmd:"" help:"Switch an alarm on or off."`
		Delete alarms.AlarmDeleteCmd `cmd:"" help:"Delete an alarm and its barcode."`
	} `cmd:"" help:"Manage alarms."`
	Barcode struct {
		Set   barcodes.BarcodeSetCmd   `cmd:"" help:"Register the barcode that dismisses an alarm."`
		Show  barcodes.BarcodeShowCmd  `cmd:"" help:"Show an alarm's barcode."`
		Clear barcodes.BarcodeClearCmd `cmd:"" help:"Remove an alarm's barcode."`
	} `cmd:"" help:"Manage alarm barcodes."`
	Riddle   system.RiddleCmd     `cmd:"" help:"Print riddles from the riddle bank."`
	Ring     system.RingCmd       `cmd:"" help:"Ring an alarm now."`
	Watch    system.WatchCmd      `cmd:"" help:"Run alarms in the foreground."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Keyring  struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
}

// openStore picks the backend. An explicit PostgreSQL --config wins, then
// SNAPRISE_DB_CONNECTION and the keyring; otherwise the SQLite file is used.
func openStore(flag string, env config.Env) (storage.Provider, error) {
	if config.IsPostgres(flag) {
		if err := postgres.ValidateConnString(flag); err != nil {
			if stderrors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, errors.Usage(fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed on the command line; " +
					"use 'snaprise keyring set', SNAPRISE_DB_CONNECTION or a .pgpass file"))
			}
			return nil, errors.Usage(err)
		}
		return postgres.New(flag), nil
	}

	if flag == constants.DefaultConfigPath {
		conn, ok, err := keyring.ResolveConnectionString("", env.DBConnection)
		if err != nil {
			return nil, err
		}
		if ok {
			return postgres.New(conn), nil
		}
	}

	path, err := config.ExpandPath(flag)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

// needsStore reports whether the store must be loaded before the command
// runs. doctor loads it itself so it can report the failure.
func needsStore(command string) bool {
	name, _, _ := strings.Cut(command, " ")
	return name != "init" && name != "keyring" && name != "doctor"
}

func run(kctx *kong.Context, env config.Env) error {
	store, err := openStore(CLI.Config, env)
	if err != nil {
		return err
	}

	storePath := ""
	if _, ok := store.(*sqlite.Store); ok {
		storePath = store.GetConfigPath()
	}
	configDir, err := env.ConfigDirFor(storePath)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug || env.Debug, ConfigDir: configDir}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if needsStore(kctx.Command()) {
		if err := store.Load(); err != nil {
			return err
		}
	}
	defer store.Close()

	err = kctx.Run(cli.NewContext(ctx, store, env))
	if stderrors.Is(err, models.ErrValidation) {
		return errors.Usage(err)
	}
	return err
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Alarm clock that only stops once you solve a wake-up challenge"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)

	env, err := config.Load()
	if err != nil {
		errors.Fatal(err)
	}
	errors.Fatal(run(kctx, env))
}
