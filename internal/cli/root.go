package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/snaprise/internal/alarms"
	"github.com/julianstephens/snaprise/internal/backup"
	"github.com/julianstephens/snaprise/internal/barcode"
	"github.com/julianstephens/snaprise/internal/challenge"
	"github.com/julianstephens/snaprise/internal/config"
	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/logger"
	"github.com/julianstephens/snaprise/internal/models"
	"github.com/julianstephens/snaprise/internal/riddles"
	"github.com/julianstephens/snaprise/internal/scheduler"
	"github.com/julianstephens/snaprise/internal/settings"
	"github.com/julianstephens/snaprise/internal/storage"
	"github.com/julianstephens/snaprise/internal/storage/sqlite"
)

// ErrNoBackups is returned by backup commands on non-SQLite storage.
var ErrNoBackups = errors.New("backups are only supported for SQLite storage")

// Context is passed to every command's Run method.
type Context struct {
	Ctx   context.Context
	Store storage.Provider
	Env   config.Env
	// Scheduler arms alarms as they are saved. One-shot commands leave it as
	// scheduler.Nop; only `watch` installs a live one.
	Scheduler scheduler.Scheduler
	Out       io.Writer
	In        io.Reader
}

func NewContext(ctx context.Context, store storage.Provider, env config.Env) *Context {
	return &Context{
		Ctx:       ctx,
		Store:     store,
		Env:       env,
		Scheduler: scheduler.Nop{},
		Out:       os.Stdout,
		In:        os.Stdin,
	}
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

func (c *Context) Barcodes() *barcode.Store {
	return barcode.NewStore(c.Store)
}

func (c *Context) Settings() *settings.Store {
	return settings.NewStore(c.Store)
}

func (c *Context) Alarms() *alarms.Repository {
	return alarms.NewRepository(c.Store, c.Barcodes(), c.Scheduler)
}

// RiddleBank uses the riddle pack named by SNAPRISE_RIDDLE_PACK when set.
func (c *Context) RiddleBank() (*riddles.Bank, error) {
	if c.Env.RiddlePack == "" {
		return riddles.NewBank(), nil
	}
	catalog, err := riddles.LoadFile(c.Env.RiddlePack)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded riddle pack", "path", c.Env.RiddlePack, "riddles", len(catalog))
	return riddles.NewBank(riddles.WithCatalog(catalog)), nil
}

func (c *Context) Resolver() (*challenge.Resolver, error) {
	bank, err := c.RiddleBank()
	if err != nil {
		return nil, err
	}
	return challenge.NewResolver(c.Barcodes(), bank, c.Settings()), nil
}

// BackupManager returns a manager for the SQLite database file.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil, ErrNoBackups
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr, err := c.BackupManager()
	if err != nil {
		return
	}
	if _, err := mgr.Create(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

var dayMap = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

var dayGroups = map[string][]time.Weekday{
	"daily":    {time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
	"weekdays": {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	"weekends": {time.Sunday, time.Saturday},
}

// ParseWeekdays parses a comma-separated list of weekday names, numbers
// (0=Sunday..6=Saturday) or the groups daily, weekdays and weekends. An
// empty string yields no days.
func ParseWeekdays(s string) ([]time.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var weekdays []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if wd, ok := dayMap[part]; ok {
			weekdays = append(weekdays, wd)
			continue
		}
		if group, ok := dayGroups[part]; ok {
			weekdays = append(weekdays, group...)
			continue
		}
		// Try parsing as number (0=Sunday, 6=Saturday)
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		weekdays = append(weekdays, time.Weekday(num))
	}

	return models.NormalizeDays(weekdays), nil
}

// ParseChallenge builds an alarm challenge from flag values. Riddles with
// no difficulty use fallback.
func ParseChallenge(kind, difficulty string, fallback constants.Difficulty) (models.Challenge, error) {
	switch constants.ChallengeKind(strings.ToLower(strings.TrimSpace(kind))) {
	case constants.ChallengeBarcode:
		if difficulty != "" {
			return models.Challenge{}, fmt.Errorf("--difficulty only applies to riddle challenges")
		}
		return models.BarcodeChallenge(), nil
	case constants.ChallengeRiddle:
		d := constants.Difficulty(strings.ToLower(strings.TrimSpace(difficulty)))
		if d == "" {
			d = fallback
		}
		if !models.ValidDifficulty(d) {
			return models.Challenge{}, fmt.Errorf("invalid difficulty: %s (expected easy, medium or hard)", difficulty)
		}
		return models.RiddleChallenge(d), nil
	default:
		return models.Challenge{}, fmt.Errorf("invalid challenge: %s (expected barcode or riddle)", kind)
	}
}
