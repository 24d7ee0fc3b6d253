package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/snaprise/internal/alarms"
	"github.com/julianstephens/snaprise/internal/cli"
	"github.com/julianstephens/snaprise/internal/clock"
	"github.com/julianstephens/snaprise/internal/logger"
	"github.com/julianstephens/snaprise/internal/notifier"
	"github.com/julianstephens/snaprise/internal/scheduler"
)

// WatchCmd keeps every active alarm armed and opens the wake screen when
// one fires. Alarms edited from another shell are picked up on the next poll.
type WatchCmd struct {
	Poll     time.Duration `default:"30s" help:"How often to re-read alarms from storage."`
	NoNotify bool          `help:"Do not send desktop notifications through the tray app."`
}

func (c *WatchCmd) Validate() error {
	if c.Poll < time.Second {
		return fmt.Errorf("poll interval must be at least 1s")
	}
	return nil
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	fired := make(chan string, 8)
	sched := scheduler.NewLocal(clock.Real{}, func(alarmID string, at time.Time) {
		select {
		case fired <- alarmID:
		default:
			logger.Warn("Dropped alarm firing, too many pending", "alarm", alarmID, "at", at)
		}
	})
	defer sched.Close()

	ctx.Scheduler = sched
	repo := ctx.Alarms()
	n, err := repo.Restore(ctx.Ctx)
	if err != nil {
		return err
	}
	ctx.Printf("Watching %d active alarm(s). Press ctrl+c to stop.\n", n)
	ctx.PerformAutomaticBackup()

	var notify notifier.Notifier
	if !c.NoNotify {
		notify = notifier.New()
	}

	g, gctx := errgroup.WithContext(ctx.Ctx)
	g.Go(func() error {
		return c.poll(gctx, repo)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case id := <-fired:
				c.ring(ctx, repo, notify, id)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (c *WatchCmd) poll(ctx context.Context, repo *alarms.Repository) error {
	ticker := time.NewTicker(c.Poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n, err := repo.Restore(ctx); err != nil {
				logger.Error("Failed to sync alarms", "error", err)
			} else {
				logger.Debug("Synced alarms", "armed", n)
			}
		}
	}
}

func (c *WatchCmd) ring(ctx *cli.Context, repo *alarms.Repository, notify notifier.Notifier, id string) {
	a, err := repo.Get(ctx.Ctx, id)
	if err != nil {
		logger.Error("Fired alarm could not be loaded", "alarm", id, "error", err)
		return
	}
	if !a.Active {
		return
	}

	if notify != nil {
		nctx, cancel := context.WithTimeout(ctx.Ctx, 5*time.Second)
		if err := notify.Notify(nctx, notifier.AlarmMessage(a)); err != nil {
			if errors.Is(err, notifier.ErrTrayNotRunning) {
				logger.Debug("Tray app not running, skipping notification")
			} else {
				logger.Warn("Failed to send notification", "alarm", id, "error", err)
			}
		}
		cancel()
	}

	dismissed, err := runWakeSession(ctx, a, nil)
	if err != nil {
		logger.Error("Wake session failed", "alarm", id, "error", err)
		return
	}
	logger.Info("Wake session finished", "alarm", id, "dismissed", dismissed)
}
