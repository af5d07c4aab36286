package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"devhours-api/internal/pkg/config"
	"devhours-api/internal/usecase/commands"

	"github.com/cockroachdb/errors"
	"go.uber.org/fx"
)

var SchedulerModule = fx.Module("scheduler",
	fx.Invoke(StartSyncScheduler),
)

// StartSyncScheduler runs the event sync on a fixed interval. The admin
// trigger shares the same single-flight guard, so an overlapping tick just
// logs and waits for the next one.
func StartSyncScheduler(lc fx.Lifecycle, cfg config.Config, sync commands.SyncCommands, logger *slog.Logger) {
	if !cfg.Sync.Enabled {
		logger.Info("sync scheduler disabled")
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go runSyncLoop(cfg.Sync.Interval, sync, logger, stop, done)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(stop)
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func runSyncLoop(interval time.Duration, sync commands.SyncCommands, logger *slog.Logger, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runOnce(sync, logger)

	for {
		select {
		case <-ticker.C:
			runOnce(sync, logger)
		case <-stop:
			return
		}
	}
}

func runOnce(sync commands.SyncCommands, logger *slog.Logger) {
	summary, err := sync.Run(context.Background())
	if err != nil {
		if errors.Is(err, commands.ErrSyncInProgress) {
			logger.Debug("sync already running, skipping tick")
			return
		}
		logger.Error("scheduled sync failed", "error", err)
		return
	}

	if summary.UpToDate {
		logger.Debug("sync up to date", "from_block", summary.FromBlock)
		return
	}

	logger.Info("scheduled sync completed",
		"from_block", summary.FromBlock,
		"to_block", summary.ToBlock,
		"purchases", summary.Purchases,
		"redemptions", summary.Redemptions,
		"skipped", summary.Skipped,
	)
}
