package app

import (
	"context"

	"github.com/go-co-op/gocron/v2"
	"github.com/vkolarov/bgmafia-tracker/internal/config"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/logging"
	"github.com/vkolarov/bgmafia-tracker/internal/usecase"
)

// newMergeScheduler runs the duplicate merge periodically when enabled.
// Returns nil when the job is disabled.
func newMergeScheduler(cfg config.Config, merge *usecase.MergeService, logger *logging.Logger) (gocron.Scheduler, error) {
	if !cfg.MergeJobEnabled {
		logger.Info("merge job disabled", "reason", "MERGE_JOB_ENABLED=false")
		return nil, nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.MergeJobInterval),
		gocron.NewTask(func() {
			ctx := context.Background()
			result, err := merge.MergeDuplicates(ctx, usecase.MergeInput{
				MaxWorkers: cfg.MergeJobMaxWorkers,
			})
			if err != nil {
				logger.ErrorContext(ctx, "scheduled merge job failed", "error", err)
				return
			}
			logger.InfoContext(ctx, "scheduled merge job finished",
				"group_count", result.GroupCount,
				"merged_players", result.MergedPlayers,
				"failed_count", result.FailedCount,
			)
		}),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}

	scheduler.Start()
	logger.Info("merge job scheduled",
		"interval", cfg.MergeJobInterval.String(),
		"max_workers", cfg.MergeJobMaxWorkers,
	)

	return scheduler, nil
}
