package main

import (
	"context"
	"flag"
	"os"

	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"github.com/vkolarov/bgmafia-tracker/internal/config"
	"github.com/vkolarov/bgmafia-tracker/internal/infrastructure/repository/postgres"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/cache"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/logging"
	"github.com/vkolarov/bgmafia-tracker/internal/usecase"
)

// One-shot duplicate merge over the live database. Intended for manual
// cleanup runs; the API exposes the same operation as an internal job.
func main() {
	dryRun := flag.Bool("dry-run", false, "report duplicate groups without modifying rows")
	workers := flag.Int("workers", 0, "worker pool size (0 uses the service default)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer logger.Sync()

	if cfg.DBURL == "" {
		logger.Error("DB_URL is required")
		os.Exit(1)
	}

	db, err := otelsqlx.Connect("postgres", cfg.DBURL)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	playerRepo := postgres.NewPlayerRepository(db)
	statRepo := postgres.NewDailyStatRepository(db)
	rankingRepo := postgres.NewWeeklyRankingRepository(db)
	merge := usecase.NewMergeService(playerRepo, statRepo, rankingRepo, cache.NewStore(cfg.CacheTTL), logger)

	result, err := merge.MergeDuplicates(context.Background(), usecase.MergeInput{
		MaxWorkers: *workers,
		DryRun:     *dryRun,
	})
	if err != nil {
		logger.Error("merge duplicates failed", "error", err)
		os.Exit(1)
	}

	logger.Info("merge duplicates finished",
		"player_count", result.PlayerCount,
		"group_count", result.GroupCount,
		"merged_players", result.MergedPlayers,
		"failed_count", result.FailedCount,
		"dry_run", result.DryRun,
	)
	for _, group := range result.Groups {
		logger.Info("merge group",
			"name", group.Name,
			"status", group.Status,
			"canonical_id", group.CanonicalID,
			"duplicates", len(group.DuplicateIDs),
			"stat_rows_merged", group.StatRowsMerged,
			"stat_rows_moved", group.StatRowsMoved,
		)
	}
}
