package app

import (
	"fmt"
	"net/http"

	"github.com/go-co-op/gocron/v2"
	"github.com/jmoiron/sqlx"
	"github.com/vkolarov/bgmafia-tracker/internal/config"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/player"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/weeklyranking"
	"github.com/vkolarov/bgmafia-tracker/internal/infrastructure/repository/memory"
	"github.com/vkolarov/bgmafia-tracker/internal/infrastructure/repository/postgres"
	"github.com/vkolarov/bgmafia-tracker/internal/interfaces/httpapi"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/cache"
	idgen "github.com/vkolarov/bgmafia-tracker/internal/platform/id"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/logging"
	"github.com/vkolarov/bgmafia-tracker/internal/usecase"
)

// App bundles the HTTP server with the resources it owns.
type App struct {
	Server    *http.Server
	Scheduler gocron.Scheduler
	DB        *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		db          *sqlx.DB
		playerRepo  player.Repository
		statRepo    dailystat.Repository
		rankingRepo weeklyranking.Repository
	)
	if cfg.DBURL != "" {
		conn, err := openDatabase(cfg)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db = conn
		playerRepo = postgres.NewPlayerRepository(db)
		statRepo = postgres.NewDailyStatRepository(db)
		rankingRepo = postgres.NewWeeklyRankingRepository(db)
		logger.Info("storage backend", "kind", "postgres", "db_name", dbNameFromURL(cfg.DBURL))
	} else {
		playerRepo = memory.NewPlayerRepository()
		statRepo = memory.NewDailyStatRepository()
		rankingRepo = memory.NewWeeklyRankingRepository()
		logger.Info("storage backend", "kind", "memory")
	}

	viewCache := cache.NewStore(cfg.CacheTTL)

	identitySvc := usecase.NewIdentityService(playerRepo, statRepo, rankingRepo, idgen.NewUUIDGenerator(), logger)
	dailySvc := usecase.NewReconcileService(identitySvc, statRepo, viewCache, logger)
	weeklySvc := usecase.NewWeeklyService(identitySvc, statRepo, rankingRepo, viewCache, logger)
	mergeSvc := usecase.NewMergeService(playerRepo, statRepo, rankingRepo, viewCache, logger)
	rankingSvc := usecase.NewRankingService(playerRepo, statRepo, rankingRepo, viewCache, logger)

	handler := httpapi.NewHandler(identitySvc, dailySvc, weeklySvc, mergeSvc, rankingSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	scheduler, err := newMergeScheduler(cfg, mergeSvc, logger)
	if err != nil {
		return nil, fmt.Errorf("build merge scheduler: %w", err)
	}

	return &App{
		Server:    server,
		Scheduler: scheduler,
		DB:        db,
	}, nil
}

// Close releases resources other than the HTTP server, which the caller
// shuts down with its own deadline.
func (a *App) Close() error {
	if a.Scheduler != nil {
		if err := a.Scheduler.Shutdown(); err != nil {
			return err
		}
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
