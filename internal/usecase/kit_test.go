package usecase

import (
	"time"

	"github.com/vkolarov/bgmafia-tracker/internal/infrastructure/repository/memory"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/cache"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/id"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/logging"
)

// testKit wires every service over shared in-memory repositories.
type testKit struct {
	players  *memory.PlayerRepository
	stats    *memory.DailyStatRepository
	weeks    *memory.WeeklyRankingRepository
	store    *cache.Store
	identity *IdentityService
	daily    *ReconcileService
	weekly   *WeeklyService
	merge    *MergeService
	ranking  *RankingService
}

func newTestKit() *testKit {
	players := memory.NewPlayerRepository()
	stats := memory.NewDailyStatRepository()
	weeks := memory.NewWeeklyRankingRepository()
	store := cache.NewStore(time.Minute)
	logger := logging.NewNop()

	identity := NewIdentityService(players, stats, weeks, id.NewUUIDGenerator(), logger)
	return &testKit{
		players:  players,
		stats:    stats,
		weeks:    weeks,
		store:    store,
		identity: identity,
		daily:    NewReconcileService(identity, stats, store, logger),
		weekly:   NewWeeklyService(identity, stats, weeks, store, logger),
		merge:    NewMergeService(players, stats, weeks, store, logger),
		ranking:  NewRankingService(players, stats, weeks, store, logger),
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
