package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/weeklyranking"
)

type WeeklyRankingRepository struct {
	mu       sync.RWMutex
	rankings map[string]weeklyranking.WeeklyRanking
	nextID   int
}

func NewWeeklyRankingRepository() *WeeklyRankingRepository {
	return &WeeklyRankingRepository{
		rankings: make(map[string]weeklyranking.WeeklyRanking),
	}
}

func (r *WeeklyRankingRepository) GetByPlayerAndWeek(_ context.Context, playerID string, weekStart, weekEnd time.Time) (weeklyranking.WeeklyRanking, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.rankings {
		if item.PlayerID == playerID && item.WeekStart.Equal(weekStart) && item.WeekEnd.Equal(weekEnd) {
			return item, true, nil
		}
	}
	return weeklyranking.WeeklyRanking{}, false, nil
}

func (r *WeeklyRankingRepository) Insert(_ context.Context, item weeklyranking.WeeklyRanking) (weeklyranking.WeeklyRanking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		r.nextID++
		item.ID = fmt.Sprintf("week-%d", r.nextID)
	}
	r.rankings[item.ID] = item
	return item, nil
}

func (r *WeeklyRankingRepository) UpdateStat(_ context.Context, id string, stat dailystat.StatType, value, gain int64, rankPosition *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.rankings[id]
	if !ok {
		return nil
	}
	item.Values.Set(stat, value)
	item.Gains.Set(stat, gain)
	if rankPosition != nil {
		rank := *rankPosition
		item.RankPosition = &rank
	}
	r.rankings[id] = item
	return nil
}

func (r *WeeklyRankingRepository) ListByWeek(_ context.Context, weekStart, weekEnd time.Time) ([]weeklyranking.WeeklyRanking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]weeklyranking.WeeklyRanking, 0)
	for _, item := range r.rankings {
		if item.WeekStart.Equal(weekStart) && item.WeekEnd.Equal(weekEnd) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *WeeklyRankingRepository) ListByPlayer(_ context.Context, playerID string) ([]weeklyranking.WeeklyRanking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]weeklyranking.WeeklyRanking, 0)
	for _, item := range r.rankings {
		if item.PlayerID == playerID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.Before(out[j].WeekStart) })
	return out, nil
}

func (r *WeeklyRankingRepository) Reassign(_ context.Context, id, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.rankings[id]
	if !ok {
		return nil
	}
	item.PlayerID = playerID
	r.rankings[id] = item
	return nil
}

func (r *WeeklyRankingRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rankings, id)
	return nil
}

func (r *WeeklyRankingRepository) DeleteByPlayer(_ context.Context, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.rankings {
		if item.PlayerID == playerID {
			delete(r.rankings, id)
		}
	}
	return nil
}
