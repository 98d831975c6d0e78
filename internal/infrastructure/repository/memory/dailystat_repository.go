package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
)

type DailyStatRepository struct {
	mu     sync.RWMutex
	stats  map[string]dailystat.DailyStat
	nextID int
}

func NewDailyStatRepository() *DailyStatRepository {
	return &DailyStatRepository{
		stats: make(map[string]dailystat.DailyStat),
	}
}

func (r *DailyStatRepository) GetByPlayerAndDate(_ context.Context, playerID string, date time.Time) (dailystat.DailyStat, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.stats {
		if item.PlayerID == playerID && item.Date.Equal(date) {
			return item, true, nil
		}
	}
	return dailystat.DailyStat{}, false, nil
}

func (r *DailyStatRepository) HighestValue(_ context.Context, playerID string, stat dailystat.StatType) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var highest int64
	for _, item := range r.stats {
		if item.PlayerID != playerID {
			continue
		}
		if value := item.Counters.Value(stat); value > highest {
			highest = value
		}
	}
	return highest, nil
}

func (r *DailyStatRepository) LastOnOrBefore(_ context.Context, playerID string, date time.Time) (dailystat.DailyStat, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found dailystat.DailyStat
		ok    bool
	)
	for _, item := range r.stats {
		if item.PlayerID != playerID || item.Date.After(date) {
			continue
		}
		if !ok || item.Date.After(found.Date) {
			found = item
			ok = true
		}
	}
	return found, ok, nil
}

func (r *DailyStatRepository) Insert(_ context.Context, item dailystat.DailyStat) (dailystat.DailyStat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		r.nextID++
		item.ID = fmt.Sprintf("stat-%d", r.nextID)
	}
	r.stats[item.ID] = item
	return item, nil
}

func (r *DailyStatRepository) UpdateStat(_ context.Context, id string, stat dailystat.StatType, value int64, dayType *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.stats[id]
	if !ok {
		return nil
	}
	item.Counters.Set(stat, value)
	if dayType != nil {
		item.DayType = *dayType
	}
	r.stats[id] = item
	return nil
}

func (r *DailyStatRepository) UpdateCounters(_ context.Context, id string, counters dailystat.Counters) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.stats[id]
	if !ok {
		return nil
	}
	item.Counters = counters
	r.stats[id] = item
	return nil
}

func (r *DailyStatRepository) SetDayTypeForDate(_ context.Context, date time.Time, dayType string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := 0
	for id, item := range r.stats {
		if !item.Date.Equal(date) {
			continue
		}
		item.DayType = dayType
		r.stats[id] = item
		updated++
	}
	return updated, nil
}

func (r *DailyStatRepository) Reassign(_ context.Context, id, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.stats[id]
	if !ok {
		return nil
	}
	item.PlayerID = playerID
	r.stats[id] = item
	return nil
}

func (r *DailyStatRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.stats, id)
	return nil
}

func (r *DailyStatRepository) DeleteByPlayer(_ context.Context, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.stats {
		if item.PlayerID == playerID {
			delete(r.stats, id)
		}
	}
	return nil
}

func (r *DailyStatRepository) ListByPlayer(_ context.Context, playerID string) ([]dailystat.DailyStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dailystat.DailyStat, 0)
	for _, item := range r.stats {
		if item.PlayerID == playerID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *DailyStatRepository) ListByDate(_ context.Context, date time.Time) ([]dailystat.DailyStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dailystat.DailyStat, 0)
	for _, item := range r.stats {
		if item.Date.Equal(date) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *DailyStatRepository) ListAll(_ context.Context) ([]dailystat.DailyStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dailystat.DailyStat, 0, len(r.stats))
	for _, item := range r.stats {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *DailyStatRepository) ListDates(_ context.Context, limit int) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[time.Time]struct{})
	out := make([]time.Time, 0)
	for _, item := range r.stats {
		if _, ok := seen[item.Date]; ok {
			continue
		}
		seen[item.Date] = struct{}{}
		out = append(out, item.Date)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
