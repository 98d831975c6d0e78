package dailystat

import (
	"context"
	"time"
)

type Repository interface {
	GetByPlayerAndDate(ctx context.Context, playerID string, date time.Time) (DailyStat, bool, error)
	// HighestValue returns the largest value ever recorded for the player and
	// stat across all dates, or zero when the player has no rows.
	HighestValue(ctx context.Context, playerID string, stat StatType) (int64, error)
	// LastOnOrBefore returns the most recent row dated at or before the given
	// date.
	LastOnOrBefore(ctx context.Context, playerID string, date time.Time) (DailyStat, bool, error)
	Insert(ctx context.Context, item DailyStat) (DailyStat, error)
	// UpdateStat writes a single counter on an existing row; dayType, when
	// non-nil, overwrites the row's day type.
	UpdateStat(ctx context.Context, id string, stat StatType, value int64, dayType *string) error
	UpdateCounters(ctx context.Context, id string, counters Counters) error
	SetDayTypeForDate(ctx context.Context, date time.Time, dayType string) (int, error)
	Reassign(ctx context.Context, id, playerID string) error
	Delete(ctx context.Context, id string) error
	DeleteByPlayer(ctx context.Context, playerID string) error
	ListByPlayer(ctx context.Context, playerID string) ([]DailyStat, error)
	ListByDate(ctx context.Context, date time.Time) ([]DailyStat, error)
	ListAll(ctx context.Context) ([]DailyStat, error)
	// ListDates returns distinct dates with data, newest first.
	ListDates(ctx context.Context, limit int) ([]time.Time, error)
}
