package weeklyranking

import (
	"context"
	"time"

	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
)

type Repository interface {
	GetByPlayerAndWeek(ctx context.Context, playerID string, weekStart, weekEnd time.Time) (WeeklyRanking, bool, error)
	Insert(ctx context.Context, item WeeklyRanking) (WeeklyRanking, error)
	// UpdateStat writes one stat's absolute value and gain on an existing row,
	// together with the rank position captured by the upload.
	UpdateStat(ctx context.Context, id string, stat dailystat.StatType, value, gain int64, rankPosition *int) error
	ListByWeek(ctx context.Context, weekStart, weekEnd time.Time) ([]WeeklyRanking, error)
	ListByPlayer(ctx context.Context, playerID string) ([]WeeklyRanking, error)
	Reassign(ctx context.Context, id, playerID string) error
	Delete(ctx context.Context, id string) error
	DeleteByPlayer(ctx context.Context, playerID string) error
}
