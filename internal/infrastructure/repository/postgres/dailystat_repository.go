package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
	qb "github.com/vkolarov/bgmafia-tracker/internal/platform/querybuilder"
)

type DailyStatRepository struct {
	db *sqlx.DB
}

var dailyStatSelectColumns = []string{
	"id",
	"player_id",
	"date",
	"strength",
	"intelligence",
	"sex",
	"victories",
	"experience",
	"day_type",
	"created_at",
	"updated_at",
}

func NewDailyStatRepository(db *sqlx.DB) *DailyStatRepository {
	return &DailyStatRepository{db: db}
}

func (r *DailyStatRepository) GetByPlayerAndDate(ctx context.Context, playerID string, date time.Time) (dailystat.DailyStat, bool, error) {
	query, args, err := qb.Select(dailyStatSelectColumns...).From("daily_stats").
		Where(qb.Eq("player_id", playerID), qb.Eq("date", date)).
		ToSQL()
	if err != nil {
		return dailystat.DailyStat{}, false, fmt.Errorf("build select daily stat query: %w", err)
	}

	var row dailyStatTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return dailystat.DailyStat{}, false, nil
		}
		return dailystat.DailyStat{}, false, fmt.Errorf("select daily stat: %w", err)
	}

	return mapDailyStat(row), true, nil
}

func (r *DailyStatRepository) HighestValue(ctx context.Context, playerID string, stat dailystat.StatType) (int64, error) {
	column, err := statColumn(stat)
	if err != nil {
		return 0, err
	}

	query, args, err := qb.Select("COALESCE(MAX(" + column + "), 0) AS value").From("daily_stats").
		Where(qb.Eq("player_id", playerID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build select highest value query: %w", err)
	}

	var value int64
	if err := r.db.GetContext(ctx, &value, query, args...); err != nil {
		return 0, fmt.Errorf("select highest value: %w", err)
	}
	return value, nil
}

func (r *DailyStatRepository) LastOnOrBefore(ctx context.Context, playerID string, date time.Time) (dailystat.DailyStat, bool, error) {
	query, args, err := qb.Select(dailyStatSelectColumns...).From("daily_stats").
		Where(qb.Eq("player_id", playerID), qb.Lte("date", date)).
		OrderBy("date DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return dailystat.DailyStat{}, false, fmt.Errorf("build select last daily stat query: %w", err)
	}

	var row dailyStatTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return dailystat.DailyStat{}, false, nil
		}
		return dailystat.DailyStat{}, false, fmt.Errorf("select last daily stat: %w", err)
	}

	return mapDailyStat(row), true, nil
}

func (r *DailyStatRepository) Insert(ctx context.Context, item dailystat.DailyStat) (dailystat.DailyStat, error) {
	if err := item.Validate(); err != nil {
		return dailystat.DailyStat{}, fmt.Errorf("validate daily stat: %w", err)
	}

	insertModel := dailyStatInsertModel{
		PlayerID:     item.PlayerID,
		Date:         item.Date,
		Strength:     item.Counters.Strength,
		Intelligence: item.Counters.Intelligence,
		Sex:          item.Counters.Sex,
		Victories:    item.Counters.Victories,
		Experience:   item.Counters.Experience,
		DayType:      nullString(item.DayType),
	}

	query, args, err := qb.InsertModel("daily_stats", insertModel, "RETURNING id")
	if err != nil {
		return dailystat.DailyStat{}, fmt.Errorf("build insert daily stat query: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&item.ID); err != nil {
		return dailystat.DailyStat{}, fmt.Errorf("insert daily stat: %w", err)
	}
	return item, nil
}

func (r *DailyStatRepository) UpdateStat(ctx context.Context, id string, stat dailystat.StatType, value int64, dayType *string) error {
	column, err := statColumn(stat)
	if err != nil {
		return err
	}

	builder := qb.Update("daily_stats").
		Set(column, value).
		SetExpr("updated_at", "NOW()")
	if dayType != nil {
		builder = builder.Set("day_type", nullString(*dayType))
	}

	query, args, err := builder.Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build update daily stat query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update daily stat: %w", err)
	}
	return nil
}

func (r *DailyStatRepository) UpdateCounters(ctx context.Context, id string, counters dailystat.Counters) error {
	query, args, err := qb.Update("daily_stats").
		Set("strength", counters.Strength).
		Set("intelligence", counters.Intelligence).
		Set("sex", counters.Sex).
		Set("victories", counters.Victories).
		Set("experience", counters.Experience).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update daily stat counters query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update daily stat counters: %w", err)
	}
	return nil
}

func (r *DailyStatRepository) SetDayTypeForDate(ctx context.Context, date time.Time, dayType string) (int, error) {
	query, args, err := qb.Update("daily_stats").
		Set("day_type", nullString(dayType)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("date", date)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build update day type query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update day type: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count updated day type rows: %w", err)
	}
	return int(affected), nil
}

func (r *DailyStatRepository) Reassign(ctx context.Context, id, playerID string) error {
	query, args, err := qb.Update("daily_stats").
		Set("player_id", playerID).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reassign daily stat query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reassign daily stat: %w", err)
	}
	return nil
}

func (r *DailyStatRepository) Delete(ctx context.Context, id string) error {
	query, args, err := qb.DeleteFrom("daily_stats").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete daily stat query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete daily stat: %w", err)
	}
	return nil
}

func (r *DailyStatRepository) DeleteByPlayer(ctx context.Context, playerID string) error {
	query, args, err := qb.DeleteFrom("daily_stats").
		Where(qb.Eq("player_id", playerID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete daily stats by player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete daily stats by player: %w", err)
	}
	return nil
}

func (r *DailyStatRepository) ListByPlayer(ctx context.Context, playerID string) ([]dailystat.DailyStat, error) {
	query, args, err := qb.Select(dailyStatSelectColumns...).From("daily_stats").
		Where(qb.Eq("player_id", playerID)).
		OrderBy("date").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select daily stats by player query: %w", err)
	}

	var rows []dailyStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select daily stats by player: %w", err)
	}
	return mapDailyStats(rows), nil
}

func (r *DailyStatRepository) ListByDate(ctx context.Context, date time.Time) ([]dailystat.DailyStat, error) {
	query, args, err := qb.Select(dailyStatSelectColumns...).From("daily_stats").
		Where(qb.Eq("date", date)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select daily stats by date query: %w", err)
	}

	var rows []dailyStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select daily stats by date: %w", err)
	}
	return mapDailyStats(rows), nil
}

func (r *DailyStatRepository) ListAll(ctx context.Context) ([]dailystat.DailyStat, error) {
	query, args, err := qb.Select(dailyStatSelectColumns...).From("daily_stats").
		OrderBy("date", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select daily stats query: %w", err)
	}

	var rows []dailyStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select daily stats: %w", err)
	}
	return mapDailyStats(rows), nil
}

func (r *DailyStatRepository) ListDates(ctx context.Context, limit int) ([]time.Time, error) {
	query, args, err := qb.Select("DISTINCT date").From("daily_stats").
		OrderBy("date DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select dates query: %w", err)
	}

	var rows []time.Time
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select dates: %w", err)
	}

	out := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		out = append(out, dailystat.NormalizeDate(row))
	}
	return out, nil
}

func mapDailyStat(row dailyStatTableModel) dailystat.DailyStat {
	return dailystat.DailyStat{
		ID:       row.ID,
		PlayerID: row.PlayerID,
		Date:     dailystat.NormalizeDate(row.Date),
		Counters: dailystat.Counters{
			Strength:     row.Strength,
			Intelligence: row.Intelligence,
			Sex:          row.Sex,
			Victories:    row.Victories,
			Experience:   row.Experience,
		},
		DayType: stringOrEmpty(row.DayType),
	}
}

func mapDailyStats(rows []dailyStatTableModel) []dailystat.DailyStat {
	out := make([]dailystat.DailyStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapDailyStat(row))
	}
	return out
}
