package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/weeklyranking"
	qb "github.com/vkolarov/bgmafia-tracker/internal/platform/querybuilder"
)

type WeeklyRankingRepository struct {
	db *sqlx.DB
}

var weeklyRankingSelectColumns = []string{
	"id",
	"player_id",
	"week_start_date",
	"week_end_date",
	"rank_position",
	"strength",
	"intelligence",
	"sex",
	"victories",
	"experience",
	"strength_gain",
	"intelligence_gain",
	"sex_gain",
	"victories_gain",
	"experience_gain",
	"created_at",
	"updated_at",
}

func NewWeeklyRankingRepository(db *sqlx.DB) *WeeklyRankingRepository {
	return &WeeklyRankingRepository{db: db}
}

func (r *WeeklyRankingRepository) GetByPlayerAndWeek(ctx context.Context, playerID string, weekStart, weekEnd time.Time) (weeklyranking.WeeklyRanking, bool, error) {
	query, args, err := qb.Select(weeklyRankingSelectColumns...).From("weekly_rankings").
		Where(
			qb.Eq("player_id", playerID),
			qb.Eq("week_start_date", weekStart),
			qb.Eq("week_end_date", weekEnd),
		).
		ToSQL()
	if err != nil {
		return weeklyranking.WeeklyRanking{}, false, fmt.Errorf("build select weekly ranking query: %w", err)
	}

	var row weeklyRankingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return weeklyranking.WeeklyRanking{}, false, nil
		}
		return weeklyranking.WeeklyRanking{}, false, fmt.Errorf("select weekly ranking: %w", err)
	}

	return mapWeeklyRanking(row), true, nil
}

func (r *WeeklyRankingRepository) Insert(ctx context.Context, item weeklyranking.WeeklyRanking) (weeklyranking.WeeklyRanking, error) {
	if err := item.Validate(); err != nil {
		return weeklyranking.WeeklyRanking{}, fmt.Errorf("validate weekly ranking: %w", err)
	}

	insertModel := weeklyRankingInsertModel{
		PlayerID:         item.PlayerID,
		WeekStart:        item.WeekStart,
		WeekEnd:          item.WeekEnd,
		RankPosition:     nullInt(item.RankPosition),
		Strength:         item.Values.Strength,
		Intelligence:     item.Values.Intelligence,
		Sex:              item.Values.Sex,
		Victories:        item.Values.Victories,
		Experience:       item.Values.Experience,
		StrengthGain:     item.Gains.Strength,
		IntelligenceGain: item.Gains.Intelligence,
		SexGain:          item.Gains.Sex,
		VictoriesGain:    item.Gains.Victories,
		ExperienceGain:   item.Gains.Experience,
	}

	query, args, err := qb.InsertModel("weekly_rankings", insertModel, "RETURNING id")
	if err != nil {
		return weeklyranking.WeeklyRanking{}, fmt.Errorf("build insert weekly ranking query: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&item.ID); err != nil {
		return weeklyranking.WeeklyRanking{}, fmt.Errorf("insert weekly ranking: %w", err)
	}
	return item, nil
}

func (r *WeeklyRankingRepository) UpdateStat(ctx context.Context, id string, stat dailystat.StatType, value, gain int64, rankPosition *int) error {
	column, err := statColumn(stat)
	if err != nil {
		return err
	}

	builder := qb.Update("weekly_rankings").
		Set(column, value).
		Set(column+"_gain", gain).
		SetExpr("updated_at", "NOW()")
	if rankPosition != nil {
		builder = builder.Set("rank_position", nullInt(rankPosition))
	}

	query, args, err := builder.Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build update weekly ranking query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update weekly ranking: %w", err)
	}
	return nil
}

func (r *WeeklyRankingRepository) ListByWeek(ctx context.Context, weekStart, weekEnd time.Time) ([]weeklyranking.WeeklyRanking, error) {
	query, args, err := qb.Select(weeklyRankingSelectColumns...).From("weekly_rankings").
		Where(
			qb.Eq("week_start_date", weekStart),
			qb.Eq("week_end_date", weekEnd),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select weekly rankings by week query: %w", err)
	}

	var rows []weeklyRankingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select weekly rankings by week: %w", err)
	}
	return mapWeeklyRankings(rows), nil
}

func (r *WeeklyRankingRepository) ListByPlayer(ctx context.Context, playerID string) ([]weeklyranking.WeeklyRanking, error) {
	query, args, err := qb.Select(weeklyRankingSelectColumns...).From("weekly_rankings").
		Where(qb.Eq("player_id", playerID)).
		OrderBy("week_start_date").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select weekly rankings by player query: %w", err)
	}

	var rows []weeklyRankingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select weekly rankings by player: %w", err)
	}
	return mapWeeklyRankings(rows), nil
}

func (r *WeeklyRankingRepository) Reassign(ctx context.Context, id, playerID string) error {
	query, args, err := qb.Update("weekly_rankings").
		Set("player_id", playerID).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reassign weekly ranking query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reassign weekly ranking: %w", err)
	}
	return nil
}

func (r *WeeklyRankingRepository) Delete(ctx context.Context, id string) error {
	query, args, err := qb.DeleteFrom("weekly_rankings").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete weekly ranking query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete weekly ranking: %w", err)
	}
	return nil
}

func (r *WeeklyRankingRepository) DeleteByPlayer(ctx context.Context, playerID string) error {
	query, args, err := qb.DeleteFrom("weekly_rankings").
		Where(qb.Eq("player_id", playerID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete weekly rankings by player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete weekly rankings by player: %w", err)
	}
	return nil
}

func mapWeeklyRanking(row weeklyRankingTableModel) weeklyranking.WeeklyRanking {
	return weeklyranking.WeeklyRanking{
		ID:           row.ID,
		PlayerID:     row.PlayerID,
		WeekStart:    dailystat.NormalizeDate(row.WeekStart),
		WeekEnd:      dailystat.NormalizeDate(row.WeekEnd),
		RankPosition: intOrNil(row.RankPosition),
		Values: dailystat.Counters{
			Strength:     row.Strength,
			Intelligence: row.Intelligence,
			Sex:          row.Sex,
			Victories:    row.Victories,
			Experience:   row.Experience,
		},
		Gains: dailystat.Counters{
			Strength:     row.StrengthGain,
			Intelligence: row.IntelligenceGain,
			Sex:          row.SexGain,
			Victories:    row.VictoriesGain,
			Experience:   row.ExperienceGain,
		},
	}
}

func mapWeeklyRankings(rows []weeklyRankingTableModel) []weeklyranking.WeeklyRanking {
	out := make([]weeklyranking.WeeklyRanking, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapWeeklyRanking(row))
	}
	return out
}
