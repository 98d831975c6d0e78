package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/weeklyranking"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/cache"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/logging"
)

type WeeklyUploadRow struct {
	Name      string
	ProfileID string
	Value     int64
	Rank      int
}

type WeeklyUploadInput struct {
	Stat      dailystat.StatType
	WeekStart time.Time
	WeekEnd   time.Time
	Rows      []WeeklyUploadRow
}

type WeeklyUploadResult struct {
	WeekStart      string             `json:"week_start"`
	WeekEnd        string             `json:"week_end"`
	Stat           string             `json:"stat"`
	RowCount       int                `json:"row_count"`
	Created        int                `json:"created"`
	Updated        int                `json:"updated"`
	PlayersCreated int                `json:"players_created"`
	Failed         int                `json:"failed"`
	Results        []UploadRowOutcome `json:"results"`
}

// WeeklyService stores the game's end-of-week leaderboards and derives each
// player's gain for the week from the daily history.
type WeeklyService struct {
	identity    *IdentityService
	statRepo    dailystat.Repository
	rankingRepo weeklyranking.Repository
	viewCache   *cache.Store
	logger      *logging.Logger
}

func NewWeeklyService(
	identity *IdentityService,
	statRepo dailystat.Repository,
	rankingRepo weeklyranking.Repository,
	viewCache *cache.Store,
	logger *logging.Logger,
) *WeeklyService {
	if logger == nil {
		logger = logging.Default()
	}
	return &WeeklyService{
		identity:    identity,
		statRepo:    statRepo,
		rankingRepo: rankingRepo,
		viewCache:   viewCache,
		logger:      logger,
	}
}

func (s *WeeklyService) ApplyWeeklyUpload(ctx context.Context, input WeeklyUploadInput) (WeeklyUploadResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeeklyService.ApplyWeeklyUpload")
	defer span.End()

	if _, err := dailystat.ParseStatType(string(input.Stat)); err != nil {
		return WeeklyUploadResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.WeekStart.IsZero() || input.WeekEnd.IsZero() {
		return WeeklyUploadResult{}, fmt.Errorf("%w: week start and end dates are required", ErrInvalidInput)
	}
	weekStart := dailystat.NormalizeDate(input.WeekStart)
	weekEnd := dailystat.NormalizeDate(input.WeekEnd)
	if weekEnd.Before(weekStart) {
		return WeeklyUploadResult{}, fmt.Errorf("%w: week end precedes week start", ErrInvalidInput)
	}
	if len(input.Rows) == 0 {
		return WeeklyUploadResult{}, fmt.Errorf("%w: rows are required", ErrInvalidInput)
	}

	// Row shape problems fail the whole batch before anything is written.
	for idx, row := range input.Rows {
		if row.Value < 0 {
			return WeeklyUploadResult{}, fmt.Errorf("%w: row %d has a negative value", ErrInvalidInput, idx)
		}
	}

	result := WeeklyUploadResult{
		WeekStart: weekStart.Format(time.DateOnly),
		WeekEnd:   weekEnd.Format(time.DateOnly),
		Stat:      string(input.Stat),
		RowCount:  len(input.Rows),
		Results:   make([]UploadRowOutcome, 0, len(input.Rows)),
	}

	// Gains measure progress inside the week, so the baseline is the last
	// daily snapshot taken before the week opened.
	baselineDate := weekStart.AddDate(0, 0, -1)

	for _, row := range input.Rows {
		action, playerCreated, err := s.applyWeeklyRow(ctx, input.Stat, weekStart, weekEnd, baselineDate, row)
		if playerCreated {
			result.PlayersCreated++
		}
		if err != nil {
			result.Failed++
			result.Results = append(result.Results, UploadRowOutcome{Name: row.Name, Error: err.Error()})
			s.logger.WarnContext(ctx, "weekly upload row failed", "name", row.Name, "error", err)
			continue
		}

		switch action {
		case weeklyRowCreated:
			result.Created++
		case weeklyRowUpdated:
			result.Updated++
		}
		result.Results = append(result.Results, UploadRowOutcome{Name: row.Name, Success: true})
	}

	if s.viewCache != nil {
		s.viewCache.DeletePrefix(ctx, "rankings:")
	}

	s.logger.InfoContext(ctx, "applied weekly upload",
		"week_start", result.WeekStart,
		"week_end", result.WeekEnd,
		"stat", result.Stat,
		"rows", result.RowCount,
		"created", result.Created,
		"updated", result.Updated,
		"failed", result.Failed,
	)
	return result, nil
}

type weeklyRowAction int

const (
	weeklyRowCreated weeklyRowAction = iota
	weeklyRowUpdated
)

func (s *WeeklyService) applyWeeklyRow(
	ctx context.Context,
	stat dailystat.StatType,
	weekStart, weekEnd, baselineDate time.Time,
	row WeeklyUploadRow,
) (weeklyRowAction, bool, error) {
	resolved, playerCreated, err := s.identity.Resolve(ctx, row.Name, row.ProfileID)
	if err != nil {
		return 0, false, fmt.Errorf("resolve player: %w", err)
	}

	gain := row.Value
	baseline, ok, err := s.statRepo.LastOnOrBefore(ctx, resolved.ID, baselineDate)
	if err != nil {
		return 0, playerCreated, fmt.Errorf("get baseline stat: %w", err)
	}
	if ok {
		gain = row.Value - baseline.Counters.Value(stat)
		if gain < 0 {
			gain = 0
		}
	}

	var rankPosition *int
	if row.Rank > 0 {
		rank := row.Rank
		rankPosition = &rank
	}

	existing, ok, err := s.rankingRepo.GetByPlayerAndWeek(ctx, resolved.ID, weekStart, weekEnd)
	if err != nil {
		return 0, playerCreated, fmt.Errorf("get weekly ranking: %w", err)
	}
	if ok {
		if err := s.rankingRepo.UpdateStat(ctx, existing.ID, stat, row.Value, gain, rankPosition); err != nil {
			return 0, playerCreated, fmt.Errorf("update weekly ranking: %w", err)
		}
		return weeklyRowUpdated, playerCreated, nil
	}

	item := weeklyranking.WeeklyRanking{
		PlayerID:     resolved.ID,
		WeekStart:    weekStart,
		WeekEnd:      weekEnd,
		RankPosition: rankPosition,
	}
	item.Values.Set(stat, row.Value)
	item.Gains.Set(stat, gain)
	if _, err := s.rankingRepo.Insert(ctx, item); err != nil {
		return 0, playerCreated, fmt.Errorf("insert weekly ranking: %w", err)
	}
	return weeklyRowCreated, playerCreated, nil
}
