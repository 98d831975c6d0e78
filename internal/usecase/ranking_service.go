package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/player"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/weeklyranking"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/cache"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/logging"
)

type DailyRankingEntry struct {
	Rank         int    `json:"rank"`
	Player       Player `json:"player"`
	DayType      string `json:"day_type,omitempty"`
	Strength     int64  `json:"strength"`
	Intelligence int64  `json:"intelligence"`
	Sex          int64  `json:"sex"`
	Victories    int64  `json:"victories"`
	Experience   int64  `json:"experience"`
	Total        int64  `json:"total"`
}

type DailyRankingResult struct {
	Date    string              `json:"date"`
	Entries []DailyRankingEntry `json:"entries"`
}

type OverallRankingEntry struct {
	Rank         int    `json:"rank"`
	Player       Player `json:"player"`
	AsOf         string `json:"as_of"`
	Strength     int64  `json:"strength"`
	Intelligence int64  `json:"intelligence"`
	Sex          int64  `json:"sex"`
	Attack       int64  `json:"attack"`
	Respect      int64  `json:"respect"`
	TotalScore   int64  `json:"total_score"`
}

type OverallRankingResult struct {
	Entries []OverallRankingEntry `json:"entries"`
}

type WeeklyRankingEntry struct {
	Rank             int    `json:"rank"`
	Player           Player `json:"player"`
	Strength         int64  `json:"strength"`
	StrengthGain     int64  `json:"strength_gain"`
	Intelligence     int64  `json:"intelligence"`
	IntelligenceGain int64  `json:"intelligence_gain"`
	Sex              int64  `json:"sex"`
	SexGain          int64  `json:"sex_gain"`
	Victories        int64  `json:"victories"`
	VictoriesGain    int64  `json:"victories_gain"`
	Experience       int64  `json:"experience"`
	ExperienceGain   int64  `json:"experience_gain"`
	TotalGain        int64  `json:"total_gain"`
}

type WeeklyRankingResult struct {
	WeekStart string               `json:"week_start"`
	WeekEnd   string               `json:"week_end"`
	Entries   []WeeklyRankingEntry `json:"entries"`
}

// CheckDateStats flags which of the five counters carry any non-zero value
// on a date, so an uploader can tell which leaderboards were already pasted.
type CheckDateStats struct {
	Strength     bool `json:"strength"`
	Intelligence bool `json:"intelligence"`
	Sex          bool `json:"sex"`
	Victories    bool `json:"victories"`
	Experience   bool `json:"experience"`
}

type CheckDateResult struct {
	Date        string         `json:"date"`
	Exists      bool           `json:"exists"`
	PlayerCount int            `json:"player_count"`
	DayType     string         `json:"day_type,omitempty"`
	Stats       CheckDateStats `json:"stats"`
}

// RankingService builds the read-side views over the stat tables. Results are
// cached; every write path drops the "rankings:" prefix.
type RankingService struct {
	playerRepo player.Repository
	statRepo   dailystat.Repository
	weekRepo   weeklyranking.Repository
	viewCache  *cache.Store
	logger     *logging.Logger
}

func NewRankingService(
	playerRepo player.Repository,
	statRepo dailystat.Repository,
	weekRepo weeklyranking.Repository,
	viewCache *cache.Store,
	logger *logging.Logger,
) *RankingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RankingService{
		playerRepo: playerRepo,
		statRepo:   statRepo,
		weekRepo:   weekRepo,
		viewCache:  viewCache,
		logger:     logger,
	}
}

// DailyRanking lists every player captured on a date ordered by the sum of
// the five counters.
func (s *RankingService) DailyRanking(ctx context.Context, date time.Time) (DailyRankingResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.DailyRanking")
	defer span.End()

	if date.IsZero() {
		return DailyRankingResult{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	normalized := dailystat.NormalizeDate(date)

	key := "rankings:daily:" + normalized.Format(time.DateOnly)
	value, err := s.cached(ctx, key, func(ctx context.Context) (any, error) {
		return s.buildDailyRanking(ctx, normalized)
	})
	if err != nil {
		return DailyRankingResult{}, err
	}
	return value.(DailyRankingResult), nil
}

func (s *RankingService) buildDailyRanking(ctx context.Context, date time.Time) (DailyRankingResult, error) {
	stats, err := s.statRepo.ListByDate(ctx, date)
	if err != nil {
		return DailyRankingResult{}, fmt.Errorf("list stats by date: %w", err)
	}

	names, err := s.playerIndex(ctx)
	if err != nil {
		return DailyRankingResult{}, err
	}

	entries := make([]DailyRankingEntry, 0, len(stats))
	for _, stat := range stats {
		entries = append(entries, DailyRankingEntry{
			Player:       names[stat.PlayerID],
			DayType:      stat.DayType,
			Strength:     stat.Counters.Strength,
			Intelligence: stat.Counters.Intelligence,
			Sex:          stat.Counters.Sex,
			Victories:    stat.Counters.Victories,
			Experience:   stat.Counters.Experience,
			Total:        stat.Counters.Total(),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Total > entries[j].Total })
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return DailyRankingResult{
		Date:    date.Format(time.DateOnly),
		Entries: entries,
	}, nil
}

// OverallRanking scores every player from the sum of all their daily
// captures.
func (s *RankingService) OverallRanking(ctx context.Context) (OverallRankingResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.OverallRanking")
	defer span.End()

	value, err := s.cached(ctx, "rankings:overall", func(ctx context.Context) (any, error) {
		return s.buildOverallRanking(ctx)
	})
	if err != nil {
		return OverallRankingResult{}, err
	}
	return value.(OverallRankingResult), nil
}

func (s *RankingService) buildOverallRanking(ctx context.Context) (OverallRankingResult, error) {
	stats, err := s.statRepo.ListAll(ctx)
	if err != nil {
		return OverallRankingResult{}, fmt.Errorf("list stats: %w", err)
	}

	names, err := s.playerIndex(ctx)
	if err != nil {
		return OverallRankingResult{}, err
	}

	return OverallRankingResult{Entries: overallEntries(stats, names)}, nil
}

// overallEntries folds every capture into per-player lifetime totals and
// scores the totals. AsOf carries the newest date a player was seen on.
func overallEntries(stats []dailystat.DailyStat, names map[string]Player) []OverallRankingEntry {
	totals := make(map[string]dailystat.Counters)
	asOf := make(map[string]time.Time)
	for _, stat := range stats {
		totals[stat.PlayerID] = totals[stat.PlayerID].Add(stat.Counters)
		if stat.Date.After(asOf[stat.PlayerID]) {
			asOf[stat.PlayerID] = stat.Date
		}
	}

	entries := make([]OverallRankingEntry, 0, len(totals))
	for playerID, sum := range totals {
		entries = append(entries, OverallRankingEntry{
			Player:       names[playerID],
			AsOf:         asOf[playerID].Format(time.DateOnly),
			Strength:     sum.Strength,
			Intelligence: sum.Intelligence,
			Sex:          sum.Sex,
			Attack:       attackScore(sum),
			Respect:      respectScore(sum),
			TotalScore:   respectScore(sum),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].Player.Name < entries[j].Player.Name
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// WeeklyRanking lists the stored leaderboard for one week. Entries keep the
// uploaded rank positions when present; rows without one sort by total gain.
func (s *RankingService) WeeklyRanking(ctx context.Context, weekStart, weekEnd time.Time) (WeeklyRankingResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.WeeklyRanking")
	defer span.End()

	if weekStart.IsZero() || weekEnd.IsZero() {
		return WeeklyRankingResult{}, fmt.Errorf("%w: week start and end dates are required", ErrInvalidInput)
	}
	start := dailystat.NormalizeDate(weekStart)
	end := dailystat.NormalizeDate(weekEnd)
	if end.Before(start) {
		return WeeklyRankingResult{}, fmt.Errorf("%w: week end precedes week start", ErrInvalidInput)
	}

	key := "rankings:weekly:" + start.Format(time.DateOnly) + ":" + end.Format(time.DateOnly)
	value, err := s.cached(ctx, key, func(ctx context.Context) (any, error) {
		return s.buildWeeklyRanking(ctx, start, end)
	})
	if err != nil {
		return WeeklyRankingResult{}, err
	}
	return value.(WeeklyRankingResult), nil
}

func (s *RankingService) buildWeeklyRanking(ctx context.Context, weekStart, weekEnd time.Time) (WeeklyRankingResult, error) {
	rows, err := s.weekRepo.ListByWeek(ctx, weekStart, weekEnd)
	if err != nil {
		return WeeklyRankingResult{}, fmt.Errorf("list weekly rankings: %w", err)
	}

	names, err := s.playerIndex(ctx)
	if err != nil {
		return WeeklyRankingResult{}, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := rows[i].RankPosition, rows[j].RankPosition
		switch {
		case pi != nil && pj != nil:
			return *pi < *pj
		case pi != nil:
			return true
		case pj != nil:
			return false
		default:
			return rows[i].Gains.Total() > rows[j].Gains.Total()
		}
	})

	entries := make([]WeeklyRankingEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, WeeklyRankingEntry{
			Rank:             i + 1,
			Player:           names[row.PlayerID],
			Strength:         row.Values.Strength,
			StrengthGain:     row.Gains.Strength,
			Intelligence:     row.Values.Intelligence,
			IntelligenceGain: row.Gains.Intelligence,
			Sex:              row.Values.Sex,
			SexGain:          row.Gains.Sex,
			Victories:        row.Values.Victories,
			VictoriesGain:    row.Gains.Victories,
			Experience:       row.Values.Experience,
			ExperienceGain:   row.Gains.Experience,
			TotalGain:        row.Gains.Total(),
		})
	}

	return WeeklyRankingResult{
		WeekStart: weekStart.Format(time.DateOnly),
		WeekEnd:   weekEnd.Format(time.DateOnly),
		Entries:   entries,
	}, nil
}

const datesListLimit = 90

// Dates lists the distinct capture dates, newest first.
func (s *RankingService) Dates(ctx context.Context) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.Dates")
	defer span.End()

	value, err := s.cached(ctx, "rankings:dates", func(ctx context.Context) (any, error) {
		dates, err := s.statRepo.ListDates(ctx, datesListLimit)
		if err != nil {
			return nil, fmt.Errorf("list dates: %w", err)
		}
		out := make([]string, 0, len(dates))
		for _, date := range dates {
			out = append(out, date.Format(time.DateOnly))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]string), nil
}

// CheckDate reports whether a date already has captured data, so an uploader
// can tell a fresh date from one that would reconcile against existing rows.
func (s *RankingService) CheckDate(ctx context.Context, date time.Time) (CheckDateResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.CheckDate")
	defer span.End()

	if date.IsZero() {
		return CheckDateResult{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	normalized := dailystat.NormalizeDate(date)

	stats, err := s.statRepo.ListByDate(ctx, normalized)
	if err != nil {
		return CheckDateResult{}, fmt.Errorf("list stats by date: %w", err)
	}

	result := CheckDateResult{
		Date:        normalized.Format(time.DateOnly),
		Exists:      len(stats) > 0,
		PlayerCount: len(stats),
	}
	var seen dailystat.Counters
	for _, stat := range stats {
		seen = seen.Add(stat.Counters)
		if result.DayType == "" && stat.DayType != "" {
			result.DayType = stat.DayType
		}
	}
	result.Stats = CheckDateStats{
		Strength:     seen.Strength != 0,
		Intelligence: seen.Intelligence != 0,
		Sex:          seen.Sex != 0,
		Victories:    seen.Victories != 0,
		Experience:   seen.Experience != 0,
	}
	return result, nil
}

func (s *RankingService) cached(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if s.viewCache == nil {
		return loader(ctx)
	}
	return s.viewCache.GetOrLoad(ctx, key, loader)
}

func (s *RankingService) playerIndex(ctx context.Context) (map[string]Player, error) {
	players, err := s.playerRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	out := make(map[string]Player, len(players))
	for _, p := range players {
		out[p.ID] = Player{ID: p.ID, Name: p.Name, ProfileID: p.ProfileID}
	}
	return out, nil
}

// Score weights mirror the in-game formulas for attack power and respect.
func attackScore(c dailystat.Counters) int64 {
	return int64(math.Round(float64(c.Strength)*0.33 + float64(c.Intelligence)*0.55))
}

func respectScore(c dailystat.Counters) int64 {
	return int64(math.Round(float64(c.Strength)*0.42 + float64(c.Sex)*0.42 + float64(c.Intelligence)*0.42))
}
