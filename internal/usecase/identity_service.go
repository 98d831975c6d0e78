package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/player"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/weeklyranking"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/id"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/logging"
)

// IdentityService resolves upload rows to tracked players. Names on the game's
// leaderboards are not unique and players rename themselves, so the profile id
// wins whenever the upload carries one; the name is the fallback signal.
type IdentityService struct {
	playerRepo  player.Repository
	statRepo    dailystat.Repository
	rankingRepo weeklyranking.Repository
	idGen       id.Generator
	logger      *logging.Logger
}

func NewIdentityService(
	playerRepo player.Repository,
	statRepo dailystat.Repository,
	rankingRepo weeklyranking.Repository,
	idGen id.Generator,
	logger *logging.Logger,
) *IdentityService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IdentityService{
		playerRepo:  playerRepo,
		statRepo:    statRepo,
		rankingRepo: rankingRepo,
		idGen:       idGen,
		logger:      logger,
	}
}

// Resolve finds the player an upload row belongs to, creating one when nobody
// matches. Matching order: profile id, then normalized name (oldest row wins
// when several players share a name). A name match with a fresh profile id
// backfills the id onto the matched player.
func (s *IdentityService) Resolve(ctx context.Context, name, profileID string) (player.Player, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IdentityService.Resolve")
	defer span.End()

	name = strings.TrimSpace(name)
	profileID = strings.TrimSpace(profileID)
	if name == "" && profileID == "" {
		return player.Player{}, false, fmt.Errorf("%w: player name or profile id is required", ErrInvalidInput)
	}

	if profileID != "" {
		found, ok, err := s.playerRepo.GetByProfileID(ctx, profileID)
		if err != nil {
			return player.Player{}, false, fmt.Errorf("get player by profile id: %w", err)
		}
		if ok {
			return found, false, nil
		}
	}

	if name != "" {
		matches, err := s.playerRepo.ListByName(ctx, name)
		if err != nil {
			return player.Player{}, false, fmt.Errorf("list players by name: %w", err)
		}
		if len(matches) > 0 {
			found := matches[0]
			if profileID != "" && found.ProfileID == "" {
				if err := s.playerRepo.SetProfileID(ctx, found.ID, profileID); err != nil {
					return player.Player{}, false, fmt.Errorf("backfill profile id: %w", err)
				}
				found.ProfileID = profileID
				s.logger.InfoContext(ctx, "backfilled player profile id",
					"player_id", found.ID,
					"profile_id", profileID,
				)
			}
			return found, false, nil
		}
	}

	if name == "" {
		return player.Player{}, false, fmt.Errorf("%w: player name is required to create a player", ErrInvalidInput)
	}

	newID, err := s.idGen.NewID()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("generate player id: %w", err)
	}

	created := player.Player{
		ID:        newID,
		Name:      name,
		ProfileID: profileID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.playerRepo.Create(ctx, created); err != nil {
		return player.Player{}, false, fmt.Errorf("create player: %w", err)
	}

	s.logger.InfoContext(ctx, "created player", "player_id", created.ID, "name", created.Name)
	return created, true, nil
}

type PlayerCheckResult struct {
	Exists bool    `json:"exists"`
	Player *Player `json:"player,omitempty"`
}

type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProfileID string `json:"profile_id,omitempty"`
}

// Check reports whether a player with the given name is already tracked.
// Matching is case-insensitive over trimmed names.
func (s *IdentityService) Check(ctx context.Context, name string) (PlayerCheckResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IdentityService.Check")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return PlayerCheckResult{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	matches, err := s.playerRepo.ListByName(ctx, name)
	if err != nil {
		return PlayerCheckResult{}, fmt.Errorf("list players by name: %w", err)
	}
	if len(matches) == 0 {
		return PlayerCheckResult{Exists: false}, nil
	}

	found := matches[0]
	return PlayerCheckResult{
		Exists: true,
		Player: &Player{ID: found.ID, Name: found.Name, ProfileID: found.ProfileID},
	}, nil
}

// Rename changes a player's display name.
func (s *IdentityService) Rename(ctx context.Context, playerID, newName string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IdentityService.Rename")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	newName = strings.TrimSpace(newName)
	if playerID == "" {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if newName == "" {
		return player.Player{}, fmt.Errorf("%w: new name is required", ErrInvalidInput)
	}

	current, ok, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	if !ok {
		return player.Player{}, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}

	if err := s.playerRepo.Rename(ctx, playerID, newName); err != nil {
		return player.Player{}, fmt.Errorf("rename player: %w", err)
	}

	s.logger.InfoContext(ctx, "renamed player",
		"player_id", playerID,
		"old_name", current.Name,
		"new_name", newName,
	)
	current.Name = newName
	return current, nil
}

type PlayerSummary struct {
	Player     Player              `json:"player"`
	LatestDate string              `json:"latest_date,omitempty"`
	Latest     dailystat.Counters  `json:"latest"`
	Total      int64               `json:"total"`
	History    []PlayerHistoryRow  `json:"history"`
	Weeks      []PlayerWeeklyEntry `json:"weeks"`
}

type PlayerHistoryRow struct {
	Date         string `json:"date"`
	DayType      string `json:"day_type,omitempty"`
	Strength     int64  `json:"strength"`
	Intelligence int64  `json:"intelligence"`
	Sex          int64  `json:"sex"`
	Victories    int64  `json:"victories"`
	Experience   int64  `json:"experience"`
}

type PlayerWeeklyEntry struct {
	WeekStart    string             `json:"week_start"`
	WeekEnd      string             `json:"week_end"`
	RankPosition *int               `json:"rank_position,omitempty"`
	Values       dailystat.Counters `json:"values"`
	Gains        dailystat.Counters `json:"gains"`
}

const summaryHistoryWindow = 30 * 24 * time.Hour

// Summary assembles the player detail view: latest counters, the trailing
// 30 days of history and every captured weekly ranking. Total is the
// development score, the sum of the three trainable stats.
func (s *IdentityService) Summary(ctx context.Context, playerID string) (PlayerSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IdentityService.Summary")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return PlayerSummary{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	current, ok, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return PlayerSummary{}, fmt.Errorf("get player: %w", err)
	}
	if !ok {
		return PlayerSummary{}, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}

	stats, err := s.statRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return PlayerSummary{}, fmt.Errorf("list player stats: %w", err)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date.After(stats[j].Date) })

	summary := PlayerSummary{
		Player:  Player{ID: current.ID, Name: current.Name, ProfileID: current.ProfileID},
		History: []PlayerHistoryRow{},
		Weeks:   []PlayerWeeklyEntry{},
	}

	if len(stats) > 0 {
		latest := stats[0]
		summary.LatestDate = latest.Date.Format(time.DateOnly)
		summary.Latest = latest.Counters
		summary.Total = latest.Counters.Strength + latest.Counters.Intelligence + latest.Counters.Sex

		cutoff := latest.Date.Add(-summaryHistoryWindow)
		for _, row := range stats {
			if row.Date.Before(cutoff) {
				break
			}
			summary.History = append(summary.History, PlayerHistoryRow{
				Date:         row.Date.Format(time.DateOnly),
				DayType:      row.DayType,
				Strength:     row.Counters.Strength,
				Intelligence: row.Counters.Intelligence,
				Sex:          row.Counters.Sex,
				Victories:    row.Counters.Victories,
				Experience:   row.Counters.Experience,
			})
		}
	}

	weeks, err := s.rankingRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return PlayerSummary{}, fmt.Errorf("list player weekly rankings: %w", err)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].WeekStart.After(weeks[j].WeekStart) })
	for _, week := range weeks {
		summary.Weeks = append(summary.Weeks, PlayerWeeklyEntry{
			WeekStart:    week.WeekStart.Format(time.DateOnly),
			WeekEnd:      week.WeekEnd.Format(time.DateOnly),
			RankPosition: week.RankPosition,
			Values:       week.Values,
			Gains:        week.Gains,
		})
	}

	return summary, nil
}
