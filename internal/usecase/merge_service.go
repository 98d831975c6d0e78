package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/player"
	"github.com/vkolarov/bgmafia-tracker/internal/domain/weeklyranking"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/cache"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/logging"
)

type MergeInput struct {
	MaxWorkers int
	// DryRun reports the duplicate groups without touching any rows.
	DryRun bool
}

type MergeResult struct {
	PlayerCount    int                `json:"player_count"`
	GroupCount     int                `json:"group_count"`
	MergedPlayers  int                `json:"merged_players"`
	WorkerCount    int                `json:"worker_count"`
	DryRun         bool               `json:"dry_run"`
	Groups         []MergeGroupResult `json:"groups"`
	FailedCount    int                `json:"failed_count"`
	SucceededCount int                `json:"succeeded_count"`
}

type MergeGroupResult struct {
	Name            string   `json:"name"`
	CanonicalID     string   `json:"canonical_id"`
	DuplicateIDs    []string `json:"duplicate_ids"`
	Status          string   `json:"status"`
	StatRowsMerged  int      `json:"stat_rows_merged"`
	StatRowsMoved   int      `json:"stat_rows_moved"`
	WeeklyRowsMoved int      `json:"weekly_rows_moved"`
	WeeklyRowsGone  int      `json:"weekly_rows_dropped"`
	DurationMs      int64    `json:"duration_ms"`
	Message         string   `json:"message,omitempty"`
}

const (
	mergeStatusSuccess = "success"
	mergeStatusFailed  = "failed"
	mergeStatusDryRun  = "dry_run"

	defaultMergeWorkers = 4
	maxMergeWorkers     = 16
)

// MergeService collapses players that share a normalized name into the oldest
// one. Upload rows match on name, so a rename or an inconsistent capture can
// leave the same character split across several player rows.
type MergeService struct {
	playerRepo  player.Repository
	statRepo    dailystat.Repository
	rankingRepo weeklyranking.Repository
	viewCache   *cache.Store
	logger      *logging.Logger
}

func NewMergeService(
	playerRepo player.Repository,
	statRepo dailystat.Repository,
	rankingRepo weeklyranking.Repository,
	viewCache *cache.Store,
	logger *logging.Logger,
) *MergeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MergeService{
		playerRepo:  playerRepo,
		statRepo:    statRepo,
		rankingRepo: rankingRepo,
		viewCache:   viewCache,
		logger:      logger,
	}
}

type mergeGroup struct {
	name       string
	canonical  player.Player
	duplicates []player.Player
}

func (s *MergeService) MergeDuplicates(ctx context.Context, input MergeInput) (MergeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MergeService.MergeDuplicates")
	defer span.End()

	players, err := s.playerRepo.ListAll(ctx)
	if err != nil {
		return MergeResult{}, fmt.Errorf("list players: %w", err)
	}

	groups := groupDuplicates(players)
	result := MergeResult{
		PlayerCount: len(players),
		GroupCount:  len(groups),
		DryRun:      input.DryRun,
		Groups:      []MergeGroupResult{},
	}

	if len(groups) == 0 {
		return result, nil
	}

	if input.DryRun {
		for _, group := range groups {
			result.Groups = append(result.Groups, MergeGroupResult{
				Name:         group.name,
				CanonicalID:  group.canonical.ID,
				DuplicateIDs: playerIDs(group.duplicates),
				Status:       mergeStatusDryRun,
			})
			result.MergedPlayers += len(group.duplicates)
		}
		return result, nil
	}

	workerCount := input.MaxWorkers
	if workerCount <= 0 {
		workerCount = defaultMergeWorkers
	}
	if workerCount > maxMergeWorkers {
		workerCount = maxMergeWorkers
	}
	if workerCount > len(groups) {
		workerCount = len(groups)
	}
	result.WorkerCount = workerCount

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return MergeResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	// Groups hold disjoint players, so they can merge in parallel.
	rows := make(chan MergeGroupResult, len(groups))
	var workers sync.WaitGroup
	for _, group := range groups {
		group := group
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := s.mergeGroup(ctx, group)
			row.DurationMs = time.Since(start).Milliseconds()
			rows <- row
		}); err != nil {
			workers.Done()
			rows <- MergeGroupResult{
				Name:         group.name,
				CanonicalID:  group.canonical.ID,
				DuplicateIDs: playerIDs(group.duplicates),
				Status:       mergeStatusFailed,
				Message:      fmt.Sprintf("submit merge task: %v", err),
			}
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		if row.Status == mergeStatusSuccess {
			result.SucceededCount++
			result.MergedPlayers += len(row.DuplicateIDs)
		} else {
			result.FailedCount++
		}
		result.Groups = append(result.Groups, row)
	}
	sort.Slice(result.Groups, func(i, j int) bool { return result.Groups[i].Name < result.Groups[j].Name })

	if s.viewCache != nil {
		s.viewCache.DeletePrefix(ctx, "rankings:")
	}

	s.logger.InfoContext(ctx, "merged duplicate players",
		"groups", result.GroupCount,
		"merged_players", result.MergedPlayers,
		"failed", result.FailedCount,
	)
	return result, nil
}

func (s *MergeService) mergeGroup(ctx context.Context, group mergeGroup) MergeGroupResult {
	row := MergeGroupResult{
		Name:         group.name,
		CanonicalID:  group.canonical.ID,
		DuplicateIDs: playerIDs(group.duplicates),
		Status:       mergeStatusSuccess,
	}

	canonical := group.canonical
	for _, dup := range group.duplicates {
		if err := s.mergePlayer(ctx, &canonical, dup, &row); err != nil {
			row.Status = mergeStatusFailed
			row.Message = err.Error()
			return row
		}
	}
	return row
}

func (s *MergeService) mergePlayer(ctx context.Context, canonical *player.Player, dup player.Player, row *MergeGroupResult) error {
	stats, err := s.statRepo.ListByPlayer(ctx, dup.ID)
	if err != nil {
		return fmt.Errorf("list duplicate stats: %w", err)
	}

	for _, stat := range stats {
		kept, ok, err := s.statRepo.GetByPlayerAndDate(ctx, canonical.ID, stat.Date)
		if err != nil {
			return fmt.Errorf("get canonical stat: %w", err)
		}
		if !ok {
			if err := s.statRepo.Reassign(ctx, stat.ID, canonical.ID); err != nil {
				return fmt.Errorf("move stat row: %w", err)
			}
			row.StatRowsMoved++
			continue
		}

		// Both rows are partial captures of the same day, so the counters sum.
		if err := s.statRepo.UpdateCounters(ctx, kept.ID, kept.Counters.Add(stat.Counters)); err != nil {
			return fmt.Errorf("merge stat counters: %w", err)
		}
		if err := s.statRepo.Delete(ctx, stat.ID); err != nil {
			return fmt.Errorf("delete merged stat row: %w", err)
		}
		row.StatRowsMerged++
	}

	weeks, err := s.rankingRepo.ListByPlayer(ctx, dup.ID)
	if err != nil {
		return fmt.Errorf("list duplicate weekly rankings: %w", err)
	}
	for _, week := range weeks {
		_, ok, err := s.rankingRepo.GetByPlayerAndWeek(ctx, canonical.ID, week.WeekStart, week.WeekEnd)
		if err != nil {
			return fmt.Errorf("get canonical weekly ranking: %w", err)
		}
		if ok {
			// Weekly values are absolutes, summing them would double the
			// player; the canonical capture wins.
			if err := s.rankingRepo.Delete(ctx, week.ID); err != nil {
				return fmt.Errorf("delete duplicate weekly ranking: %w", err)
			}
			row.WeeklyRowsGone++
			continue
		}
		if err := s.rankingRepo.Reassign(ctx, week.ID, canonical.ID); err != nil {
			return fmt.Errorf("move weekly ranking: %w", err)
		}
		row.WeeklyRowsMoved++
	}

	if canonical.ProfileID == "" && dup.ProfileID != "" {
		if err := s.playerRepo.SetProfileID(ctx, canonical.ID, dup.ProfileID); err != nil {
			return fmt.Errorf("carry over profile id: %w", err)
		}
		canonical.ProfileID = dup.ProfileID
	}

	// The duplicate must own no rows once its player row is gone; sweep
	// whatever an interrupted earlier run may have left behind.
	if err := s.statRepo.DeleteByPlayer(ctx, dup.ID); err != nil {
		return fmt.Errorf("clear duplicate stats: %w", err)
	}
	if err := s.rankingRepo.DeleteByPlayer(ctx, dup.ID); err != nil {
		return fmt.Errorf("clear duplicate weekly rankings: %w", err)
	}

	if err := s.playerRepo.Delete(ctx, dup.ID); err != nil {
		return fmt.Errorf("delete duplicate player: %w", err)
	}
	return nil
}

func groupDuplicates(players []player.Player) []mergeGroup {
	byName := make(map[string][]player.Player)
	for _, p := range players {
		key := player.NormalizeName(p.Name)
		if key == "" {
			continue
		}
		byName[key] = append(byName[key], p)
	}

	groups := make([]mergeGroup, 0)
	for name, members := range byName {
		if len(members) < 2 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].CreatedAt.Before(members[j].CreatedAt)
		})
		groups = append(groups, mergeGroup{
			name:       name,
			canonical:  members[0],
			duplicates: members[1:],
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].name < groups[j].name })
	return groups
}

func playerIDs(players []player.Player) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, p.ID)
	}
	return out
}
