package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/cache"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/logging"
)

// ReconcileMode selects how an incoming value is combined with an already
// stored value for the same player, date and stat.
type ReconcileMode string

const (
	// ModeAuto applies the drift heuristic below.
	ModeAuto ReconcileMode = "auto"
	// ModeOverwrite always replaces the stored value.
	ModeOverwrite ReconcileMode = "overwrite"
	// ModeAdd always sums the incoming value onto the stored one.
	ModeAdd ReconcileMode = "add"
)

func ParseReconcileMode(v string) (ReconcileMode, error) {
	switch ReconcileMode(strings.ToLower(strings.TrimSpace(v))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeOverwrite:
		return ModeOverwrite, nil
	case ModeAdd:
		return ModeAdd, nil
	default:
		return "", fmt.Errorf("%w: unknown reconcile mode %q", ErrInvalidInput, v)
	}
}

// Incoming values within 10% of the stored one are treated as a re-upload of
// the same snapshot and overwrite; larger jumps are assumed to be a second
// capture taken later the same day and are added.
const overwriteDriftThreshold = 0.1

type DailyUploadRow struct {
	Name      string
	ProfileID string
	Value     int64
}

type DailyUploadInput struct {
	Stat    dailystat.StatType
	Date    time.Time
	Mode    ReconcileMode
	DayType string
	Rows    []DailyUploadRow
}

// UploadRowOutcome reports one row of a batch upload, in upload order. Rows
// fail independently; a failed row never blocks the rest of the batch.
type UploadRowOutcome struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type DailyUploadResult struct {
	Date           string             `json:"date"`
	Stat           string             `json:"stat"`
	Mode           string             `json:"mode"`
	RowCount       int                `json:"row_count"`
	Created        int                `json:"created"`
	Overwritten    int                `json:"overwritten"`
	Added          int                `json:"added"`
	PlayersCreated int                `json:"players_created"`
	Suspicious     int                `json:"suspicious"`
	Failed         int                `json:"failed"`
	Results        []UploadRowOutcome `json:"results"`
}

// ReconcileService folds leaderboard uploads into the per-day stat table. Each
// upload carries one stat type for one date; players are resolved by name or
// profile id and rows are keyed by (player, date).
type ReconcileService struct {
	identity  *IdentityService
	statRepo  dailystat.Repository
	viewCache *cache.Store
	logger    *logging.Logger
}

func NewReconcileService(
	identity *IdentityService,
	statRepo dailystat.Repository,
	viewCache *cache.Store,
	logger *logging.Logger,
) *ReconcileService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReconcileService{
		identity:  identity,
		statRepo:  statRepo,
		viewCache: viewCache,
		logger:    logger,
	}
}

func (s *ReconcileService) ApplyDailyUpload(ctx context.Context, input DailyUploadInput) (DailyUploadResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.ApplyDailyUpload")
	defer span.End()

	if _, err := dailystat.ParseStatType(string(input.Stat)); err != nil {
		return DailyUploadResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.Date.IsZero() {
		return DailyUploadResult{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if len(input.Rows) == 0 {
		return DailyUploadResult{}, fmt.Errorf("%w: rows are required", ErrInvalidInput)
	}
	mode, err := ParseReconcileMode(string(input.Mode))
	if err != nil {
		return DailyUploadResult{}, err
	}

	// Row shape problems fail the whole batch before anything is written.
	for idx, row := range input.Rows {
		if row.Value < 0 {
			return DailyUploadResult{}, fmt.Errorf("%w: row %d has a negative value", ErrInvalidInput, idx)
		}
	}

	date := dailystat.NormalizeDate(input.Date)
	dayType := strings.TrimSpace(input.DayType)

	result := DailyUploadResult{
		Date:     date.Format(time.DateOnly),
		Stat:     string(input.Stat),
		Mode:     string(mode),
		RowCount: len(input.Rows),
		Results:  make([]UploadRowOutcome, 0, len(input.Rows)),
	}

	for _, row := range input.Rows {
		resolved, created, err := s.identity.Resolve(ctx, row.Name, row.ProfileID)
		if err != nil {
			result.Failed++
			result.Results = append(result.Results, UploadRowOutcome{Name: row.Name, Error: err.Error()})
			s.logger.WarnContext(ctx, "daily upload row failed", "name", row.Name, "error", err)
			continue
		}
		if created {
			result.PlayersCreated++
		}

		action, suspicious, err := s.reconcileRow(ctx, resolved.ID, input.Stat, date, row.Value, mode, dayType)
		if err != nil {
			result.Failed++
			result.Results = append(result.Results, UploadRowOutcome{Name: row.Name, Error: err.Error()})
			s.logger.WarnContext(ctx, "daily upload row failed", "name", row.Name, "error", err)
			continue
		}
		if suspicious {
			result.Suspicious++
		}

		switch action {
		case reconcileCreated:
			result.Created++
		case reconcileOverwritten:
			result.Overwritten++
		case reconcileAdded:
			result.Added++
		}
		result.Results = append(result.Results, UploadRowOutcome{Name: row.Name, Success: true})
	}

	if s.viewCache != nil {
		s.viewCache.DeletePrefix(ctx, "rankings:")
	}

	s.logger.InfoContext(ctx, "applied daily upload",
		"date", result.Date,
		"stat", result.Stat,
		"rows", result.RowCount,
		"created", result.Created,
		"overwritten", result.Overwritten,
		"added", result.Added,
		"suspicious", result.Suspicious,
		"failed", result.Failed,
	)
	return result, nil
}

type reconcileAction int

const (
	reconcileCreated reconcileAction = iota
	reconcileOverwritten
	reconcileAdded
)

func (s *ReconcileService) reconcileRow(
	ctx context.Context,
	playerID string,
	stat dailystat.StatType,
	date time.Time,
	incoming int64,
	mode ReconcileMode,
	dayType string,
) (reconcileAction, bool, error) {
	existing, ok, err := s.statRepo.GetByPlayerAndDate(ctx, playerID, date)
	if err != nil {
		return 0, false, fmt.Errorf("get daily stat: %w", err)
	}

	if !ok {
		item := dailystat.DailyStat{
			PlayerID: playerID,
			Date:     date,
			DayType:  dayType,
		}
		item.Counters.Set(stat, incoming)
		if _, err := s.statRepo.Insert(ctx, item); err != nil {
			return 0, false, fmt.Errorf("insert daily stat: %w", err)
		}
		return reconcileCreated, false, nil
	}

	stored := existing.Counters.Value(stat)

	var dayTypePatch *string
	if dayType != "" && dayType != existing.DayType {
		dayTypePatch = &dayType
	}

	write := func(value int64, action reconcileAction) (reconcileAction, bool, error) {
		if err := s.statRepo.UpdateStat(ctx, existing.ID, stat, value, dayTypePatch); err != nil {
			return 0, false, fmt.Errorf("update daily stat: %w", err)
		}
		return action, false, nil
	}

	switch mode {
	case ModeOverwrite:
		return write(incoming, reconcileOverwritten)
	case ModeAdd:
		return write(stored+incoming, reconcileAdded)
	}

	// First capture of this stat on an existing row. Adding onto zero and
	// overwriting zero write the same value; it counts as an add.
	if stored == 0 {
		return write(incoming, reconcileAdded)
	}

	highest, err := s.statRepo.HighestValue(ctx, playerID, stat)
	if err != nil {
		return 0, false, fmt.Errorf("get highest stat value: %w", err)
	}

	// A value below the all-time high cannot be a same-day increment on top
	// of the stored snapshot; treat it as a corrected absolute.
	if incoming < highest {
		return write(incoming, reconcileOverwritten)
	}

	// An exact repeat of the stored value doubles it. Real uploads do hit
	// this when the same capture is submitted twice, so flag it.
	if incoming == stored {
		s.logger.WarnContext(ctx, "doubling stat on equal re-upload",
			"player_id", playerID,
			"stat", string(stat),
			"date", date.Format(time.DateOnly),
			"value", incoming,
		)
		action, _, err := write(stored+incoming, reconcileAdded)
		return action, true, err
	}

	if relativeDrift(incoming, stored) < overwriteDriftThreshold {
		return write(incoming, reconcileOverwritten)
	}
	return write(stored+incoming, reconcileAdded)
}

func relativeDrift(a, b int64) float64 {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	max := a
	if b > max {
		max = b
	}
	if max == 0 {
		return 0
	}
	return float64(diff) / float64(max)
}

type DayTypeResult struct {
	Date    string `json:"date"`
	DayType string `json:"day_type"`
	Updated int    `json:"updated"`
}

// SetDayType stamps the in-game event name onto every stat row of a date.
func (s *ReconcileService) SetDayType(ctx context.Context, date time.Time, dayType string) (DayTypeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.SetDayType")
	defer span.End()

	if date.IsZero() {
		return DayTypeResult{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	dayType = strings.TrimSpace(dayType)
	if dayType == "" {
		return DayTypeResult{}, fmt.Errorf("%w: day type is required", ErrInvalidInput)
	}

	normalized := dailystat.NormalizeDate(date)
	updated, err := s.statRepo.SetDayTypeForDate(ctx, normalized, dayType)
	if err != nil {
		return DayTypeResult{}, fmt.Errorf("set day type: %w", err)
	}

	if s.viewCache != nil {
		s.viewCache.DeletePrefix(ctx, "rankings:")
	}

	return DayTypeResult{
		Date:    normalized.Format(time.DateOnly),
		DayType: dayType,
		Updated: updated,
	}, nil
}
