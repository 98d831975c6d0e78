package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/logging"
)

// failingStatRepo breaks every read for one player so batch uploads can be
// exercised against a partially unavailable store.
type failingStatRepo struct {
	dailystat.Repository
	failPlayerID string
}

func (r *failingStatRepo) GetByPlayerAndDate(ctx context.Context, playerID string, day time.Time) (dailystat.DailyStat, bool, error) {
	if playerID == r.failPlayerID {
		return dailystat.DailyStat{}, false, errors.New("storage offline")
	}
	return r.Repository.GetByPlayerAndDate(ctx, playerID, day)
}

func (r *failingStatRepo) LastOnOrBefore(ctx context.Context, playerID string, day time.Time) (dailystat.DailyStat, bool, error) {
	if playerID == r.failPlayerID {
		return dailystat.DailyStat{}, false, errors.New("storage offline")
	}
	return r.Repository.LastOnOrBefore(ctx, playerID, day)
}

func (k *testKit) upload(t *testing.T, stat dailystat.StatType, day time.Time, mode ReconcileMode, rows ...DailyUploadRow) DailyUploadResult {
	t.Helper()

	result, err := k.daily.ApplyDailyUpload(context.Background(), DailyUploadInput{
		Stat: stat,
		Date: day,
		Mode: mode,
		Rows: rows,
	})
	if err != nil {
		t.Fatalf("apply daily upload: %v", err)
	}
	return result
}

func (k *testKit) statValue(t *testing.T, name string, day time.Time, stat dailystat.StatType) int64 {
	t.Helper()

	ctx := context.Background()
	matches, err := k.players.ListByName(ctx, name)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("player %q not found", name)
	}
	row, ok, err := k.stats.GetByPlayerAndDate(ctx, matches[0].ID, day)
	if err != nil {
		t.Fatalf("get daily stat: %v", err)
	}
	if !ok {
		t.Fatalf("no stat row for %q on %s", name, day.Format(time.DateOnly))
	}
	return row.Counters.Value(stat)
}

func TestApplyDailyUpload_CreatesPlayersAndRows(t *testing.T) {
	t.Parallel()
	kit := newTestKit()

	day := date(2025, time.May, 1)
	result := kit.upload(t, dailystat.StatStrength, day, ModeAuto,
		DailyUploadRow{Name: "Don Corleone", Value: 1200},
		DailyUploadRow{Name: "Scarface", Value: 900},
	)

	if result.Created != 2 || result.PlayersCreated != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := kit.statValue(t, "Don Corleone", day, dailystat.StatStrength); got != 1200 {
		t.Fatalf("unexpected strength: %d", got)
	}
}

func TestApplyDailyUpload_SecondStatFillsSameRow(t *testing.T) {
	t.Parallel()
	kit := newTestKit()

	day := date(2025, time.May, 1)
	kit.upload(t, dailystat.StatStrength, day, ModeAuto, DailyUploadRow{Name: "Don", Value: 1000})
	result := kit.upload(t, dailystat.StatIntelligence, day, ModeAuto, DailyUploadRow{Name: "Don", Value: 700})

	// The stored intelligence is zero, so the incoming value lands as-is
	// and counts as an add.
	if result.Added != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := kit.statValue(t, "Don", day, dailystat.StatStrength); got != 1000 {
		t.Fatalf("strength clobbered: %d", got)
	}
	if got := kit.statValue(t, "Don", day, dailystat.StatIntelligence); got != 700 {
		t.Fatalf("unexpected intelligence: %d", got)
	}
}

func TestApplyDailyUpload_SmallDriftOverwrites(t *testing.T) {
	t.Parallel()
	kit := newTestKit()

	day := date(2025, time.May, 1)
	kit.upload(t, dailystat.StatStrength, day, ModeAuto, DailyUploadRow{Name: "Don", Value: 1000})
	result := kit.upload(t, dailystat.StatStrength, day, ModeAuto, DailyUploadRow{Name: "Don", Value: 1050})

	if result.Overwritten != 1 || result.Added != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := kit.statValue(t, "Don", day, dailystat.StatStrength); got != 1050 {
		t.Fatalf("unexpected strength: %d", got)
	}
}

func TestApplyDailyUpload_LargeJumpAdds(t *testing.T) {
	t.Parallel()
	kit := newTestKit()

	day := date(2025, time.May, 1)
	kit.upload(t, dailystat.StatStrength, day, ModeAuto, DailyUploadRow{Name: "Don", Value: 1000})
	result := kit.upload(t, dailystat.StatStrength, day, ModeAuto, DailyUploadRow{Name: "Don", Value: 3000})

	if result.Added != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := kit.statValue(t, "Don", day, dailystat.StatStrength); got != 4000 {
		t.Fatalf("unexpected strength: %d", got)
	}
}

func TestApplyDailyUpload_EqualReUploadDoublesAndFlags(t *testing.T) {
	t.Parallel()
	kit := newTestKit()

	day := date(2025, time.May, 1)
	kit.upload(t, dailystat.StatStrength, day, ModeAuto, DailyUploadRow{Name: "Don", Value: 1000})
	result := kit.upload(t, dailystat.StatStrength, day, ModeAuto, DailyUploadRow{Name: "Don", Value: 1000})

	if result.Added != 1 || result.Suspicious != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := kit.statValue(t, "Don", day, dailystat.StatStrength); got != 2000 {
		t.Fatalf("unexpected strength: %d", got)
	}
}

func TestApplyDailyUpload_BelowHistoricalMaxOverwrites(t *testing.T) {
	t.Parallel()
	kit := newTestKit()

	kit.upload(t, dailystat.StatStrength, date(2025, time.May, 1), ModeAuto, DailyUploadRow{Name: "Don", Value: 5000})
	day2 := date(2025, time.May, 2)
	kit.upload(t, dailystat.StatStrength, day2, ModeAuto, DailyUploadRow{Name: "Don", Value: 100})
	// 4000 sits under the all-time high of 5000, so it must be a corrected
	// absolute even though it is a 40x jump over the stored 100.
	result := kit.upload(t, dailystat.StatStrength, day2, ModeAuto, DailyUploadRow{Name: "Don", Value: 4000})

	if result.Overwritten != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := kit.statValue(t, "Don", day2, dailystat.StatStrength); got != 4000 {
		t.Fatalf("unexpected strength: %d", got)
	}
}

func TestApplyDailyUpload_ModeOverride(t *testing.T) {
	t.Parallel()
	kit := newTestKit()

	day := date(2025, time.May, 1)
	kit.upload(t, dailystat.StatStrength, day, ModeAuto, DailyUploadRow{Name: "Don", Value: 1000})

	kit.upload(t, dailystat.StatStrength, day, ModeAdd, DailyUploadRow{Name: "Don", Value: 1050})
	if got := kit.statValue(t, "Don", day, dailystat.StatStrength); got != 2050 {
		t.Fatalf("forced add produced %d", got)
	}

	kit.upload(t, dailystat.StatStrength, day, ModeOverwrite, DailyUploadRow{Name: "Don", Value: 500})
	if got := kit.statValue(t, "Don", day, dailystat.StatStrength); got != 500 {
		t.Fatalf("forced overwrite produced %d", got)
	}
}

func TestApplyDailyUpload_RejectsBadInput(t *testing.T) {
	t.Parallel()
	kit := newTestKit()
	ctx := context.Background()

	cases := []DailyUploadInput{
		{Stat: "charisma", Date: date(2025, time.May, 1), Rows: []DailyUploadRow{{Name: "Don", Value: 1}}},
		{Stat: dailystat.StatStrength, Rows: []DailyUploadRow{{Name: "Don", Value: 1}}},
		{Stat: dailystat.StatStrength, Date: date(2025, time.May, 1)},
		{Stat: dailystat.StatStrength, Date: date(2025, time.May, 1), Mode: "replace", Rows: []DailyUploadRow{{Name: "Don", Value: 1}}},
		{Stat: dailystat.StatStrength, Date: date(2025, time.May, 1), Rows: []DailyUploadRow{{Name: "Don", Value: -5}}},
	}
	for i, input := range cases {
		if _, err := kit.daily.ApplyDailyUpload(ctx, input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected invalid input, got %v", i, err)
		}
	}
}

func TestApplyDailyUpload_RowFailureDoesNotBlockBatch(t *testing.T) {
	t.Parallel()
	kit := newTestKit()
	ctx := context.Background()

	day1 := date(2025, time.May, 1)
	kit.upload(t, dailystat.StatStrength, day1, ModeAuto,
		DailyUploadRow{Name: "Alpha", Value: 100},
		DailyUploadRow{Name: "Bravo", Value: 100},
		DailyUploadRow{Name: "Charlie", Value: 100},
	)
	bravo, err := kit.players.ListByName(ctx, "Bravo")
	if err != nil || len(bravo) == 0 {
		t.Fatalf("bravo not found: %v", err)
	}

	stats := &failingStatRepo{Repository: kit.stats, failPlayerID: bravo[0].ID}
	daily := NewReconcileService(kit.identity, stats, kit.store, logging.NewNop())

	day2 := date(2025, time.May, 2)
	result, err := daily.ApplyDailyUpload(ctx, DailyUploadInput{
		Stat: dailystat.StatStrength,
		Date: day2,
		Rows: []DailyUploadRow{
			{Name: "Alpha", Value: 200},
			{Name: "Bravo", Value: 200},
			{Name: "Charlie", Value: 200},
		},
	})
	if err != nil {
		t.Fatalf("apply daily upload: %v", err)
	}

	if result.Created != 2 || result.Failed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Results) != 3 || !result.Results[0].Success || !result.Results[2].Success {
		t.Fatalf("unexpected row results: %+v", result.Results)
	}
	failed := result.Results[1]
	if failed.Name != "Bravo" || failed.Success || failed.Error == "" {
		t.Fatalf("unexpected failed row: %+v", failed)
	}

	// The row after the failure still landed.
	if got := kit.statValue(t, "Charlie", day2, dailystat.StatStrength); got != 200 {
		t.Fatalf("unexpected strength: %d", got)
	}
}

func TestSetDayType(t *testing.T) {
	t.Parallel()
	kit := newTestKit()

	day := date(2025, time.May, 1)
	kit.upload(t, dailystat.StatStrength, day, ModeAuto,
		DailyUploadRow{Name: "Don", Value: 1000},
		DailyUploadRow{Name: "Scarface", Value: 900},
	)

	result, err := kit.daily.SetDayType(context.Background(), day, "Ден на силата")
	if err != nil {
		t.Fatalf("set day type: %v", err)
	}
	if result.Updated != 2 {
		t.Fatalf("unexpected updated count: %d", result.Updated)
	}

	check, err := kit.ranking.CheckDate(context.Background(), day)
	if err != nil {
		t.Fatalf("check date: %v", err)
	}
	if check.DayType != "Ден на силата" {
		t.Fatalf("unexpected day type: %q", check.DayType)
	}
}
