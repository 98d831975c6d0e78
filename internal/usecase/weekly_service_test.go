package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/logging"
)

func (k *testKit) weeklyUpload(t *testing.T, stat dailystat.StatType, weekStart, weekEnd time.Time, rows ...WeeklyUploadRow) WeeklyUploadResult {
	t.Helper()

	result, err := k.weekly.ApplyWeeklyUpload(context.Background(), WeeklyUploadInput{
		Stat:      stat,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Rows:      rows,
	})
	if err != nil {
		t.Fatalf("apply weekly upload: %v", err)
	}
	return result
}

func (k *testKit) weeklyRow(t *testing.T, name string, weekStart, weekEnd time.Time) (int64, int64, dailystat.Counters, dailystat.Counters) {
	t.Helper()

	ctx := context.Background()
	matches, err := k.players.ListByName(ctx, name)
	if err != nil || len(matches) == 0 {
		t.Fatalf("player %q not found: %v", name, err)
	}
	row, ok, err := k.weeks.GetByPlayerAndWeek(ctx, matches[0].ID, weekStart, weekEnd)
	if err != nil || !ok {
		t.Fatalf("weekly row for %q not found: %v", name, err)
	}
	return row.Values.Strength, row.Gains.Strength, row.Values, row.Gains
}

func TestApplyWeeklyUpload_GainFromBaseline(t *testing.T) {
	t.Parallel()
	kit := newTestKit()

	weekStart := date(2025, time.May, 5)
	weekEnd := date(2025, time.May, 11)

	// Last capture before the week opened.
	kit.upload(t, dailystat.StatStrength, date(2025, time.May, 4), ModeAuto, DailyUploadRow{Name: "Don", Value: 1000})

	result := kit.weeklyUpload(t, dailystat.StatStrength, weekStart, weekEnd,
		WeeklyUploadRow{Name: "Don", Value: 1500, Rank: 3},
	)
	if result.Created != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	value, gain, _, _ := kit.weeklyRow(t, "Don", weekStart, weekEnd)
	if value != 1500 || gain != 500 {
		t.Fatalf("unexpected value/gain: %d/%d", value, gain)
	}
}

func TestApplyWeeklyUpload_BaselineIgnoresWeekStartDay(t *testing.T) {
	t.Parallel()
	kit := newTestKit()

	weekStart := date(2025, time.May, 5)
	weekEnd := date(2025, time.May, 11)

	kit.upload(t, dailystat.StatStrength, date(2025, time.May, 2), ModeAuto, DailyUploadRow{Name: "Don", Value: 1000})
	// A capture on the opening day itself is inside the week.
	kit.upload(t, dailystat.StatStrength, weekStart, ModeAuto, DailyUploadRow{Name: "Don", Value: 1400})

	kit.weeklyUpload(t, dailystat.StatStrength, weekStart, weekEnd, WeeklyUploadRow{Name: "Don", Value: 1600})

	_, gain, _, _ := kit.weeklyRow(t, "Don", weekStart, weekEnd)
	if gain != 600 {
		t.Fatalf("unexpected gain: %d", gain)
	}
}

func TestApplyWeeklyUpload_NegativeGainClampsToZero(t *testing.T) {
	t.Parallel()
	kit := newTestKit()

	weekStart := date(2025, time.May, 5)
	weekEnd := date(2025, time.May, 11)

	kit.upload(t, dailystat.StatStrength, date(2025, time.May, 3), ModeAuto, DailyUploadRow{Name: "Don", Value: 2000})
	kit.weeklyUpload(t, dailystat.StatStrength, weekStart, weekEnd, WeeklyUploadRow{Name: "Don", Value: 1500})

	value, gain, _, _ := kit.weeklyRow(t, "Don", weekStart, weekEnd)
	if value != 1500 || gain != 0 {
		t.Fatalf("unexpected value/gain: %d/%d", value, gain)
	}
}

func TestApplyWeeklyUpload_NoBaselineGainIsFullValue(t *testing.T) {
	t.Parallel()
	kit := newTestKit()

	weekStart := date(2025, time.May, 5)
	weekEnd := date(2025, time.May, 11)

	result := kit.weeklyUpload(t, dailystat.StatStrength, weekStart, weekEnd, WeeklyUploadRow{Name: "Don", Value: 1500})
	if result.PlayersCreated != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	value, gain, _, _ := kit.weeklyRow(t, "Don", weekStart, weekEnd)
	if value != 1500 || gain != 1500 {
		t.Fatalf("unexpected value/gain: %d/%d", value, gain)
	}
}

func TestApplyWeeklyUpload_SecondStatUpdatesSameRow(t *testing.T) {
	t.Parallel()
	kit := newTestKit()

	weekStart := date(2025, time.May, 5)
	weekEnd := date(2025, time.May, 11)

	first := kit.weeklyUpload(t, dailystat.StatStrength, weekStart, weekEnd, WeeklyUploadRow{Name: "Don", Value: 1500})
	second := kit.weeklyUpload(t, dailystat.StatIntelligence, weekStart, weekEnd, WeeklyUploadRow{Name: "Don", Value: 800})
	if first.Created != 1 || second.Updated != 1 || second.Created != 0 {
		t.Fatalf("unexpected results: first=%+v second=%+v", first, second)
	}

	_, _, values, gains := kit.weeklyRow(t, "Don", weekStart, weekEnd)
	if values.Strength != 1500 || values.Intelligence != 800 {
		t.Fatalf("unexpected values: %+v", values)
	}
	if gains.Intelligence != 800 {
		t.Fatalf("unexpected gains: %+v", gains)
	}
}

func TestApplyWeeklyUpload_RowFailureDoesNotBlockBatch(t *testing.T) {
	t.Parallel()
	kit := newTestKit()
	ctx := context.Background()

	kit.upload(t, dailystat.StatStrength, date(2025, time.May, 1), ModeAuto,
		DailyUploadRow{Name: "Alpha", Value: 100},
		DailyUploadRow{Name: "Bravo", Value: 100},
	)
	bravo, err := kit.players.ListByName(ctx, "Bravo")
	if err != nil || len(bravo) == 0 {
		t.Fatalf("bravo not found: %v", err)
	}

	stats := &failingStatRepo{Repository: kit.stats, failPlayerID: bravo[0].ID}
	weekly := NewWeeklyService(kit.identity, stats, kit.weeks, kit.store, logging.NewNop())

	weekStart := date(2025, time.May, 5)
	weekEnd := date(2025, time.May, 11)
	result, err := weekly.ApplyWeeklyUpload(ctx, WeeklyUploadInput{
		Stat:      dailystat.StatStrength,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Rows: []WeeklyUploadRow{
			{Name: "Alpha", Value: 300},
			{Name: "Bravo", Value: 300},
			{Name: "Charlie", Value: 300},
		},
	})
	if err != nil {
		t.Fatalf("apply weekly upload: %v", err)
	}

	if result.Created != 2 || result.Failed != 1 || result.PlayersCreated != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	failed := result.Results[1]
	if failed.Name != "Bravo" || failed.Success || failed.Error == "" {
		t.Fatalf("unexpected failed row: %+v", failed)
	}

	// The rows around the failure still landed with their gains.
	value, gain, _, _ := kit.weeklyRow(t, "Alpha", weekStart, weekEnd)
	if value != 300 || gain != 200 {
		t.Fatalf("unexpected value/gain: %d/%d", value, gain)
	}
	value, gain, _, _ = kit.weeklyRow(t, "Charlie", weekStart, weekEnd)
	if value != 300 || gain != 300 {
		t.Fatalf("unexpected value/gain: %d/%d", value, gain)
	}
}

func TestApplyWeeklyUpload_RejectsBadInput(t *testing.T) {
	t.Parallel()
	kit := newTestKit()
	ctx := context.Background()

	weekStart := date(2025, time.May, 5)
	cases := []WeeklyUploadInput{
		{Stat: "charisma", WeekStart: weekStart, WeekEnd: weekStart, Rows: []WeeklyUploadRow{{Name: "Don", Value: 1}}},
		{Stat: dailystat.StatStrength, WeekEnd: weekStart, Rows: []WeeklyUploadRow{{Name: "Don", Value: 1}}},
		{Stat: dailystat.StatStrength, WeekStart: weekStart, WeekEnd: weekStart.AddDate(0, 0, -1), Rows: []WeeklyUploadRow{{Name: "Don", Value: 1}}},
		{Stat: dailystat.StatStrength, WeekStart: weekStart, WeekEnd: weekStart},
	}
	for i, input := range cases {
		if _, err := kit.weekly.ApplyWeeklyUpload(ctx, input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected invalid input, got %v", i, err)
		}
	}
}
