package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
)

func TestIdentityResolve_MatchesNameCaseInsensitively(t *testing.T) {
	t.Parallel()
	kit := newTestKit()
	ctx := context.Background()

	created, isNew, err := kit.identity.Resolve(ctx, "Don Corleone", "")
	if err != nil || !isNew {
		t.Fatalf("first resolve: created=%v err=%v", isNew, err)
	}

	found, isNew, err := kit.identity.Resolve(ctx, "  don corleone ", "")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if isNew || found.ID != created.ID {
		t.Fatalf("expected match with %s, got %s (created=%v)", created.ID, found.ID, isNew)
	}
}

func TestIdentityResolve_ProfileIDWinsOverName(t *testing.T) {
	t.Parallel()
	kit := newTestKit()
	ctx := context.Background()

	original, _, err := kit.identity.Resolve(ctx, "Old Name", "7741")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// The player renamed in-game; the profile id still points at them.
	found, isNew, err := kit.identity.Resolve(ctx, "New Name", "7741")
	if err != nil {
		t.Fatalf("resolve after rename: %v", err)
	}
	if isNew || found.ID != original.ID {
		t.Fatalf("expected profile match with %s, got %s (created=%v)", original.ID, found.ID, isNew)
	}
}

func TestIdentityResolve_BackfillsProfileID(t *testing.T) {
	t.Parallel()
	kit := newTestKit()
	ctx := context.Background()

	created, _, err := kit.identity.Resolve(ctx, "Don", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	found, isNew, err := kit.identity.Resolve(ctx, "Don", "9001")
	if err != nil {
		t.Fatalf("resolve with profile id: %v", err)
	}
	if isNew || found.ID != created.ID {
		t.Fatalf("expected name match, got created=%v id=%s", isNew, found.ID)
	}

	stored, ok, err := kit.players.GetByProfileID(ctx, "9001")
	if err != nil || !ok {
		t.Fatalf("profile id not backfilled: ok=%v err=%v", ok, err)
	}
	if stored.ID != created.ID {
		t.Fatalf("profile id attached to wrong player: %s", stored.ID)
	}
}

func TestIdentityResolve_OldestWinsAmongDuplicates(t *testing.T) {
	t.Parallel()
	kit := newTestKit()
	ctx := context.Background()

	first, _, err := kit.identity.Resolve(ctx, "Boss", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// Simulate a duplicate created by a later inconsistent capture.
	second := first
	second.ID = "dup-1"
	second.Name = "BOSS"
	second.CreatedAt = first.CreatedAt.Add(time.Hour)
	if err := kit.players.Create(ctx, second); err != nil {
		t.Fatalf("create duplicate: %v", err)
	}

	found, isNew, err := kit.identity.Resolve(ctx, "boss", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if isNew || found.ID != first.ID {
		t.Fatalf("expected oldest player %s, got %s", first.ID, found.ID)
	}
}

func TestIdentityCheck(t *testing.T) {
	t.Parallel()
	kit := newTestKit()
	ctx := context.Background()

	result, err := kit.identity.Check(ctx, "Nobody")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Exists {
		t.Fatal("expected no match")
	}

	if _, _, err := kit.identity.Resolve(ctx, "Don Corleone", "55"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	result, err = kit.identity.Check(ctx, "DON CORLEONE")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.Exists || result.Player == nil || result.Player.ProfileID != "55" {
		t.Fatalf("unexpected check result: %+v", result)
	}
}

func TestIdentityRename(t *testing.T) {
	t.Parallel()
	kit := newTestKit()
	ctx := context.Background()

	if _, err := kit.identity.Rename(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	created, _, err := kit.identity.Resolve(ctx, "Old", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	renamed, err := kit.identity.Rename(ctx, created.ID, "Fresh")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "Fresh" {
		t.Fatalf("unexpected name: %s", renamed.Name)
	}

	result, err := kit.identity.Check(ctx, "fresh")
	if err != nil || !result.Exists {
		t.Fatalf("renamed player not found: %+v err=%v", result, err)
	}
}

func TestIdentitySummary(t *testing.T) {
	t.Parallel()
	kit := newTestKit()
	ctx := context.Background()

	kit.upload(t, dailystat.StatStrength, date(2025, time.May, 1), ModeAuto, DailyUploadRow{Name: "Don", Value: 1000})
	kit.upload(t, dailystat.StatIntelligence, date(2025, time.May, 1), ModeAuto, DailyUploadRow{Name: "Don", Value: 600})
	kit.upload(t, dailystat.StatStrength, date(2025, time.May, 3), ModeAuto, DailyUploadRow{Name: "Don", Value: 1100})
	kit.upload(t, dailystat.StatSex, date(2025, time.May, 3), ModeAuto, DailyUploadRow{Name: "Don", Value: 400})

	matches, err := kit.players.ListByName(ctx, "don")
	if err != nil || len(matches) != 1 {
		t.Fatalf("player lookup failed: %v", err)
	}

	summary, err := kit.identity.Summary(ctx, matches[0].ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.LatestDate != "2025-05-03" {
		t.Fatalf("unexpected latest date: %s", summary.LatestDate)
	}
	// Development total counts the three trainable stats of the latest row.
	if summary.Total != 1100+0+400 {
		t.Fatalf("unexpected total: %d", summary.Total)
	}
	if len(summary.History) != 2 {
		t.Fatalf("unexpected history length: %d", len(summary.History))
	}
	if summary.History[0].Date != "2025-05-03" {
		t.Fatalf("history not newest first: %s", summary.History[0].Date)
	}
}
