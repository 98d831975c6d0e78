package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/vkolarov/bgmafia-tracker/internal/infrastructure/repository/memory"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/cache"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/id"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/logging"
	"github.com/vkolarov/bgmafia-tracker/internal/usecase"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	players := memory.NewPlayerRepository()
	stats := memory.NewDailyStatRepository()
	weeks := memory.NewWeeklyRankingRepository()
	store := cache.NewStore(time.Minute)
	logger := logging.NewNop()

	identity := usecase.NewIdentityService(players, stats, weeks, id.NewUUIDGenerator(), logger)
	daily := usecase.NewReconcileService(identity, stats, store, logger)
	weekly := usecase.NewWeeklyService(identity, stats, weeks, store, logger)
	merge := usecase.NewMergeService(players, stats, weeks, store, logger)
	ranking := usecase.NewRankingService(players, stats, weeks, store, logger)

	handler := NewHandler(identity, daily, weekly, merge, ranking, logger)
	return NewRouter(handler, logger, []string{"*"}, "job-token")
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	data, _ := envelope["data"].(map[string]any)
	return data
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestSaveDailyRankings_EndToEnd(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/rankings/daily", `{
		"stat": "strength",
		"date": "2025-05-01",
		"rows": [
			{"name": "Коцето", "profile_id": "1001", "value": 1500},
			{"name": "Мечока", "value": 900}
		]
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if got := data["created"]; got != float64(2) {
		t.Fatalf("expected 2 created rows, got %v", got)
	}
	if got := data["players_created"]; got != float64(2) {
		t.Fatalf("expected 2 created players, got %v", got)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/rankings/daily/2025-05-01", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data = decodeData(t, rec)
	entries, _ := data["entries"].([]any)
	if len(entries) != 2 {
		t.Fatalf("expected 2 ranking entries, got %d", len(entries))
	}
	first, _ := entries[0].(map[string]any)
	firstPlayer, _ := first["player"].(map[string]any)
	if got := firstPlayer["name"]; got != "Коцето" {
		t.Fatalf("expected Коцето on top, got %v", got)
	}
}

func TestWeeklyRankings_SaveThenView(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/rankings/weekly", `{
		"stat": "strength",
		"week_start": "2025-05-05",
		"week_end": "2025-05-11",
		"rows": [
			{"name": "Коцето", "value": 2000, "rank": 1},
			{"name": "Мечока", "value": 1500, "rank": 2}
		]
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/rankings/weekly/2025-05-05/2025-05-11", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	entries, _ := data["entries"].([]any)
	if len(entries) != 2 {
		t.Fatalf("expected 2 weekly entries, got %d", len(entries))
	}
	first, _ := entries[0].(map[string]any)
	firstPlayer, _ := first["player"].(map[string]any)
	if got := firstPlayer["name"]; got != "Коцето" {
		t.Fatalf("expected Коцето on top, got %v", got)
	}
}

func TestSaveDailyRankings_RejectsUnknownStat(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/rankings/daily", `{
		"stat": "charisma",
		"date": "2025-05-01",
		"rows": [{"name": "Коцето", "value": 10}]
	}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestExtractRankings_TextSource(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/rankings/extract", `{
		"source": "text",
		"content": "1. Коцето 1 234 567\n2. Мечока 900 100\n"
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if got := data["row_count"]; got != float64(2) {
		t.Fatalf("expected 2 extracted rows, got %v", got)
	}
}

func TestCheckPlayer_NotTracked(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/players/check", `{"name": "Непознат"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if got := data["exists"]; got != false {
		t.Fatalf("expected exists=false, got %v", got)
	}
}

func TestGetPlayer_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/players/missing-id", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMergeDuplicatesJob_RequiresToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/internal/jobs/merge-duplicates", `{"dry_run": true}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/merge-duplicates", strings.NewReader(`{"dry_run": true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Job-Token", "job-token")
	withToken := httptest.NewRecorder()
	router.ServeHTTP(withToken, req)
	if withToken.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", withToken.Code, withToken.Body.String())
	}
}
