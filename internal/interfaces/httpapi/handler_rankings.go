package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/vkolarov/bgmafia-tracker/internal/domain/dailystat"
	"github.com/vkolarov/bgmafia-tracker/internal/infrastructure/extractor"
	"github.com/vkolarov/bgmafia-tracker/internal/usecase"
)

// ExtractRankings parses a pasted ranking page (HTML or plain text) and
// returns the rows it found without writing anything.
func (h *Handler) ExtractRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExtractRankings")
	defer span.End()

	var req extractRankingsRequest
	if err := h.decodeRequest(r, &req); err != nil {
		h.logger.WarnContext(ctx, "extract rankings: bad request body", "error", err)
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "extract rankings: validation failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	var (
		rows []extractor.Row
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(req.Source)) {
	case "html":
		rows, err = extractor.FromHTML(req.Content)
	case "text":
		rows, err = extractor.FromText(req.Content)
	default:
		err = fmt.Errorf("%w: source must be html or text", usecase.ErrInvalidInput)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "extract rankings failed", "source", req.Source, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, extractRankingsResponse{
		Source:   req.Source,
		RowCount: len(rows),
		Rows:     rows,
	})
}

// SaveDailyRankings reconciles one stat's uploaded values into the daily
// table for the given date.
func (h *Handler) SaveDailyRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveDailyRankings")
	defer span.End()

	var req saveDailyRankingsRequest
	if err := h.decodeRequest(r, &req); err != nil {
		h.logger.WarnContext(ctx, "save daily rankings: bad request body", "error", err)
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "save daily rankings: validation failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	stat, err := dailystat.ParseStatType(req.Stat)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	mode, err := usecase.ParseReconcileMode(req.Mode)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.DailyUploadInput{
		Stat:    stat,
		Date:    date,
		Mode:    mode,
		DayType: req.DayType,
		Rows:    make([]usecase.DailyUploadRow, 0, len(req.Rows)),
	}
	for _, row := range req.Rows {
		input.Rows = append(input.Rows, usecase.DailyUploadRow{
			Name:      row.Name,
			ProfileID: row.ProfileID,
			Value:     row.Value,
		})
	}

	result, err := h.daily.ApplyDailyUpload(ctx, input)
	if err != nil {
		h.logger.ErrorContext(ctx, "save daily rankings failed", "stat", req.Stat, "date", req.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

// SaveWeeklyRankings records one stat's weekly snapshot and the gains
// computed against the last capture before the week opened.
func (h *Handler) SaveWeeklyRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveWeeklyRankings")
	defer span.End()

	var req saveWeeklyRankingsRequest
	if err := h.decodeRequest(r, &req); err != nil {
		h.logger.WarnContext(ctx, "save weekly rankings: bad request body", "error", err)
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "save weekly rankings: validation failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	stat, err := dailystat.ParseStatType(req.Stat)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}
	weekStart, err := parseDate("week_start", req.WeekStart)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	weekEnd, err := parseDate("week_end", req.WeekEnd)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.WeeklyUploadInput{
		Stat:      stat,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Rows:      make([]usecase.WeeklyUploadRow, 0, len(req.Rows)),
	}
	for _, row := range req.Rows {
		input.Rows = append(input.Rows, usecase.WeeklyUploadRow{
			Name:      row.Name,
			ProfileID: row.ProfileID,
			Value:     row.Value,
			Rank:      row.Rank,
		})
	}

	result, err := h.weekly.ApplyWeeklyUpload(ctx, input)
	if err != nil {
		h.logger.ErrorContext(ctx, "save weekly rankings failed", "stat", req.Stat, "week_start", req.WeekStart, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetDailyRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDailyRanking")
	defer span.End()

	date, err := parseDate("date", r.PathValue("date"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.ranking.DailyRanking(ctx, date)
	if err != nil {
		h.logger.ErrorContext(ctx, "get daily ranking failed", "date", r.PathValue("date"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetWeeklyRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeeklyRanking")
	defer span.End()

	weekStart, err := parseDate("week_start", r.PathValue("weekStart"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	weekEnd, err := parseDate("week_end", r.PathValue("weekEnd"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.ranking.WeeklyRanking(ctx, weekStart, weekEnd)
	if err != nil {
		h.logger.ErrorContext(ctx, "get weekly ranking failed", "week_start", r.PathValue("weekStart"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetOverallRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetOverallRanking")
	defer span.End()

	result, err := h.ranking.OverallRanking(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get overall ranking failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ListRankingDates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRankingDates")
	defer span.End()

	dates, err := h.ranking.Dates(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list ranking dates failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, listRankingDatesResponse{Dates: dates})
}

type extractRankingsRequest struct {
	Source  string `json:"source" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type extractRankingsResponse struct {
	Source   string          `json:"source"`
	RowCount int             `json:"row_count"`
	Rows     []extractor.Row `json:"rows"`
}

type saveDailyRankingsRequest struct {
	Stat    string             `json:"stat" validate:"required"`
	Date    string             `json:"date" validate:"required"`
	Mode    string             `json:"mode,omitempty"`
	DayType string             `json:"day_type,omitempty"`
	Rows    []uploadRowRequest `json:"rows" validate:"required,min=1,dive"`
}

type saveWeeklyRankingsRequest struct {
	Stat      string             `json:"stat" validate:"required"`
	WeekStart string             `json:"week_start" validate:"required"`
	WeekEnd   string             `json:"week_end" validate:"required"`
	Rows      []uploadRowRequest `json:"rows" validate:"required,min=1,dive"`
}

type uploadRowRequest struct {
	Name      string `json:"name" validate:"required"`
	ProfileID string `json:"profile_id,omitempty"`
	Value     int64  `json:"value" validate:"gte=0"`
	Rank      int    `json:"rank,omitempty"`
}

type listRankingDatesResponse struct {
	Dates []string `json:"dates"`
}
