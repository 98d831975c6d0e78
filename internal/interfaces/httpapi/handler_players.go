package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/vkolarov/bgmafia-tracker/internal/usecase"
)

func (h *Handler) CheckPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CheckPlayer")
	defer span.End()

	var req checkPlayerRequest
	if err := h.decodeRequest(r, &req); err != nil {
		h.logger.WarnContext(ctx, "check player: bad request body", "error", err)
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "check player: validation failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	result, err := h.identity.Check(ctx, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "check player failed", "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

// GetPlayer returns the player together with the recent daily history and
// the weekly entries.
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	if playerID == "" {
		writeError(ctx, w, fmt.Errorf("%w: player id is required", usecase.ErrInvalidInput))
		return
	}

	summary, err := h.identity.Summary(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) RenamePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RenamePlayer")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	if playerID == "" {
		writeError(ctx, w, fmt.Errorf("%w: player id is required", usecase.ErrInvalidInput))
		return
	}

	var req renamePlayerRequest
	if err := h.decodeRequest(r, &req); err != nil {
		h.logger.WarnContext(ctx, "rename player: bad request body", "error", err)
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "rename player: validation failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	renamed, err := h.identity.Rename(ctx, playerID, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "rename player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, usecase.Player{
		ID:        renamed.ID,
		Name:      renamed.Name,
		ProfileID: renamed.ProfileID,
	})
}

func (h *Handler) CheckDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CheckDate")
	defer span.End()

	var req checkDateRequest
	if err := h.decodeRequest(r, &req); err != nil {
		h.logger.WarnContext(ctx, "check date: bad request body", "error", err)
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "check date: validation failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.ranking.CheckDate(ctx, date)
	if err != nil {
		h.logger.ErrorContext(ctx, "check date failed", "date", req.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) SetDayType(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetDayType")
	defer span.End()

	var req setDayTypeRequest
	if err := h.decodeRequest(r, &req); err != nil {
		h.logger.WarnContext(ctx, "set day type: bad request body", "error", err)
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "set day type: validation failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.daily.SetDayType(ctx, date, req.DayType)
	if err != nil {
		h.logger.ErrorContext(ctx, "set day type failed", "date", req.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

type checkPlayerRequest struct {
	Name string `json:"name" validate:"required"`
}

type renamePlayerRequest struct {
	Name string `json:"name" validate:"required"`
}

type checkDateRequest struct {
	Date string `json:"date" validate:"required"`
}

type setDayTypeRequest struct {
	Date    string `json:"date" validate:"required"`
	DayType string `json:"day_type" validate:"required"`
}
