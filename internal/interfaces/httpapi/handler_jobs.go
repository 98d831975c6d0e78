package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/vkolarov/bgmafia-tracker/internal/usecase"
)

// RunMergeDuplicatesJob collapses players whose names normalize to the same
// key. The request body is optional; an empty body runs with defaults.
func (h *Handler) RunMergeDuplicatesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunMergeDuplicatesJob")
	defer span.End()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.WarnContext(ctx, "merge duplicates job: reading body failed", "error", err)
		writeError(ctx, w, fmt.Errorf("%w: reading request body: %v", usecase.ErrInvalidInput, err))
		return
	}

	var req runMergeDuplicatesRequest
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := sonic.Unmarshal(body, &req); err != nil {
			h.logger.WarnContext(ctx, "merge duplicates job: bad request body", "error", err)
			writeError(ctx, w, fmt.Errorf("%w: invalid request body: %v", usecase.ErrInvalidInput, err))
			return
		}
		if err := h.validateRequest(ctx, req); err != nil {
			h.logger.WarnContext(ctx, "merge duplicates job: validation failed", "error", err)
			writeError(ctx, w, err)
			return
		}
	}

	result, err := h.merge.MergeDuplicates(ctx, usecase.MergeInput{
		MaxWorkers: req.MaxWorkers,
		DryRun:     req.DryRun,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "merge duplicates job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

type runMergeDuplicatesRequest struct {
	MaxWorkers int  `json:"max_workers,omitempty" validate:"gte=0,lte=64"`
	DryRun     bool `json:"dry_run,omitempty"`
}
