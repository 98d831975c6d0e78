package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/vkolarov/bgmafia-tracker/internal/platform/logging"
	"github.com/vkolarov/bgmafia-tracker/internal/usecase"
)

// Handler exposes the tracker use cases over HTTP. All responses use the
// Google JSON envelope and errors are translated through mapError.
type Handler struct {
	identity  *usecase.IdentityService
	daily     *usecase.ReconcileService
	weekly    *usecase.WeeklyService
	merge     *usecase.MergeService
	ranking   *usecase.RankingService
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(
	identity *usecase.IdentityService,
	daily *usecase.ReconcileService,
	weekly *usecase.WeeklyService,
	merge *usecase.MergeService,
	ranking *usecase.RankingService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		identity:  identity,
		daily:     daily,
		weekly:    weekly,
		merge:     merge,
		ranking:   ranking,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeRequest(r *http.Request, payload any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", usecase.ErrInvalidInput, field)
	}
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be formatted as YYYY-MM-DD", usecase.ErrInvalidInput, field)
	}
	return parsed, nil
}
