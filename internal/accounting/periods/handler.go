package periods

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/observability"
	"github.com/ledgerkeep/ledgerkeep/internal/platform/httpx"
	internalShared "github.com/ledgerkeep/ledgerkeep/internal/shared"
)

// Handler manages fiscal period endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	metrics  *observability.Metrics
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		metrics:  metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers fiscal period routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/fiscal-periods", h.list)
	r.Post("/fiscal-periods", h.create)
	r.Get("/fiscal-periods/{year}", h.show)
	r.Post("/fiscal-periods/{year}/close", h.close)
	r.Post("/fiscal-periods/{year}/reopen", h.reopen)
	r.Post("/fiscal-periods/{year}/carry-forward", h.carryForward)
}

type createRequest struct {
	FiscalYear int    `json:"fiscal_year" validate:"required,gt=0"`
	StartDate  string `json:"start_date" validate:"required"`
	EndDate    string `json:"end_date" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "end_date must be YYYY-MM-DD")
		return
	}
	period, err := h.service.Create(r.Context(), CreateInput{
		CompanyID:  internalShared.CompanyFromContext(r.Context()),
		FiscalYear: req.FiscalYear,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		h.logger.Warn("period create failed", "fiscal_year", req.FiscalYear, "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, period)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID := internalShared.CompanyFromContext(r.Context())
	list, err := h.service.List(r.Context(), companyID)
	if err != nil {
		h.logger.Error("period list failed", "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"periods": list})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year")
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	period, err := h.service.Get(r.Context(), companyID, year)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year")
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	period, err := h.service.Close(r.Context(), companyID, year)
	h.metrics.ObserveClosing("close", err)
	if err != nil {
		h.logger.Warn("period close failed", "fiscal_year", year, "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) reopen(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year")
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	period, err := h.service.Reopen(r.Context(), companyID, year)
	h.metrics.ObserveClosing("reopen", err)
	if err != nil {
		h.logger.Warn("period reopen failed", "fiscal_year", year, "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) carryForward(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year")
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	result, err := h.service.CarryForward(r.Context(), companyID, year)
	h.metrics.ObserveClosing("carry_forward", err)
	if err != nil {
		h.logger.Warn("carry forward failed", "fiscal_year", year, "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func pathYear(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "year"))
}
