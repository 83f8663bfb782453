package settlement

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/observability"
	"github.com/ledgerkeep/ledgerkeep/internal/platform/httpx"
	internalShared "github.com/ledgerkeep/ledgerkeep/internal/shared"
)

// Handler manages settlement endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	metrics *observability.Metrics
}

func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics}
}

// MountRoutes registers settlement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/settlement/inventory/{year}", h.settleInventory)
	r.Post("/settlement/income-statement/{year}", h.settleIncome)
	r.Post("/settlement/retained-earnings/{year}", h.settleRetained)
}

func (h *Handler) settleInventory(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year")
		return
	}
	var in InventoryInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	result, err := h.service.SettleInventory(r.Context(), companyID, year, in)
	h.metrics.ObserveClosing("settle_inventory", err)
	if err != nil {
		h.logger.Warn("inventory settlement failed", "fiscal_year", year, "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) settleIncome(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year")
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	result, err := h.service.SettleIncome(r.Context(), companyID, year)
	h.metrics.ObserveClosing("settle_income", err)
	if err != nil {
		h.logger.Warn("income settlement failed", "fiscal_year", year, "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

type retainedRequest struct {
	CurrentDisposalDate  string `json:"current_disposal_date"`
	PreviousDisposalDate string `json:"previous_disposal_date"`
}

func (h *Handler) settleRetained(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year")
		return
	}
	var req retainedRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	var in RetainedInput
	if in.CurrentDisposalDate, err = optionalDate(req.CurrentDisposalDate); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "current_disposal_date must be YYYY-MM-DD")
		return
	}
	if in.PreviousDisposalDate, err = optionalDate(req.PreviousDisposalDate); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "previous_disposal_date must be YYYY-MM-DD")
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	result, err := h.service.SettleRetainedEarnings(r.Context(), companyID, year, in)
	h.metrics.ObserveClosing("settle_retained", err)
	if err != nil {
		h.logger.Warn("retained earnings settlement failed", "fiscal_year", year, "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func optionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
