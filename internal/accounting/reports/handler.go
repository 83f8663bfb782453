package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/platform/httpx"
	internalShared "github.com/ledgerkeep/ledgerkeep/internal/shared"
)

// Handler manages report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes. The CSV export is rate limited:
// it holds a connection open while streaming.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/trial-balance/{year}", h.trialBalance)
	r.Get("/reports/balance-sheet/{year}", h.balanceSheet)
	r.Get("/reports/income-statement/{year}", h.incomeStatement)
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Get("/reports/trial-balance/{year}/export.csv", h.trialBalanceCSV)
	})
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year")
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	tb, err := h.service.TrialBalance(r.Context(), companyID, year)
	if err != nil {
		h.logger.Warn("trial balance failed", "fiscal_year", year, "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year")
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	bs, err := h.service.BalanceSheet(r.Context(), companyID, year)
	if err != nil {
		h.logger.Warn("balance sheet failed", "fiscal_year", year, "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) incomeStatement(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year")
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	is, err := h.service.IncomeStatement(r.Context(), companyID, year)
	if err != nil {
		h.logger.Warn("income statement failed", "fiscal_year", year, "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, is)
}

func (h *Handler) trialBalanceCSV(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year")
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	tb, err := h.service.TrialBalance(r.Context(), companyID, year)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="trial-balance-%d.csv"`, year))
	if err := WriteTrialBalanceCSV(w, tb); err != nil {
		h.logger.Error("trial balance export failed", "fiscal_year", year, "error", err)
	}
}
