package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/platform/httpx"
	internalShared "github.com/ledgerkeep/ledgerkeep/internal/shared"
)

// Handler manages ledger read endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ledger", h.build)
	r.Get("/ledger/summary", h.summary)
	r.Get("/ledger/partners", h.partnerLedger)
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) {
	accountCode := r.URL.Query().Get("account")
	if accountCode == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "account query parameter required")
		return
	}
	q := Query{
		CompanyID:   internalShared.CompanyFromContext(r.Context()),
		AccountCode: accountCode,
	}
	var err error
	if q.FiscalYear, err = optionalInt(r, "fiscalYear"); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscalYear")
		return
	}
	if raw := r.URL.Query().Get("partner"); raw != "" {
		partnerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid partner id")
			return
		}
		q.PartnerID = &partnerID
	}
	if q.From, q.To, err = optionalDates(r); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.Build(r.Context(), q)
	if err != nil {
		h.logger.Warn("ledger build failed", "account", accountCode, "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	q := SummaryQuery{CompanyID: internalShared.CompanyFromContext(r.Context())}
	var err error
	if q.FiscalYear, err = optionalInt(r, "fiscalYear"); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscalYear")
		return
	}
	if q.From, q.To, err = optionalDates(r); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.Summary(r.Context(), q)
	if err != nil {
		h.logger.Error("ledger summary failed", "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": result})
}

func (h *Handler) partnerLedger(w http.ResponseWriter, r *http.Request) {
	accountCode := r.URL.Query().Get("account")
	if accountCode == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "account query parameter required")
		return
	}
	fiscalYear, err := optionalInt(r, "fiscalYear")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscalYear")
		return
	}
	from, to, err := optionalDates(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	result, err := h.service.PartnerLedger(r.Context(), companyID, accountCode, fiscalYear, from, to)
	if err != nil {
		h.logger.Warn("partner ledger failed", "account", accountCode, "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"partners": result})
}

func optionalInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func optionalDates(r *http.Request) (time.Time, time.Time, error) {
	var from, to time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}
