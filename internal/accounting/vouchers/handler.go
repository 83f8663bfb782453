package vouchers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/accounts"
	"github.com/ledgerkeep/ledgerkeep/internal/platform/httpx"
	internalShared "github.com/ledgerkeep/ledgerkeep/internal/shared"
)

// Handler manages voucher endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers voucher routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/vouchers", h.list)
	r.Post("/vouchers", h.create)
	r.Get("/vouchers/{id}", h.show)
	r.Delete("/vouchers/{id}", h.delete)
	r.Post("/vouchers/{id}/lines", h.addLines)
	r.Put("/vouchers/{id}/lines/{lineNo}", h.updateLine)
	r.Delete("/vouchers/{id}/lines/{lineNo}", h.deleteLine)
}

type lineRequest struct {
	AccountCode string  `json:"account_code" validate:"required"`
	PartnerCode string  `json:"partner_code"`
	Side        string  `json:"side" validate:"required,oneof=DEBIT CREDIT"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Description string  `json:"description"`
	ClassCode   string  `json:"class_code"`
}

type createRequest struct {
	Date         string        `json:"date" validate:"required"`
	Number       string        `json:"number"`
	Description  string        `json:"description"`
	Kind         string        `json:"kind" validate:"omitempty,oneof=GENERAL TRADE"`
	PartnerCode  string        `json:"partner_code"`
	TradeType    string        `json:"trade_type" validate:"omitempty,oneof=SALE PURCHASE"`
	SupplyAmount float64       `json:"supply_amount" validate:"gte=0"`
	TaxAmount    float64       `json:"tax_amount" validate:"gte=0"`
	Lines        []lineRequest `json:"lines" validate:"required,min=1,dive"`
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
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}
	kind := Kind(req.Kind)
	if kind == "" {
		kind = KindGeneral
	}
	in := CreateInput{
		CompanyID:    internalShared.CompanyFromContext(r.Context()),
		Date:         date,
		Number:       req.Number,
		Description:  req.Description,
		Kind:         kind,
		PartnerCode:  req.PartnerCode,
		TradeType:    TradeType(req.TradeType),
		SupplyAmount: req.SupplyAmount,
		TaxAmount:    req.TaxAmount,
		Lines:        toLineInputs(req.Lines),
	}
	voucher, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Warn("voucher create failed", "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, voucher)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	list, err := h.service.ListByDate(r.Context(), companyID, from, to)
	if err != nil {
		h.logger.Error("voucher list failed", "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"vouchers": list})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid voucher id")
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	voucher, err := h.service.Get(r.Context(), companyID, id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, voucher)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid voucher id")
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	if err := h.service.Delete(r.Context(), companyID, id); err != nil {
		h.logger.Warn("voucher delete failed", "voucher_id", id, "error", err)
		shared.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addLinesRequest struct {
	Lines []lineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) addLines(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid voucher id")
		return
	}
	var req addLinesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	voucher, err := h.service.AddLines(r.Context(), companyID, id, toLineInputs(req.Lines))
	if err != nil {
		h.logger.Warn("voucher add lines failed", "voucher_id", id, "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, voucher)
}

func (h *Handler) updateLine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid voucher id")
		return
	}
	lineNo, err := pathID(r, "lineNo")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid line number")
		return
	}
	var req lineRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	inputs := toLineInputs([]lineRequest{req})
	voucher, err := h.service.UpdateLine(r.Context(), companyID, id, int(lineNo), inputs[0])
	if err != nil {
		h.logger.Warn("voucher update line failed", "voucher_id", id, "line_no", lineNo, "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, voucher)
}

func (h *Handler) deleteLine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid voucher id")
		return
	}
	lineNo, err := pathID(r, "lineNo")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid line number")
		return
	}
	companyID := internalShared.CompanyFromContext(r.Context())
	voucherDeleted, err := h.service.DeleteLine(r.Context(), companyID, id, int(lineNo))
	if err != nil {
		h.logger.Warn("voucher delete line failed", "voucher_id", id, "line_no", lineNo, "error", err)
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"voucher_deleted": voucherDeleted})
}

func toLineInputs(reqs []lineRequest) []LineInput {
	inputs := make([]LineInput, 0, len(reqs))
	for _, req := range reqs {
		inputs = append(inputs, LineInput{
			AccountCode: req.AccountCode,
			PartnerCode: req.PartnerCode,
			Side:        accounts.Side(req.Side),
			Amount:      req.Amount,
			Description: req.Description,
			ClassCode:   req.ClassCode,
		})
	}
	return inputs
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}

// dateRange parses from/to query params, defaulting to the current month.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
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
