package shared

import (
	"errors"
	"net/http"

	"github.com/ledgerkeep/ledgerkeep/internal/platform/httpx"
)

// RespondError maps accounting errors to RFC7807 responses. Errors outside
// the accounting taxonomy fall through to the platform mapping.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrVoucherNotFound),
		errors.Is(err, ErrLineNotFound),
		errors.Is(err, ErrPeriodNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case IsValidation(err):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case IsState(err):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case IsConsistency(err):
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "accounting invariant violated")
	default:
		httpx.RespondError(w, err)
	}
}
