package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemMediaType(t *testing.T) {
	rr := httptest.NewRecorder()
	Problem(rr, http.StatusBadRequest, "Validation Failed", "amount must be positive")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"title":"Validation Failed","status":400,"detail":"amount must be positive"}`,
		rr.Body.String())
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var payload struct {
		Amount float64 `json:"amount"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ammount":100}`))

	err := DecodeJSON(req, &payload)
	require.Error(t, err)
	assert.Zero(t, payload.Amount)
}
