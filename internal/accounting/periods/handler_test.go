package periods

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalShared "github.com/ledgerkeep/ledgerkeep/internal/shared"
)

func newTestRouter(repo *mockRepository) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(repo, nil, nil), nil)
	router := chi.NewRouter()
	handler.MountRoutes(router)
	return router
}

func postJSON(router chi.Router, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req = req.WithContext(internalShared.ContextWithCompany(req.Context(), 1))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCreatePeriodHandlerFirstYear(t *testing.T) {
	router := newTestRouter(newMockRepository())

	rr := postJSON(router, "/fiscal-periods",
		`{"fiscal_year":1,"start_date":"2024-01-01","end_date":"2024-12-31"}`)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"fiscal_year":1`)
}

func TestCreatePeriodHandlerRejectsZeroYear(t *testing.T) {
	router := newTestRouter(newMockRepository())

	rr := postJSON(router, "/fiscal-periods",
		`{"fiscal_year":0,"start_date":"2024-01-01","end_date":"2024-12-31"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreatePeriodHandlerRejectsBadDate(t *testing.T) {
	router := newTestRouter(newMockRepository())

	rr := postJSON(router, "/fiscal-periods",
		`{"fiscal_year":1,"start_date":"01/01/2024","end_date":"2024-12-31"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
