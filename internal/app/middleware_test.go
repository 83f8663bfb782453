package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkeep/ledgerkeep/internal/shared"
)

func TestCompanyScopeRejectsMissingHeader(t *testing.T) {
	handler := CompanyScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/vouchers", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestCompanyScopeRejectsInvalidHeader(t *testing.T) {
	handler := CompanyScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	for _, raw := range []string{"abc", "-3", "0"} {
		req := httptest.NewRequest(http.MethodGet, "/api/vouchers", nil)
		req.Header.Set("X-Company-ID", raw)

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "header %q", raw)
	}
}

func TestCompanyScopeInjectsCompanyID(t *testing.T) {
	var got int64
	handler := CompanyScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = shared.CompanyFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/vouchers", nil)
	req.Header.Set("X-Company-ID", "42")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(42), got)
}

func TestRouterServesHealthz(t *testing.T) {
	router := NewRouter(RouterParams{
		Logger: NewLogger(nil),
		Config: &Config{},
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
