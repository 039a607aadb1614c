package closing

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	_ "github.com/nubixconta/nubixconta-backend/testing"
)

func newTestRouter() (*chi.Mux, *memoryRepository) {
	repo := newMemoryRepository()
	handler := NewHandler(slog.Default(), NewService(repo))
	r := chi.NewRouter()
	r.Route("/companies/{companyID}/closings", handler.MountRoutes)
	return r, repo
}

func TestCloseEndpoint(t *testing.T) {
	router, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/companies/1/closings/close", strings.NewReader(`{"year":2026,"month":3}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"closed":true`)
}

func TestCloseEndpointValidatesPayload(t *testing.T) {
	router, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/companies/1/closings/close", strings.NewReader(`{"year":2026,"month":13}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReopenEndpointConflict(t *testing.T) {
	router, _ := newTestRouter()

	for _, month := range []string{`{"year":2026,"month":3}`, `{"year":2026,"month":4}`} {
		req := httptest.NewRequest(http.MethodPost, "/companies/1/closings/close", strings.NewReader(month))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/companies/1/closings/reopen", strings.NewReader(`{"year":2026,"month":3}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestYearStatusEndpoint(t *testing.T) {
	router, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/companies/1/closings/2026", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 12, strings.Count(rr.Body.String(), `"month"`))
}
