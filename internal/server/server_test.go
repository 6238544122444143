package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/greenhabit/greenpoints-backend/internal/config"
	"github.com/greenhabit/greenpoints-backend/internal/store"
)

// denyAll rejects every request, so any route that reaches its handler was
// wired without the gate.
type denyAll struct{}

func (denyAll) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
}

func (denyAll) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Port:                "8080",
		FirebaseProjectID:   "test",
		CronSecret:          "secret",
		AllowedOriginSuffix: "vercel.app",
	}
	return New(store.NewMemory(), denyAll{}, cfg)
}

func TestAdminRoutesAreGated(t *testing.T) {
	srv := newTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/merge-accounts"},
		{http.MethodPost, "/api/admin/merge-accounts"},
		{http.MethodGet, "/api/admin/restore-data"},
		{http.MethodPost, "/api/admin/restore-data"},
		{http.MethodPost, "/api/admin/snapshot-stream"},
		{http.MethodPost, "/api/admin/cards"},
		{http.MethodPost, "/api/admin/cards/bulk"},
		{http.MethodGet, "/api/admin/cards"},
		{http.MethodDelete, "/api/admin/cards/x"},
		{http.MethodGet, "/api/admin/redeems"},
	}
	for _, r := range routes {
		req := httptest.NewRequest(r.method, r.path, nil)
		rec := httptest.NewRecorder()
		srv.Echo().ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code, "%s %s reached its handler unauthenticated", r.method, r.path)
	}
}

func TestAuthedRoutesAreGated(t *testing.T) {
	srv := newTestServer(t)

	for _, r := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/redeem"},
		{http.MethodGet, "/api/me"},
	} {
		req := httptest.NewRequest(r.method, r.path, nil)
		rec := httptest.NewRecorder()
		srv.Echo().ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s reached its handler unauthenticated", r.method, r.path)
	}
}

func TestPublicRoutesStayOpen(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{
		"/healthz",
		"/api/redeem/catalog",
		"/api/leaderboard/top",
		"/api/leaderboard/growth",
		"/api/leaderboard/teams",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Echo().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "GET %s", path)
	}
}
