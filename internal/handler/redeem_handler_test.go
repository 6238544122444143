package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/greenhabit/greenpoints-backend/internal/repository"
	"github.com/greenhabit/greenpoints-backend/internal/service"
	"github.com/greenhabit/greenpoints-backend/internal/store"
)

func newRedeemHandlerFixture(t *testing.T) (*store.Memory, *RedeemHandler) {
	t.Helper()
	st := store.NewMemory()
	svc := service.NewRedeemService(st, repository.NewCardRepository(st), repository.NewRedeemRepository(st))
	return st, NewRedeemHandler(svc)
}

func postRedeem(t *testing.T, h *RedeemHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/redeem", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Redeem(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestRedeemHandlerSuccess(t *testing.T) {
	ctx := context.Background()
	st, h := newRedeemHandlerFixture(t)
	require.NoError(t, st.Set(ctx, "cards", "c1", map[string]any{
		"provider": "Viettel", "value": int64(10000), "pointsRequired": int64(100),
		"code": "SECRET", "serial": "SER1", "used": false,
	}))
	require.NoError(t, st.Set(ctx, "users", "u1", map[string]any{
		"uid": "u1", "greenPoints": int64(500),
	}))

	rec := postRedeem(t, h, `{"provider":"Viettel","value":10000,"pointsRequired":100,"userId":"u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp redeemSuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "Đổi thẻ thành công!", resp.Message)
	require.Equal(t, "SECRET", resp.Code)
	require.Equal(t, "SER1", resp.Serial)
	require.Equal(t, int64(100), resp.PointsDeducted)
}

func TestRedeemHandlerErrors(t *testing.T) {
	ctx := context.Background()
	st, h := newRedeemHandlerFixture(t)
	require.NoError(t, st.Set(ctx, "cards", "c1", map[string]any{
		"provider": "Viettel", "value": int64(10000), "pointsRequired": int64(100),
		"code": "SECRET", "serial": "SER1", "used": false,
	}))
	require.NoError(t, st.Set(ctx, "users", "poor", map[string]any{
		"uid": "poor", "greenPoints": int64(10),
	}))

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing provider",
			body:       `{"value":10000,"pointsRequired":100,"userId":"u1"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_payload",
		},
		{
			name:       "negative points",
			body:       `{"provider":"Viettel","value":10000,"pointsRequired":-5,"userId":"u1"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_points",
		},
		{
			name:       "no card of that type",
			body:       `{"provider":"Vinaphone","value":10000,"pointsRequired":100,"userId":"poor"}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "no_card",
		},
		{
			name:       "unknown user",
			body:       `{"provider":"Viettel","value":10000,"pointsRequired":100,"userId":"ghost"}`,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "user_not_found",
		},
		{
			name:       "insufficient points",
			body:       `{"provider":"Viettel","value":10000,"pointsRequired":100,"userId":"poor"}`,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "insufficient_points",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postRedeem(t, h, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)

			var resp redeemErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Equal(t, tt.wantCode, resp.Error)
			require.Equal(t, redeemMessages[tt.wantCode], resp.Message)
		})
	}
}

func TestRedeemHandlerMalformedBody(t *testing.T) {
	_, h := newRedeemHandlerFixture(t)

	rec := postRedeem(t, h, `{"provider":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp redeemErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "invalid_payload", resp.Error)
}

func TestCatalogHandlerEmpty(t *testing.T) {
	_, h := newRedeemHandlerFixture(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/redeem/catalog", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Catalog(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
