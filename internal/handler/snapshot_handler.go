package handler

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenhabit/greenpoints-backend/internal/service"
)

type SnapshotHandler struct {
	svc    service.SnapshotService
	secret string
}

func NewSnapshotHandler(svc service.SnapshotService, secret string) *SnapshotHandler {
	return &SnapshotHandler{svc: svc, secret: secret}
}

// Cron is the external scheduler hook: it authenticates with a shared secret
// query parameter instead of a user session.
func (h *SnapshotHandler) Cron(c echo.Context) error {
	secret := c.QueryParam("secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.secret)) != 1 {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	run, err := h.svc.Run(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to save snapshots"))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"message":    fmt.Sprintf("Saved %d snapshots", run.UsersCount),
		"date":       run.Date,
		"usersCount": run.UsersCount,
		"totalUsers": run.TotalUsers,
	})
}

// Stream runs the snapshot job and reports progress as server-sent events:
// start, progress every few users, then complete or error.
func (h *SnapshotHandler) Stream(c echo.Context) error {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	for ev := range h.svc.Stream(c.Request().Context()) {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(resp, "data: %s\n\n", payload); err != nil {
			return nil
		}
		resp.Flush()
	}
	return nil
}
