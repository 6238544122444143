package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/greenhabit/greenpoints-backend/internal/service"
)

type RestoreHandler struct {
	svc service.RestoreService
}

func NewRestoreHandler(svc service.RestoreService) *RestoreHandler {
	return &RestoreHandler{svc: svc}
}

func (h *RestoreHandler) Inventory(c echo.Context) error {
	inv, err := h.svc.Inventory(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to get restore info"))
	}
	return c.JSON(http.StatusOK, inv)
}

type restoreRequest struct {
	Action string `json:"action"`
	UserID string `json:"userId"`
}

func (h *RestoreHandler) Restore(c echo.Context) error {
	var req restoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid restore payload"))
	}

	switch req.Action {
	case "restore_user":
		out, err := h.svc.RestoreUser(c.Request().Context(), req.UserID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidPayload):
				return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "userId is required"))
			case errors.Is(err, service.ErrUserNotFound):
				return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "user not found"))
			case errors.Is(err, service.ErrNotMerged):
				return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "user was not merged (no originalUid)"))
			default:
				return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to restore data"))
			}
		}
		message := "No data found to restore"
		if len(out.Restored) > 0 {
			message = "Restored: " + strings.Join(out.Restored, ", ")
		}
		return c.JSON(http.StatusOK, map[string]any{
			"success":     true,
			"userId":      out.UserID,
			"originalUid": out.OriginalUID,
			"restored":    out.Restored,
			"message":     message,
		})

	case "restore_all":
		res, err := h.svc.RestoreAll(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to restore data"))
		}
		return c.JSON(http.StatusOK, map[string]any{
			"success":      true,
			"message":      fmt.Sprintf("Restored %d users, %d errors", res.SuccessCount, res.ErrorCount),
			"successCount": res.SuccessCount,
			"errorCount":   res.ErrorCount,
			"results":      res.Results,
		})

	default:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid action"))
	}
}
