package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenhabit/greenpoints-backend/internal/service"
)

type MergeHandler struct {
	svc service.MergeService
}

func NewMergeHandler(svc service.MergeService) *MergeHandler {
	return &MergeHandler{svc: svc}
}

func (h *MergeHandler) Scan(c echo.Context) error {
	scan, err := h.svc.Scan(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to scan accounts"))
	}
	return c.JSON(http.StatusOK, scan)
}

type mergeRequest struct {
	Action    string              `json:"action"`
	NewUID    string              `json:"newUid"`
	OldUID    string              `json:"oldUid"`
	MergeList []service.MergePair `json:"mergeList"`
}

func (h *MergeHandler) Merge(c echo.Context) error {
	var req mergeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid merge payload"))
	}

	switch req.Action {
	case "merge_uid":
		out, err := h.svc.MergePair(c.Request().Context(), req.NewUID, req.OldUID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidPayload):
				return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "both newUid and oldUid are required"))
			case errors.Is(err, service.ErrSourceNotFound):
				return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "source user document not found"))
			default:
				return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to merge accounts"))
			}
		}
		return c.JSON(http.StatusOK, map[string]any{
			"success":    true,
			"message":    "Account merged successfully",
			"mergedData": out,
		})

	case "merge_all":
		res, err := h.svc.MergeAll(c.Request().Context(), req.MergeList)
		if err != nil {
			if errors.Is(err, service.ErrInvalidPayload) {
				return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "mergeList is required"))
			}
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to merge accounts"))
		}
		return c.JSON(http.StatusOK, map[string]any{
			"success":      true,
			"message":      fmt.Sprintf("Merged %d/%d accounts", res.SuccessCount, len(req.MergeList)),
			"successCount": res.SuccessCount,
			"errorCount":   res.ErrorCount,
			"results":      res.Results,
		})

	default:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid action"))
	}
}
