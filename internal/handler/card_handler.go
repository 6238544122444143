package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenhabit/greenpoints-backend/internal/model"
	"github.com/greenhabit/greenpoints-backend/internal/service"
)

type CardHandler struct {
	svc service.CardService
}

func NewCardHandler(svc service.CardService) *CardHandler {
	return &CardHandler{svc: svc}
}

func (h *CardHandler) Create(c echo.Context) error {
	var in service.CardInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid card payload"))
	}
	id, err := h.svc.Add(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPayload) {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "provider, value, pointsRequired and code are required"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to create card"))
	}
	return c.JSON(http.StatusCreated, map[string]any{"ok": true, "id": id})
}

func (h *CardHandler) CreateBulk(c echo.Context) error {
	var in []service.CardInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid card payload"))
	}
	ids, err := h.svc.AddBulk(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPayload) {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "card list is empty or has invalid entries"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to create cards"))
	}
	return c.JSON(http.StatusCreated, map[string]any{"ok": true, "ids": ids, "count": len(ids)})
}

type cardResponse struct {
	ID             string `json:"id"`
	Provider       string `json:"provider"`
	Value          int64  `json:"value"`
	PointsRequired int64  `json:"pointsRequired"`
	Serial         string `json:"serial"`
	Used           bool   `json:"used"`
	UsedBy         string `json:"usedBy,omitempty"`
	UsedAt         string `json:"usedAt,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

func toCardResponse(card model.Card) cardResponse {
	resp := cardResponse{
		ID:             card.ID,
		Provider:       card.Provider,
		Value:          card.Value,
		PointsRequired: card.PointsRequired,
		Serial:         card.Serial,
		Used:           card.Used,
		UsedBy:         card.UsedBy,
	}
	if !card.UsedAt.IsZero() {
		resp.UsedAt = card.UsedAt.Format(time.RFC3339)
	}
	if !card.CreatedAt.IsZero() {
		resp.CreatedAt = card.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

// List intentionally omits redemption codes; they are only revealed through
// a successful redemption.
func (h *CardHandler) List(c echo.Context) error {
	cards, err := h.svc.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch cards"))
	}
	resp := make([]cardResponse, 0, len(cards))
	for _, card := range cards {
		resp = append(resp, toCardResponse(card))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CardHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "card not found"))
		case errors.Is(err, service.ErrCardInUse):
			return c.JSON(http.StatusConflict, NewErrorResponse("card_in_use", "card was already redeemed"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to delete card"))
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
