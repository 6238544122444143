package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenhabit/greenpoints-backend/internal/model"
	"github.com/greenhabit/greenpoints-backend/internal/service"
)

// redeemMessages are the user-facing localized messages keyed by wire code.
var redeemMessages = map[string]string{
	"invalid_payload":     "Thiếu thông tin cần thiết",
	"invalid_points":      "Điểm không hợp lệ",
	"no_card":             "Không còn thẻ loại này",
	"card_not_found":      "Không tìm thấy thẻ",
	"card_already_used":   "Thẻ đã được sử dụng",
	"user_not_found":      "Không tìm thấy người dùng",
	"insufficient_points": "Không đủ điểm để đổi thẻ này",
}

const fallbackMessage = "Lỗi hệ thống, vui lòng thử lại"

type RedeemHandler struct {
	svc service.RedeemService
}

func NewRedeemHandler(svc service.RedeemService) *RedeemHandler {
	return &RedeemHandler{svc: svc}
}

type redeemErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type redeemSuccessResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Code           string `json:"code"`
	Serial         string `json:"serial"`
	CardID         string `json:"cardId"`
	Provider       string `json:"provider"`
	Value          int64  `json:"value"`
	PointsDeducted int64  `json:"pointsDeducted"`
}

func (h *RedeemHandler) Redeem(c echo.Context) error {
	var req service.RedeemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, redeemErrorResponse{
			Error:   "invalid_payload",
			Message: redeemMessages["invalid_payload"],
		})
	}

	res, err := h.svc.Redeem(c.Request().Context(), req)
	if err != nil {
		return c.JSON(redeemStatus(err), redeemError(err))
	}

	return c.JSON(http.StatusOK, redeemSuccessResponse{
		Success:        true,
		Message:        "Đổi thẻ thành công!",
		Code:           res.Code,
		Serial:         res.Serial,
		CardID:         res.CardID,
		Provider:       res.Provider,
		Value:          res.Value,
		PointsDeducted: res.PointsDeducted,
	})
}

func redeemStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidPayload), errors.Is(err, service.ErrInvalidPoints):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoCard):
		return http.StatusNotFound
	default:
		// Business-rule failures inside the transaction surface as 500 with
		// their code preserved, matching the storefront contract.
		return http.StatusInternalServerError
	}
}

func redeemError(err error) redeemErrorResponse {
	code := err.Error()
	msg, ok := redeemMessages[code]
	if !ok {
		code = "server_error"
		msg = fallbackMessage
	}
	return redeemErrorResponse{Error: code, Message: msg}
}

func (h *RedeemHandler) Catalog(c echo.Context) error {
	groups, err := h.svc.Catalog(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch catalog"))
	}
	if groups == nil {
		groups = []model.CardGroup{}
	}
	return c.JSON(http.StatusOK, groups)
}

type redeemHistoryEntry struct {
	ID         string `json:"id"`
	Provider   string `json:"provider"`
	Value      int64  `json:"value"`
	CardID     string `json:"cardId"`
	UserID     string `json:"userId"`
	PointsUsed int64  `json:"pointsUsed"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
}

func (h *RedeemHandler) History(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	recs, err := h.svc.History(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch history"))
	}
	resp := make([]redeemHistoryEntry, 0, len(recs))
	for _, r := range recs {
		resp = append(resp, redeemHistoryEntry{
			ID:         r.ID,
			Provider:   r.Provider,
			Value:      r.Value,
			CardID:     r.CardID,
			UserID:     r.UserID,
			PointsUsed: r.PointsUsed,
			Status:     r.Status,
			CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, resp)
}
