package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/greenhabit/greenpoints-backend/internal/service"
)

type LeaderboardHandler struct {
	svc service.GrowthService
}

func NewLeaderboardHandler(svc service.GrowthService) *LeaderboardHandler {
	return &LeaderboardHandler{svc: svc}
}

type topUserResponse struct {
	UID         string `json:"uid"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	GreenPoints int64  `json:"greenPoints"`
}

func (h *LeaderboardHandler) Top(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	users, err := h.svc.TopUsers(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch leaderboard"))
	}
	resp := make([]topUserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, topUserResponse{
			UID:         u.UID,
			Name:        u.Name(),
			Avatar:      u.Avatar(),
			GreenPoints: u.GreenPoints,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *LeaderboardHandler) Growth(c echo.Context) error {
	growth, err := h.svc.UserGrowth(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to compute growth"))
	}
	return c.JSON(http.StatusOK, growth)
}

func (h *LeaderboardHandler) Teams(c echo.Context) error {
	teams, err := h.svc.TeamGrowth(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to compute team growth"))
	}
	return c.JSON(http.StatusOK, teams)
}
