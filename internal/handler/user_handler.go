package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenhabit/greenpoints-backend/internal/model"
	"github.com/greenhabit/greenpoints-backend/internal/service"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type userProfileResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	GreenPoints int64  `json:"greenPoints"`
	OriginalUID string `json:"originalUid,omitempty"`
	MergedAt    string `json:"mergedAt,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

func toUserProfileResponse(u *model.User) userProfileResponse {
	resp := userProfileResponse{
		UID:         u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.Avatar(),
		GreenPoints: u.GreenPoints,
		OriginalUID: u.OriginalUID,
		MergedAt:    u.MergedAt,
	}
	if !u.CreatedAt.IsZero() {
		resp.CreatedAt = u.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

// Me maps the authenticated identity onto its profile document, creating it
// with a zero balance on first sight.
func (h *UserHandler) Me(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	claims, _ := c.Get("claims").(map[string]interface{})
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)

	u, err := h.svc.EnsureProfile(c.Request().Context(), uid, email, name, picture)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to load profile"))
	}
	return c.JSON(http.StatusOK, toUserProfileResponse(u))
}
