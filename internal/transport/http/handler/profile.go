package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskgate/internal/app"
	"taskgate/internal/transport/http/middleware"
	"taskgate/internal/transport/http/response"
)

type ProfileHandler struct {
	authService *app.AuthService
}

type ProfileResponse struct {
	ID          uint            `json:"id"`
	Username    string          `json:"userName"`
	Email       string          `json:"email"`
	Name        *string         `json:"name"`
	AvatarURL   *string         `json:"avatarUrl"`
	TimeZone    *string         `json:"timeZone"`
	Preferences json.RawMessage `json:"preferences"`
}

// ProfileUpdateRequest accepts preferences either as a JSON value or as
// JSON text in preferencesJson.
type ProfileUpdateRequest struct {
	Name            *string         `json:"name"`
	TimeZone        *string         `json:"timeZone"`
	Preferences     json.RawMessage `json:"preferences"`
	PreferencesJSON *string         `json:"preferencesJson"`
}

func NewProfileHandler(authService *app.AuthService) *ProfileHandler {
	return &ProfileHandler{authService: authService}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	accountID, _, ok := middleware.CurrentAccount(c)
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	account, err := h.authService.GetProfile(c.Request.Context(), accountID)
	if err != nil {
		h.fail(c, err)
		return
	}

	prefs := json.RawMessage("{}")
	if account.Preferences != nil && *account.Preferences != "" {
		prefs = json.RawMessage(*account.Preferences)
	}
	c.JSON(http.StatusOK, ProfileResponse{
		ID:          account.ID,
		Username:    account.Username,
		Email:       account.Email,
		Name:        account.Name,
		AvatarURL:   account.AvatarURL,
		TimeZone:    account.TimeZone,
		Preferences: prefs,
	})
}

func (h *ProfileHandler) Update(c *gin.Context) {
	accountID, username, ok := middleware.CurrentAccount(c)
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationProblem(c, []string{"request body must be a JSON object"})
		return
	}

	update := app.ProfileUpdate{Name: req.Name, TimeZone: req.TimeZone}
	switch {
	case len(req.Preferences) > 0 && string(req.Preferences) != "null":
		prefs := string(req.Preferences)
		update.Preferences = &prefs
	case req.PreferencesJSON != nil:
		update.Preferences = req.PreferencesJSON
	}

	if err := h.authService.UpdateProfile(c.Request.Context(), accountID, username, update); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProfileHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrAccountNotFound), errors.Is(err, app.ErrInvalidInput):
		c.Status(http.StatusUnauthorized)
	case errors.Is(err, app.ErrValidation):
		response.ValidationProblem(c, app.ValidationReasons(err))
	default:
		_ = c.Error(fmt.Errorf("profile request failed: %w", err))
	}
}
