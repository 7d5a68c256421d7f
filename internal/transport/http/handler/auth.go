package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskgate/internal/app"
	"taskgate/internal/pkg/jwtutil"
	"taskgate/internal/transport/http/response"
)

const registeredMessage = "User registered successfully."

type AuthHandler struct {
	authService *app.AuthService
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationProblem(c, []string{"request body must be a JSON object"})
		return
	}

	_, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case err == nil:
		c.String(http.StatusOK, registeredMessage)
	case errors.Is(err, app.ErrValidation):
		response.ValidationProblem(c, app.ValidationReasons(err))
	case errors.Is(err, app.ErrDuplicateUsername):
		response.ValidationProblem(c, []string{fmt.Sprintf("Username '%s' is already taken.", strings.TrimSpace(req.Username))})
	default:
		_ = c.Error(fmt.Errorf("register account failed: %w", err))
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationProblem(c, []string{"request body must be a JSON object"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, LoginResponse{Token: result.Token})
	case errors.Is(err, app.ErrInvalidInput):
		p := response.NewProblem(c, http.StatusBadRequest, response.TitleValidation)
		p.Detail = "Username and password must be provided."
		response.WriteProblem(c, p)
	case errors.Is(err, app.ErrInvalidCredential):
		c.Status(http.StatusUnauthorized)
	case errors.Is(err, jwtutil.ErrMissingSigningKey):
		p := response.NewProblem(c, http.StatusInternalServerError, response.TitleConfiguration)
		p.Detail = "JWT Key is not configured."
		response.WriteProblem(c, p)
	default:
		_ = c.Error(fmt.Errorf("login failed: %w", err))
	}
}
