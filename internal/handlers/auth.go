package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lumochat/lumo/internal/accounts"
	"github.com/lumochat/lumo/internal/auth"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	accountService *accounts.Service
	jwtSecret      string
	jwtExpiry      time.Duration
	logger         *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(log *slog.Logger, accountService *accounts.Service, jwtSecret string, jwtExpiry time.Duration) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		accountService: accountService,
		jwtSecret:      jwtSecret,
		jwtExpiry:      jwtExpiry,
		logger:         log.With(slog.String("handler", "auth")),
	}
}

// Register registers the auth routes.
func (h *AuthHandler) Register(e *echo.Echo) {
	e.POST("/auth/register", h.RegisterUser)
	e.POST("/auth/login", h.Login)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      accounts.User `json:"user"`
}

// RegisterUser creates an account and returns a session token.
func (h *AuthHandler) RegisterUser(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	user, err := h.accountService.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return httpError(err)
	}
	token, expiresAt, err := auth.GenerateToken(user.ID, h.jwtSecret, h.jwtExpiry)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, loginResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	user, err := h.accountService.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return httpError(err)
	}
	token, expiresAt, err := auth.GenerateToken(user.ID, h.jwtSecret, h.jwtExpiry)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt, User: user})
}
