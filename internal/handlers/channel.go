package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lumochat/lumo/internal/auth"
	"github.com/lumochat/lumo/internal/channel"
	"github.com/lumochat/lumo/internal/permissions"
)

// ChannelHandler serves channel creation and lookup.
type ChannelHandler struct {
	channelService *channel.Service
	perms          *permissions.Calculator
	logger         *slog.Logger
}

// NewChannelHandler creates a ChannelHandler.
func NewChannelHandler(log *slog.Logger, channelService *channel.Service, perms *permissions.Calculator) *ChannelHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ChannelHandler{
		channelService: channelService,
		perms:          perms,
		logger:         log.With(slog.String("handler", "channel")),
	}
}

// Register registers the channel routes.
func (h *ChannelHandler) Register(e *echo.Echo) {
	e.POST("/channels", h.CreateChannel)
	e.GET("/channels/:channel_id", h.GetChannel)
}

type createChannelRequest struct {
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	Recipients []string `json:"recipients"`
}

// CreateChannel creates a channel owned by the requester.
func (h *ChannelHandler) CreateChannel(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	var req createChannelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ch, err := h.channelService.Create(c.Request().Context(), channel.CreateInput{
		Kind:       channel.Kind(req.Kind),
		OwnerID:    userID,
		Name:       req.Name,
		Recipients: req.Recipients,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, ch)
}

// GetChannel returns a channel the requester may view.
func (h *ChannelHandler) GetChannel(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	channelID := strings.TrimSpace(c.Param("channel_id"))
	if channelID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "channel id is required")
	}
	ch, err := h.channelService.Get(c.Request().Context(), channelID)
	if err != nil {
		return httpError(err)
	}
	if !h.perms.For(userID, ch).Can(permissions.View) {
		return echo.NewHTTPError(http.StatusForbidden, "not allowed to view channel")
	}
	return c.JSON(http.StatusOK, ch)
}
