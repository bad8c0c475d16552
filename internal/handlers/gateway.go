package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/lumochat/lumo/internal/auth"
	messageevent "github.com/lumochat/lumo/internal/message/event"
	"github.com/lumochat/lumo/internal/permissions"
)

const (
	gatewayWriteTimeout = 10 * time.Second
	gatewayPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// GatewayHandler streams channel events over a websocket. Clients pass the
// JWT via the token query parameter.
type GatewayHandler struct {
	channelService ChannelAccess
	perms          *permissions.Calculator
	events         messageevent.Subscriber
	logger         *slog.Logger
}

// NewGatewayHandler creates a GatewayHandler.
func NewGatewayHandler(log *slog.Logger, channelService ChannelAccess, perms *permissions.Calculator, events messageevent.Subscriber) *GatewayHandler {
	if log == nil {
		log = slog.Default()
	}
	return &GatewayHandler{
		channelService: channelService,
		perms:          perms,
		events:         events,
		logger:         log.With(slog.String("handler", "gateway")),
	}
}

// Register registers the gateway route.
func (h *GatewayHandler) Register(e *echo.Echo) {
	e.GET("/gateway/:channel_id", h.Stream)
}

// Stream upgrades the connection and forwards channel events until the
// client disconnects.
func (h *GatewayHandler) Stream(c echo.Context) error {
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
	if h.events == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "events not configured")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	defer conn.Close()

	_, stream, cancel := h.events.Subscribe(channelID, eventStreamBuffer)
	defer cancel()

	// Reader goroutine: we never expect client frames, but reading is what
	// surfaces the close handshake.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(gatewayPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return nil
		case <-c.Request().Context().Done():
			return nil
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(gatewayWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case event, ok := <-stream:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn("marshal gateway event failed", slog.Any("error", err))
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(gatewayWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return nil
			}
		}
	}
}
