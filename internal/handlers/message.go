package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lumochat/lumo/internal/auth"
	"github.com/lumochat/lumo/internal/channel"
	messagepkg "github.com/lumochat/lumo/internal/message"
	messageevent "github.com/lumochat/lumo/internal/message/event"
	"github.com/lumochat/lumo/internal/permissions"
)

const eventStreamBuffer = 128

// MessageService is the slice of the message pipeline the handler needs.
type MessageService interface {
	Create(ctx context.Context, authorID, channelID string, draft messagepkg.Draft) (messagepkg.Message, error)
	ListLatest(ctx context.Context, channelID string, limit int32) ([]messagepkg.Message, error)
	ListBefore(ctx context.Context, channelID, beforeID string, limit int32) ([]messagepkg.Message, error)
}

// ChannelAccess resolves channels for permission gating.
type ChannelAccess interface {
	Get(ctx context.Context, channelID string) (channel.Channel, error)
}

// MessageHandler serves channel-scoped messaging endpoints.
type MessageHandler struct {
	messageService MessageService
	channelService ChannelAccess
	perms          *permissions.Calculator
	messageEvents  messageevent.Subscriber
	logger         *slog.Logger
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(log *slog.Logger, messageService MessageService, channelService ChannelAccess, perms *permissions.Calculator, eventSubscribers ...messageevent.Subscriber) *MessageHandler {
	if log == nil {
		log = slog.Default()
	}
	var messageEvents messageevent.Subscriber
	if len(eventSubscribers) > 0 {
		messageEvents = eventSubscribers[0]
	}
	return &MessageHandler{
		messageService: messageService,
		channelService: channelService,
		perms:          perms,
		messageEvents:  messageEvents,
		logger:         log.With(slog.String("handler", "message")),
	}
}

// Register registers all message routes.
func (h *MessageHandler) Register(e *echo.Echo) {
	group := e.Group("/channels/:channel_id")
	group.POST("/messages", h.SendMessage)
	group.GET("/messages", h.ListMessages)
	group.GET("/messages/events", h.StreamMessageEvents)
}

// SendMessage submits a draft to the creation pipeline and returns the
// persisted message.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	channelID := strings.TrimSpace(c.Param("channel_id"))
	if channelID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "channel id is required")
	}

	var draft messagepkg.Draft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.messageService.Create(c.Request().Context(), userID, channelID, draft)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, msg)
}

// ListMessages returns channel history with optional id-based pagination.
func (h *MessageHandler) ListMessages(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	channelID := strings.TrimSpace(c.Param("channel_id"))
	if channelID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "channel id is required")
	}
	if err := h.requireView(c.Request().Context(), userID, channelID); err != nil {
		return err
	}

	limit := int32(50)
	if s := strings.TrimSpace(c.QueryParam("limit")); s != "" {
		if n, err := strconv.ParseInt(s, 10, 32); err == nil && n > 0 && n <= 100 {
			limit = int32(n)
		}
	}

	var messages []messagepkg.Message
	if before := strings.TrimSpace(c.QueryParam("before")); before != "" {
		messages, err = h.messageService.ListBefore(c.Request().Context(), channelID, before, limit)
	} else {
		messages, err = h.messageService.ListLatest(c.Request().Context(), channelID, limit)
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": messages})
}

// StreamMessageEvents streams created-message events for one channel as SSE.
func (h *MessageHandler) StreamMessageEvents(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	channelID := strings.TrimSpace(c.Param("channel_id"))
	if channelID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "channel id is required")
	}
	if err := h.requireView(c.Request().Context(), userID, channelID); err != nil {
		return err
	}
	if h.messageEvents == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "message events not configured")
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming not supported")
	}
	writer := bufio.NewWriter(c.Response().Writer)

	_, stream, cancel := h.messageEvents.Subscribe(channelID, eventStreamBuffer)
	defer cancel()

	heartbeat := time.NewTicker(20 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-heartbeat.C:
			if err := writeSSEJSON(writer, flusher, map[string]string{"type": "ping"}); err != nil {
				return nil
			}
		case event, ok := <-stream:
			if !ok {
				return nil
			}
			if event.ChannelID != channelID {
				continue
			}
			if err := writeSSEJSON(writer, flusher, event); err != nil {
				return nil
			}
		}
	}
}

func (h *MessageHandler) requireView(ctx context.Context, userID, channelID string) error {
	ch, err := h.channelService.Get(ctx, channelID)
	if err != nil {
		return httpError(err)
	}
	if !h.perms.For(userID, ch).Can(permissions.View) {
		return echo.NewHTTPError(http.StatusForbidden, "not allowed to view channel")
	}
	return nil
}

func writeSSEData(writer *bufio.Writer, flusher http.Flusher, payload string) error {
	if _, err := writer.WriteString(fmt.Sprintf("data: %s\n\n", payload)); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func writeSSEJSON(writer *bufio.Writer, flusher http.Flusher, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return writeSSEData(writer, flusher, string(data))
}
