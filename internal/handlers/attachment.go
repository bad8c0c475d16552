package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lumochat/lumo/internal/attachment"
	"github.com/lumochat/lumo/internal/auth"
)

// AttachmentHandler serves upload and download of attachments. Uploads are
// unbound until a message claims them.
type AttachmentHandler struct {
	attachmentService *attachment.Service
	logger            *slog.Logger
}

// NewAttachmentHandler creates an AttachmentHandler.
func NewAttachmentHandler(log *slog.Logger, attachmentService *attachment.Service) *AttachmentHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AttachmentHandler{
		attachmentService: attachmentService,
		logger:            log.With(slog.String("handler", "attachment")),
	}
}

// Register registers the attachment routes.
func (h *AttachmentHandler) Register(e *echo.Echo) {
	e.POST("/attachments", h.Upload)
	e.GET("/attachments/:attachment_id", h.Serve)
}

// Upload accepts a multipart file field, or the raw request body when the
// request is not multipart.
func (h *AttachmentHandler) Upload(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}

	input := attachment.IngestInput{UploaderID: userID}

	if file, err := c.FormFile("file"); err == nil {
		src, err := file.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		defer src.Close()
		input.Reader = src
		input.Filename = file.Filename
		input.ContentType = file.Header.Get("Content-Type")
	} else {
		input.Reader = c.Request().Body
		input.Filename = strings.TrimSpace(c.QueryParam("filename"))
		input.ContentType = c.Request().Header.Get("Content-Type")
	}

	att, err := h.attachmentService.Ingest(c.Request().Context(), input)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, att)
}

// Serve streams the stored bytes of an attachment.
func (h *AttachmentHandler) Serve(c echo.Context) error {
	if _, err := auth.UserIDFromContext(c); err != nil {
		return err
	}
	attachmentID := strings.TrimSpace(c.Param("attachment_id"))
	if attachmentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "attachment id is required")
	}

	reader, att, err := h.attachmentService.Open(c.Request().Context(), attachmentID)
	if err != nil {
		return httpError(err)
	}
	defer reader.Close()

	c.Response().Header().Set("Content-Type", att.ContentType)
	c.Response().Header().Set("Cache-Control", "private, max-age=86400")
	if att.Filename != "" {
		c.Response().Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", att.Filename))
	}
	c.Response().WriteHeader(http.StatusOK)
	if _, err := io.Copy(c.Response().Writer, reader); err != nil {
		h.logger.Warn("serve attachment stream failed", slog.Any("error", err))
	}
	return nil
}
