package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumochat/lumo/internal/accounts"
	"github.com/lumochat/lumo/internal/attachment"
	"github.com/lumochat/lumo/internal/channel"
	"github.com/lumochat/lumo/internal/message"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// httpError maps domain errors onto HTTP status codes. The mapping is
// deliberate: a duplicate nonce is a conflict the client must not retry
// verbatim, a missing permission is forbidden rather than not-found.
func httpError(err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	switch {
	case errors.Is(err, message.ErrFailedValidation),
		errors.Is(err, message.ErrTooManyAttachments):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, message.ErrEmptyMessage),
		errors.Is(err, message.ErrInvalidAttachment):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, message.ErrMissingPermission):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, message.ErrDuplicateNonce):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, channel.ErrChannelNotFound),
		errors.Is(err, attachment.ErrAttachmentNotFound),
		errors.Is(err, accounts.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, attachment.ErrAttachmentTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, accounts.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, accounts.ErrUsernameTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
