package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Alp4ka/cursorpaging"
	"github.com/Alp4ka/cursorpaging/api"
	"github.com/Alp4ka/cursorpaging/serializer"
)

// mapDomainError converts paging errors into an echo.HTTPError. Invalid
// cursors and requests are the client's fault.
func mapDomainError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, api.ErrValidation),
		errors.Is(err, serializer.ErrInvalidBase64),
		errors.Is(err, serializer.ErrCrypto),
		errors.Is(err, serializer.ErrSerialization),
		errors.Is(err, cursorpaging.ErrInvalidRequest),
		errors.Is(err, cursorpaging.ErrUnknownAttribute),
		errors.Is(err, cursorpaging.ErrUnknownRule),
		errors.Is(err, cursorpaging.ErrValueType):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *DataRecordHandler) mapError(c echo.Context, err error) error {
	httpErr := mapDomainError(err)
	if httpErr.Code >= http.StatusInternalServerError {
		h.logger.ErrorContext(c.Request().Context(), "request failed",
			slog.String("uri", c.Request().URL.RequestURI()),
			slog.String("error", err.Error()),
		)
	} else {
		h.logger.DebugContext(c.Request().Context(), "request rejected", slog.String("error", err.Error()))
	}

	return httpErr.WithInternal(err)
}
