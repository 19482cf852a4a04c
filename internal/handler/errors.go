// Package handler contains the HTTP handlers.  Handlers bind and
// validate payloads, call into the service layer and translate the
// shared error taxonomy to HTTP statuses; no booking or review rule
// lives here.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yunseo/theater-booking/internal/repository"
)

// respondError maps the service/repository error taxonomy onto HTTP.
// Anything outside the taxonomy is a 500 with a generic body; the
// underlying error is left to Echo's logger.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "capacity exceeded"})
	case errors.Is(err, repository.ErrSessionEnded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "session ended"})
	case errors.Is(err, repository.ErrAlreadyReviewed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already reviewed"})
	case errors.Is(err, repository.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid argument"})
	case errors.Is(err, repository.ErrNotEligible):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "not eligible"})
	case errors.Is(err, repository.ErrUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
