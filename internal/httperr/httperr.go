// Package httperr holds the error constructors shared by every service:
// missing rows become 404, duplicates and rate limits become 409, malformed
// input becomes 400. Services surface these directly, handlers pass them
// through to echo unchanged.
package httperr

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

func NotFound(entity string, id any) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("%s with id %v was not found", entity, id))
}

func Conflict(format string, args ...any) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusConflict, fmt.Sprintf(format, args...))
}

func BadRequest(format string, args ...any) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

func IsStatus(err error, code int) bool {
	he, ok := err.(*echo.HTTPError)
	return ok && he.Code == code
}
