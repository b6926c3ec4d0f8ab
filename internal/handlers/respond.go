package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/aura-analytics/backend/internal/ledger"
)

const dateLayout = "2006-01-02"

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": message})
}

func conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, map[string]string{"error": message})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// ledgerError переводит ошибки стора в HTTP-ответ.
func ledgerError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return notFound(c, "not found")
	case errors.Is(err, ledger.ErrNoActiveProfile):
		return conflict(c, "no active profile")
	case errors.Is(err, ledger.ErrNotBootstrapped):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "service is starting"})
	default:
		return serverError(c)
	}
}
