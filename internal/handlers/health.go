package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	DB *pgxpool.Pool
}

// NewHealthHandler создает обработчик проверки живости.
func NewHealthHandler(db *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{DB: db}
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Health возвращает статус сервиса, включая доступность базы.
func (h *HealthHandler) Health(c echo.Context) error {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := h.DB.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "degraded"})
		}
	}

	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
