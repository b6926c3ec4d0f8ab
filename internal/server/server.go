package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/aura-analytics/backend/internal/assistant"
	"example.com/aura-analytics/backend/internal/config"
	"example.com/aura-analytics/backend/internal/handlers"
	"example.com/aura-analytics/backend/internal/ledger"
	"example.com/aura-analytics/backend/internal/notifications"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
// Store уже должен быть инициализирован вызовом Bootstrap.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool, store *ledger.Store) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	hub := notifications.NewHub()
	assistantService := assistant.NewService(cfg.Assistant.ReplyDelay)

	profileHandler := handlers.NewProfileHandler(store, hub)
	ledgerHandler := handlers.NewLedgerHandler(store, hub)
	feeHandler := handlers.NewFeeHandler(store, hub)
	goalHandler := handlers.NewGoalHandler(store, hub)
	dashboardHandler := handlers.NewDashboardHandler(store)
	assistantHandler := handlers.NewAssistantHandler(assistantService)
	eventHandler := handlers.NewEventHandler(hub)
	healthHandler := handlers.NewHealthHandler(db)

	registerRoutes(
		e,
		profileHandler,
		ledgerHandler,
		feeHandler,
		goalHandler,
		dashboardHandler,
		assistantHandler,
		eventHandler,
		healthHandler,
		ledgerRateLimiter(cfg.Ledger),
	)

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func ledgerRateLimiter(cfg config.LedgerConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
