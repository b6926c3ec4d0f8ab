package server

import (
	"github.com/labstack/echo/v4"

	"example.com/aura-analytics/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	profileHandler *handlers.ProfileHandler,
	ledgerHandler *handlers.LedgerHandler,
	feeHandler *handlers.FeeHandler,
	goalHandler *handlers.GoalHandler,
	dashboardHandler *handlers.DashboardHandler,
	assistantHandler *handlers.AssistantHandler,
	eventHandler *handlers.EventHandler,
	healthHandler *handlers.HealthHandler,
	ledgerRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", healthHandler.Health)

	api := e.Group("/api/v1")

	profiles := api.Group("/profiles")
	profiles.GET("", profileHandler.List)
	profiles.POST("", profileHandler.Create)
	profiles.PUT("/active", profileHandler.Activate)

	ledgerGroup := api.Group("/ledger", ledgerRateLimiter)
	ledgerGroup.GET("/sales", ledgerHandler.ListSales)
	ledgerGroup.POST("/sales", ledgerHandler.RegisterSales)
	ledgerGroup.GET("/pending-investments", ledgerHandler.ListPendingInvestments)
	ledgerGroup.POST("/pending-investments", ledgerHandler.CreatePendingInvestment)
	ledgerGroup.POST("/pending-investments/:id/resolve", ledgerHandler.ResolvePendingInvestment)
	ledgerGroup.GET("/daily-registration", ledgerHandler.DailyRegistration)
	ledgerGroup.POST("/daily-registration", ledgerHandler.RegisterDaily)

	fees := api.Group("/fees")
	fees.GET("", feeHandler.List)
	fees.POST("", feeHandler.Create)
	fees.PUT("/:feeId", feeHandler.Update)
	fees.PATCH("/:feeId/toggle", feeHandler.Toggle)
	fees.DELETE("/:feeId", feeHandler.Delete)

	goals := api.Group("/goals")
	goals.GET("", goalHandler.List)
	goals.POST("", goalHandler.Create)
	goals.PATCH("/:goalId/progress", goalHandler.UpdateProgress)

	metricsGroup := api.Group("/metrics")
	metricsGroup.GET("/dashboard", dashboardHandler.Metrics)
	metricsGroup.POST("/simulate", dashboardHandler.Simulate)

	assistantGroup := api.Group("/assistant")
	assistantGroup.GET("/greeting", assistantHandler.Greeting)
	assistantGroup.POST("/chat", assistantHandler.Chat)

	events := api.Group("/events")
	events.GET("/stream", eventHandler.Stream)
}
