package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/aura-analytics/backend/internal/ledger"
	"example.com/aura-analytics/backend/internal/metrics"
	"example.com/aura-analytics/backend/internal/models"
)

type DashboardHandler struct {
	Store *ledger.Store
}

// NewDashboardHandler создает обработчик витрины метрик.
func NewDashboardHandler(store *ledger.Store) *DashboardHandler {
	return &DashboardHandler{Store: store}
}

type DashboardResponse struct {
	Filter       models.DateFilter `json:"filter"`
	RegisteredBy string            `json:"registeredBy"`
	SalesCount   int               `json:"salesCount"`
	Metrics      metrics.Result    `json:"metrics"`
}

type SimulateRequest struct {
	Amount         float64 `json:"amount" validate:"gt=0"`
	InvestedAmount float64 `json:"investedAmount" validate:"gte=0"`
	ApplyFees      *bool   `json:"applyFees"`
}

type SimulateResponse struct {
	Current   metrics.Result `json:"current"`
	Simulated metrics.Result `json:"simulated"`
}

// Metrics возвращает метрики активного профиля. Без дневной регистрации
// витрина закрыта и запрос завершается конфликтом.
func (h *DashboardHandler) Metrics(c echo.Context) error {
	if ok, err := applyFilterParam(c, h.Store); !ok {
		return err
	}

	registered, name, err := h.Store.DailyRegistration()
	if err != nil {
		return ledgerError(c, err)
	}
	if !registered {
		return conflict(c, "daily registration required")
	}

	sales, err := h.Store.FilteredSales()
	if err != nil {
		return ledgerError(c, err)
	}

	pd, err := h.Store.ActiveProfileData()
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(http.StatusOK, DashboardResponse{
		Filter:       h.Store.DateFilter(),
		RegisteredBy: name,
		SalesCount:   len(sales),
		Metrics:      metrics.Compute(sales, pd.Fees),
	})
}

// Simulate добавляет одну синтетическую продажу к отфильтрованным
// продажам активного профиля и пересчитывает метрики, ничего не
// сохраняя. Дневная регистрация для симуляции не требуется.
func (h *DashboardHandler) Simulate(c echo.Context) error {
	var req SimulateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	sales, err := h.Store.FilteredSales()
	if err != nil {
		return ledgerError(c, err)
	}

	pd, err := h.Store.ActiveProfileData()
	if err != nil {
		return ledgerError(c, err)
	}

	synthetic := toSyntheticSale(req)
	simulated := append(append([]models.Sale{}, sales...), synthetic)

	return c.JSON(http.StatusOK, SimulateResponse{
		Current:   metrics.Compute(sales, pd.Fees),
		Simulated: metrics.Compute(simulated, pd.Fees),
	})
}

func toSyntheticSale(req SimulateRequest) models.Sale {
	applyFees := true
	if req.ApplyFees != nil {
		applyFees = *req.ApplyFees
	}

	return models.Sale{
		ID:             uuid.NewString(),
		Amount:         req.Amount,
		InvestedAmount: req.InvestedAmount,
		ApplyFees:      applyFees,
	}
}
