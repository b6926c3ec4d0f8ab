package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/aura-analytics/backend/internal/ledger"
	"example.com/aura-analytics/backend/internal/models"
	"example.com/aura-analytics/backend/internal/notifications"
)

type LedgerHandler struct {
	Store    *ledger.Store
	Notifier *notifications.Hub
}

// NewLedgerHandler создает обработчик журнала продаж.
func NewLedgerHandler(store *ledger.Store, notifier *notifications.Hub) *LedgerHandler {
	return &LedgerHandler{Store: store, Notifier: notifier}
}

type RegisterSalesRequest struct {
	InvestedAmount float64   `json:"investedAmount" validate:"gte=0"`
	Returns        []float64 `json:"returns"`
	ApplyFees      bool      `json:"applyFees"`
}

type RegisterSalesResponse struct {
	Sales   []models.Sale             `json:"sales"`
	Pending *models.PendingInvestment `json:"pendingInvestment,omitempty"`
}

type PendingInvestmentRequest struct {
	InvestedAmount float64 `json:"investedAmount" validate:"gt=0"`
}

type ResolvePendingRequest struct {
	Amount    float64 `json:"amount" validate:"gt=0"`
	ApplyFees bool    `json:"applyFees"`
}

type DailyRegistrationRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type SalesResponse struct {
	Sales  []models.Sale     `json:"sales"`
	Filter models.DateFilter `json:"filter"`
}

// ListSales возвращает продажи активного профиля в окне фильтра.
// Параметр filter переключает окно перед выборкой.
func (h *LedgerHandler) ListSales(c echo.Context) error {
	if ok, err := applyFilterParam(c, h.Store); !ok {
		return err
	}

	sales, err := h.Store.FilteredSales()
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(http.StatusOK, SalesResponse{Sales: sales, Filter: h.Store.DateFilter()})
}

// RegisterSales регистрирует пачку рекламных расходов и возвратов.
func (h *LedgerHandler) RegisterSales(c echo.Context) error {
	var req RegisterSalesRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	result, err := h.Store.RegisterAction(c.Request().Context(), req.InvestedAmount, req.Returns, req.ApplyFees)
	if err != nil {
		return ledgerError(c, err)
	}

	response := RegisterSalesResponse{Sales: result.Sales, Pending: result.Pending}
	if response.Sales == nil {
		response.Sales = []models.Sale{}
	}

	profileID := h.Store.ActiveProfileID()
	switch {
	case len(result.Sales) > 0:
		publishEvent(h.Notifier, profileID, notifications.EventSalesRecorded, map[string]interface{}{
			"count": len(result.Sales),
		})
	case result.Pending != nil:
		publishEvent(h.Notifier, profileID, notifications.EventPendingCreated, map[string]interface{}{
			"pendingInvestmentId": result.Pending.ID,
		})
	default:
		return c.JSON(http.StatusOK, response)
	}

	return c.JSON(http.StatusCreated, response)
}

// ListPendingInvestments возвращает отложенные инвестиции активного профиля.
func (h *LedgerHandler) ListPendingInvestments(c echo.Context) error {
	pd, err := h.Store.ActiveProfileData()
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(http.StatusOK, map[string][]models.PendingInvestment{"pendingInvestments": pd.PendingInvestments})
}

// CreatePendingInvestment регистрирует рекламный расход без возврата.
func (h *LedgerHandler) CreatePendingInvestment(c echo.Context) error {
	var req PendingInvestmentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	pending, err := h.Store.AddPendingInvestment(c.Request().Context(), req.InvestedAmount)
	if err != nil {
		return ledgerError(c, err)
	}

	publishEvent(h.Notifier, h.Store.ActiveProfileID(), notifications.EventPendingCreated, map[string]interface{}{
		"pendingInvestmentId": pending.ID,
	})
	return c.JSON(http.StatusCreated, pending)
}

// ResolvePendingInvestment закрывает отложенную инвестицию продажей.
func (h *LedgerHandler) ResolvePendingInvestment(c echo.Context) error {
	id := c.Param("id")

	var req ResolvePendingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	sale, err := h.Store.ResolvePendingInvestment(c.Request().Context(), id, req.Amount, req.ApplyFees)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return notFound(c, "pending investment not found")
		}
		return ledgerError(c, err)
	}

	publishEvent(h.Notifier, h.Store.ActiveProfileID(), notifications.EventPendingResolved, map[string]interface{}{
		"pendingInvestmentId": id,
		"saleId":              sale.ID,
	})
	return c.JSON(http.StatusCreated, sale)
}

// DailyRegistration сообщает, открыт ли дашборд сегодня, и имя смены.
func (h *LedgerHandler) DailyRegistration(c echo.Context) error {
	registered, name, err := h.Store.DailyRegistration()
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"registered": registered,
		"name":       name,
	})
}

// RegisterDaily записывает дневную регистрацию активного профиля.
func (h *LedgerHandler) RegisterDaily(c echo.Context) error {
	var req DailyRegistrationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest(c, "name is required")
	}

	registration, err := h.Store.RegisterDaily(c.Request().Context(), name)
	if err != nil {
		return ledgerError(c, err)
	}

	publishEvent(h.Notifier, h.Store.ActiveProfileID(), notifications.EventDailyRegistered, map[string]interface{}{
		"name": name,
	})
	return c.JSON(http.StatusCreated, map[string]string{
		"registration": registration,
		"name":         name,
	})
}

// applyFilterParam переключает окно фильтра по query-параметру. Возвращает
// false, если ответ уже записан и обработчик должен завершиться.
func applyFilterParam(c echo.Context, store *ledger.Store) (bool, error) {
	value := c.QueryParam("filter")
	if value == "" {
		return true, nil
	}

	filter, ok := models.ValidDateFilter(value)
	if !ok {
		return false, badRequest(c, "invalid filter")
	}

	if err := store.SetDateFilter(filter); err != nil {
		return false, ledgerError(c, err)
	}
	return true, nil
}
