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

var errInvalidFeeType = errors.New("invalid fee type")

type FeeHandler struct {
	Store    *ledger.Store
	Notifier *notifications.Hub
}

// NewFeeHandler создает обработчик такс.
func NewFeeHandler(store *ledger.Store, notifier *notifications.Hub) *FeeHandler {
	return &FeeHandler{Store: store, Notifier: notifier}
}

type FeeRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Amount   float64 `json:"amount" validate:"gte=0"`
	Type     string  `json:"type" validate:"required"`
	IsActive *bool   `json:"isActive"`
}

type ToggleFeeRequest struct {
	IsActive *bool `json:"isActive"`
}

// List возвращает таксы активного профиля.
func (h *FeeHandler) List(c echo.Context) error {
	pd, err := h.Store.ActiveProfileData()
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(http.StatusOK, map[string][]models.Fee{"fees": pd.Fees})
}

// Create добавляет таксу. Новая такса активна, если isActive не передан.
func (h *FeeHandler) Create(c echo.Context) error {
	var req FeeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	name, feeType, err := parseFeeFields(req.Name, req.Type)
	if err != nil {
		return badRequest(c, err.Error())
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	fee, err := h.Store.AddFee(c.Request().Context(), name, req.Amount, feeType, isActive)
	if err != nil {
		return ledgerError(c, err)
	}

	h.publishChange(fee.ID, "created")
	return c.JSON(http.StatusCreated, fee)
}

// Update изменяет имя, сумму и тип таксы.
func (h *FeeHandler) Update(c echo.Context) error {
	var req FeeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	name, feeType, err := parseFeeFields(req.Name, req.Type)
	if err != nil {
		return badRequest(c, err.Error())
	}

	fee, err := h.Store.UpdateFee(c.Request().Context(), c.Param("feeId"), name, req.Amount, feeType)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return notFound(c, "fee not found")
		}
		return ledgerError(c, err)
	}

	h.publishChange(fee.ID, "updated")
	return c.JSON(http.StatusOK, fee)
}

// Toggle переключает участие таксы в расчетах. Пустое тело инвертирует флаг.
func (h *FeeHandler) Toggle(c echo.Context) error {
	var req ToggleFeeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	fee, err := h.Store.ToggleFee(c.Request().Context(), c.Param("feeId"), req.IsActive)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return notFound(c, "fee not found")
		}
		return ledgerError(c, err)
	}

	h.publishChange(fee.ID, "toggled")
	return c.JSON(http.StatusOK, fee)
}

// Delete удаляет таксу.
func (h *FeeHandler) Delete(c echo.Context) error {
	feeID := c.Param("feeId")

	if err := h.Store.DeleteFee(c.Request().Context(), feeID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return notFound(c, "fee not found")
		}
		return ledgerError(c, err)
	}

	h.publishChange(feeID, "deleted")
	return c.NoContent(http.StatusNoContent)
}

func (h *FeeHandler) publishChange(feeID, action string) {
	publishEvent(h.Notifier, h.Store.ActiveProfileID(), notifications.EventFeeChanged, map[string]interface{}{
		"feeId":  feeID,
		"action": action,
	})
}

func parseFeeFields(name, feeType string) (string, models.FeeType, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", "", errors.New("name is required")
	}

	parsed, ok := models.ValidFeeType(feeType)
	if !ok {
		return "", "", errInvalidFeeType
	}

	return trimmed, parsed, nil
}
