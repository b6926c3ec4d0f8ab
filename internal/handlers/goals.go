package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/aura-analytics/backend/internal/ledger"
	"example.com/aura-analytics/backend/internal/models"
	"example.com/aura-analytics/backend/internal/notifications"
)

type GoalHandler struct {
	Store    *ledger.Store
	Notifier *notifications.Hub
}

// NewGoalHandler создает обработчик целей.
func NewGoalHandler(store *ledger.Store, notifier *notifications.Hub) *GoalHandler {
	return &GoalHandler{Store: store, Notifier: notifier}
}

type GoalRequest struct {
	Title        string  `json:"title" validate:"required,max=200"`
	TargetAmount float64 `json:"targetAmount" validate:"gt=0"`
	Deadline     *string `json:"deadline"`
}

type GoalProgressRequest struct {
	CurrentAmount float64 `json:"currentAmount" validate:"gte=0"`
}

// List возвращает цели активного профиля.
func (h *GoalHandler) List(c echo.Context) error {
	pd, err := h.Store.ActiveProfileData()
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(http.StatusOK, map[string][]models.Goal{"goals": pd.Goals})
}

// Create добавляет цель активного профиля.
func (h *GoalHandler) Create(c echo.Context) error {
	var req GoalRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return badRequest(c, "title is required")
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return badRequest(c, err.Error())
	}

	goal, err := h.Store.AddGoal(c.Request().Context(), title, req.TargetAmount, deadline)
	if err != nil {
		return ledgerError(c, err)
	}

	h.publishChange(goal.ID, "created")
	return c.JSON(http.StatusCreated, goal)
}

// UpdateProgress обновляет накопленную сумму цели.
func (h *GoalHandler) UpdateProgress(c echo.Context) error {
	var req GoalProgressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	goal, err := h.Store.UpdateGoalProgress(c.Request().Context(), c.Param("goalId"), req.CurrentAmount)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return notFound(c, "goal not found")
		}
		return ledgerError(c, err)
	}

	h.publishChange(goal.ID, "progress")
	return c.JSON(http.StatusOK, goal)
}

func (h *GoalHandler) publishChange(goalID, action string) {
	publishEvent(h.Notifier, h.Store.ActiveProfileID(), notifications.EventGoalChanged, map[string]interface{}{
		"goalId": goalID,
		"action": action,
	})
}

func parseDeadline(value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}

	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil, nil
	}

	if _, err := time.Parse(dateLayout, trimmed); err != nil {
		return nil, errors.New("deadline must be YYYY-MM-DD")
	}
	return &trimmed, nil
}
