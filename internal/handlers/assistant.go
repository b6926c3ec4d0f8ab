package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/aura-analytics/backend/internal/assistant"
)

type AssistantHandler struct {
	Service *assistant.Service
}

// NewAssistantHandler создает обработчик чата ассистента.
func NewAssistantHandler(service *assistant.Service) *AssistantHandler {
	return &AssistantHandler{Service: service}
}

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// Greeting возвращает приветственное сообщение ассистента.
func (h *AssistantHandler) Greeting(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Service.Greeting())
}

// Chat возвращает ответ ассистента на сообщение пользователя.
func (h *AssistantHandler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	reply, err := h.Service.Respond(c.Request().Context(), req.Message)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, reply)
}
