package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/aura-analytics/backend/internal/notifications"
)

type EventHandler struct {
	Hub *notifications.Hub
}

// NewEventHandler создает SSE-обработчик событий леджера.
func NewEventHandler(hub *notifications.Hub) *EventHandler {
	return &EventHandler{Hub: hub}
}

// Stream открывает SSE-поток событий профиля.
func (h *EventHandler) Stream(c echo.Context) error {
	profileID := strings.TrimSpace(c.QueryParam("profile_id"))
	if profileID == "" {
		return badRequest(c, "profile_id is required")
	}

	// Проверяем до записи заголовков: после WriteHeader статус 500
	// клиенту уже не доставить.
	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	ch, unsubscribe := h.Hub.Subscribe(profileID)
	defer unsubscribe()

	_ = writeSSE(c, notifications.Event{Type: "connected", Data: map[string]string{"profileId": profileID}})
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}

func publishEvent(hub *notifications.Hub, profileID, eventType string, data map[string]interface{}) {
	if hub == nil || profileID == "" {
		return
	}

	hub.Publish(profileID, notifications.Event{Type: eventType, Data: data})
}
