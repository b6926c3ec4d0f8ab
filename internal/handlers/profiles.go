package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/aura-analytics/backend/internal/ledger"
	"example.com/aura-analytics/backend/internal/models"
	"example.com/aura-analytics/backend/internal/notifications"
)

type ProfileHandler struct {
	Store    *ledger.Store
	Notifier *notifications.Hub
}

// NewProfileHandler создает обработчик профилей.
func NewProfileHandler(store *ledger.Store, notifier *notifications.Hub) *ProfileHandler {
	return &ProfileHandler{Store: store, Notifier: notifier}
}

type ProfileRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type ActivateProfileRequest struct {
	ID string `json:"id" validate:"required"`
}

type ProfilesResponse struct {
	Profiles        []models.Profile `json:"profiles"`
	ActiveProfileID string           `json:"activeProfileId"`
}

// List возвращает все профили и идентификатор активного.
func (h *ProfileHandler) List(c echo.Context) error {
	profiles, activeID, err := h.Store.Profiles()
	if err != nil {
		return ledgerError(c, err)
	}

	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].Name != profiles[j].Name {
			return profiles[i].Name < profiles[j].Name
		}
		return profiles[i].ID < profiles[j].ID
	})

	return c.JSON(http.StatusOK, ProfilesResponse{Profiles: profiles, ActiveProfileID: activeID})
}

// Create создает профиль с пустым леджером и делает его активным.
func (h *ProfileHandler) Create(c echo.Context) error {
	var req ProfileRequest
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

	profile, err := h.Store.AddProfile(c.Request().Context(), name)
	if err != nil {
		return ledgerError(c, err)
	}

	publishEvent(h.Notifier, profile.ID, notifications.EventProfileCreated, map[string]interface{}{
		"profileId": profile.ID,
		"name":      profile.Name,
	})
	return c.JSON(http.StatusCreated, profile)
}

// Activate переключает активный профиль.
func (h *ProfileHandler) Activate(c echo.Context) error {
	var req ActivateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	if err := h.Store.SetActiveProfile(c.Request().Context(), req.ID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return notFound(c, "profile not found")
		}
		return ledgerError(c, err)
	}

	publishEvent(h.Notifier, req.ID, notifications.EventProfileActivated, map[string]interface{}{
		"profileId": req.ID,
	})
	return c.JSON(http.StatusOK, map[string]string{"activeProfileId": req.ID})
}
