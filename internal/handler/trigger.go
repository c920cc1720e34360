package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Abhishek-erlin/slack-integration/internal/domain"
	"github.com/Abhishek-erlin/slack-integration/internal/service"
)

// TriggerHandler exposes the event trigger gateway over HTTP.
type TriggerHandler struct {
	triggers *service.TriggerService
}

func NewTriggerHandler(triggers *service.TriggerService) *TriggerHandler {
	return &TriggerHandler{triggers: triggers}
}

// Register mounts the trigger routes on the given group.
func (h *TriggerHandler) Register(g *echo.Group) {
	g.POST("/send", h.Send)
	g.GET("/supported-events", h.SupportedEvents)
	g.GET("/health", h.Health)
}

type triggerSendRequest struct {
	UserID    string         `json:"user_id" validate:"required,uuid"`
	WebsiteID *string        `json:"website_id" validate:"omitempty,uuid"`
	EventType string         `json:"event_type" validate:"required"`
	ChannelID *string        `json:"channel_id"`
	Context   map[string]any `json:"context"`
}

type triggerSendResponse struct {
	Success        bool       `json:"success"`
	Message        string     `json:"message"`
	NotificationID *uuid.UUID `json:"notification_id,omitempty"`
	EventType      string     `json:"event_type"`
	DeliveryStatus string     `json:"delivery_status,omitempty"`
}

// Send accepts an event trigger, formats the message and dispatches it.
// A 202 means the outcome was durably recorded, whether or not delivery
// itself succeeded; the body carries the real delivery status.
func (h *TriggerHandler) Send(c echo.Context) error {
	var req triggerSendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return &domain.ValidationError{Field: "user_id", Message: "must be a valid UUID"}
	}

	var websiteID *uuid.UUID
	if req.WebsiteID != nil {
		id, err := uuid.Parse(*req.WebsiteID)
		if err != nil {
			return &domain.ValidationError{Field: "website_id", Message: "must be a valid UUID"}
		}
		websiteID = &id
	}

	result, err := h.triggers.HandleEvent(
		c.Request().Context(),
		userID,
		websiteID,
		domain.EventType(req.EventType),
		req.ChannelID,
		req.Context,
	)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusAccepted, triggerSendResponse{
		Success:        result.Success,
		Message:        result.Message,
		NotificationID: result.NotificationID,
		EventType:      string(result.EventType),
		DeliveryStatus: string(result.DeliveryStatus),
	})
}

type supportedEventsResponse struct {
	EventTypes []domain.EventType `json:"event_types"`
	Count      int                `json:"count"`
}

// SupportedEvents lists the event types the gateway accepts.
func (h *TriggerHandler) SupportedEvents(c echo.Context) error {
	types := h.triggers.SupportedEventTypes()
	return JSON(c, http.StatusOK, supportedEventsResponse{
		EventTypes: types,
		Count:      len(types),
	})
}

// Health reports liveness of the trigger gateway.
func (h *TriggerHandler) Health(c echo.Context) error {
	return JSON(c, http.StatusOK, map[string]any{
		"status":           "healthy",
		"service":          "trigger-gateway",
		"supported_events": len(h.triggers.SupportedEventTypes()),
	})
}
