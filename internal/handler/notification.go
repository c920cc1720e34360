package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Abhishek-erlin/slack-integration/internal/domain"
	"github.com/Abhishek-erlin/slack-integration/internal/service"
)

// NotificationHandler exposes direct notification dispatch and the
// delivery log over HTTP.
type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// Register mounts the notification routes on the given group.
func (h *NotificationHandler) Register(g *echo.Group) {
	g.POST("/send", h.Send)
	g.GET("/history", h.History)
	g.GET("/:id", h.Get)
}

type notificationSendRequest struct {
	UserID         string         `json:"user_id" validate:"required,uuid"`
	WebsiteID      *string        `json:"website_id" validate:"omitempty,uuid"`
	EventType      string         `json:"notification_type" validate:"required"`
	MessageContent string         `json:"message_content" validate:"required"`
	ChannelID      *string        `json:"channel_id"`
	Priority       string         `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	Metadata       map[string]any `json:"metadata"`
}

// Send dispatches a pre-formatted message, bypassing the template
// registry. Used by callers that compose their own message content.
func (h *NotificationHandler) Send(c echo.Context) error {
	var req notificationSendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	eventType := domain.EventType(req.EventType)
	if !domain.ValidEventType(eventType) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownEventType, req.EventType)
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

	priority := domain.Priority(req.Priority)
	if req.Priority == "" {
		priority = domain.PriorityNormal
	}

	result, err := h.notifications.Send(c.Request().Context(), service.DispatchInput{
		UserID:    userID,
		WebsiteID: websiteID,
		EventType: eventType,
		Message:   req.MessageContent,
		ChannelID: req.ChannelID,
		Priority:  priority,
		Metadata:  req.Metadata,
	})
	if err != nil {
		return err
	}

	return JSON(c, http.StatusAccepted, result)
}

// History lists the delivery log, newest first, with optional filters.
func (h *NotificationHandler) History(c echo.Context) error {
	var filter domain.NotificationFilter

	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return &domain.ValidationError{Field: "user_id", Message: "must be a valid UUID"}
		}
		filter.UserID = &id
	}
	if raw := c.QueryParam("event_type"); raw != "" {
		et := domain.EventType(raw)
		filter.EventType = &et
	}
	if raw := c.QueryParam("status"); raw != "" {
		st := domain.DeliveryStatus(raw)
		filter.Status = &st
	}
	filter.Page = queryInt(c, "page", 1)
	filter.PageSize = queryInt(c, "page_size", 20)

	items, total, err := h.notifications.History(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return JSONList(c, http.StatusOK, items, PaginationMeta{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
		HasNext:    filter.Page*filter.PageSize < total,
	})
}

// Get returns a single delivery log entry by ID.
func (h *NotificationHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return &domain.ValidationError{Field: "id", Message: "must be a valid UUID"}
	}

	n, err := h.notifications.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, n)
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
