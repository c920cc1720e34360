package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies why a notification is being triggered. The set is
// closed: adding a type requires registering a template for it.
type EventType string

const (
	EventAuditComplete      EventType = "audit_complete"
	EventAuditStarted       EventType = "audit_started"
	EventAIVisibility       EventType = "ai_visibility"
	EventCompetitorAnalysis EventType = "competitor_analysis"
	EventIntegrationStatus  EventType = "integration_status"
	EventSystemAlert        EventType = "system_alert"
)

// EventTypes lists every supported event type.
func EventTypes() []EventType {
	return []EventType{
		EventAuditComplete,
		EventAuditStarted,
		EventAIVisibility,
		EventCompetitorAnalysis,
		EventIntegrationStatus,
		EventSystemAlert,
	}
}

// ValidEventType reports whether et is one of the supported event types.
func ValidEventType(et EventType) bool {
	for _, known := range EventTypes() {
		if et == known {
			return true
		}
	}
	return false
}

// DeliveryStatus represents the lifecycle stage of a single delivery attempt.
type DeliveryStatus string

const (
	StatusQueued    DeliveryStatus = "queued"
	StatusSending   DeliveryStatus = "sending"
	StatusDelivered DeliveryStatus = "delivered"
	StatusFailed    DeliveryStatus = "failed"
	StatusRetrying  DeliveryStatus = "retrying"
)

// Priority represents the urgency of a notification.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Metadata is the open key-value mapping carried with a notification for
// audit and debugging. It is never consulted for delivery logic.
type Metadata map[string]any

// Notification is one attempted delivery. The message content is immutable
// once persisted; only status, timestamps, error text and retry count change.
type Notification struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	UserID         uuid.UUID      `json:"user_id" db:"user_id"`
	WebsiteID      *uuid.UUID     `json:"website_id,omitempty" db:"website_id"`
	ChannelID      *string        `json:"channel_id,omitempty" db:"channel_id"`
	EventType      EventType      `json:"event_type" db:"event_type"`
	MessageContent string         `json:"message_content" db:"message_content"`
	Priority       Priority       `json:"priority" db:"priority"`
	DeliveryStatus DeliveryStatus `json:"delivery_status" db:"delivery_status"`
	SlackMessageID *string        `json:"slack_message_id,omitempty" db:"slack_message_id"`
	ErrorMessage   *string        `json:"error_message,omitempty" db:"error_message"`
	RetryCount     int            `json:"retry_count" db:"retry_count"`
	Metadata       Metadata       `json:"metadata,omitempty" db:"metadata"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
	DeliveredAt    *time.Time     `json:"delivered_at,omitempty" db:"delivered_at"`
}

// NotificationFilter narrows a notification history query.
type NotificationFilter struct {
	UserID    *uuid.UUID
	EventType *EventType
	Status    *DeliveryStatus
	Page      int
	PageSize  int
}

// DispatchResult is the outcome of a single dispatch call.
type DispatchResult struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	NotificationID *uuid.UUID     `json:"notification_id,omitempty"`
	DeliveryStatus DeliveryStatus `json:"delivery_status,omitempty"`
}

// TriggerResult is the outcome of an event trigger.
type TriggerResult struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	NotificationID *uuid.UUID     `json:"notification_id,omitempty"`
	EventType      EventType      `json:"event_type"`
	DeliveryStatus DeliveryStatus `json:"delivery_status,omitempty"`
}
