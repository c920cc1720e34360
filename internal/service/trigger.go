package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Abhishek-erlin/slack-integration/internal/domain"
	"github.com/Abhishek-erlin/slack-integration/internal/notification"
)

// Dispatcher is the notification dispatch capability consumed by the
// trigger gateway.
type Dispatcher interface {
	Send(ctx context.Context, in DispatchInput) (domain.DispatchResult, error)
}

// TriggerService is the public entry point of the notification pipeline: it
// maps a typed event plus context data to a formatted message and hands it
// to the dispatcher.
type TriggerService struct {
	registry *notification.Registry
	notifier Dispatcher
}

// NewTriggerService creates a new TriggerService.
func NewTriggerService(registry *notification.Registry, notifier Dispatcher) *TriggerService {
	return &TriggerService{registry: registry, notifier: notifier}
}

// HandleEvent renders the event's template and dispatches the notification.
// Unknown event types fail before any record is created; every other
// outcome is recorded in the delivery log and reported in the result.
func (s *TriggerService) HandleEvent(
	ctx context.Context,
	userID uuid.UUID,
	websiteID *uuid.UUID,
	eventType domain.EventType,
	channelID *string,
	eventContext map[string]any,
) (domain.TriggerResult, error) {
	slog.Info("processing event trigger", "event_type", eventType, "user_id", userID)

	tmpl, err := s.registry.Lookup(eventType)
	if err != nil {
		// Caller-input error: no audit record is warranted.
		return domain.TriggerResult{}, err
	}

	if eventContext == nil {
		eventContext = map[string]any{}
	}
	message := notification.Render(tmpl, eventContext)

	metadata := domain.Metadata{
		"triggerSource": "event",
		"eventType":     string(eventType),
		"eventContext":  eventContext,
		"templateUsed":  tmpl.Body,
	}
	if websiteID != nil {
		metadata["websiteId"] = websiteID.String()
	}

	result, err := s.notifier.Send(ctx, DispatchInput{
		UserID:    userID,
		WebsiteID: websiteID,
		EventType: eventType,
		Message:   message,
		ChannelID: channelID,
		Priority:  tmpl.Priority,
		Metadata:  metadata,
	})
	if err != nil {
		return domain.TriggerResult{}, err
	}

	return domain.TriggerResult{
		Success:        result.Success,
		Message:        result.Message,
		NotificationID: result.NotificationID,
		EventType:      eventType,
		DeliveryStatus: result.DeliveryStatus,
	}, nil
}

// SupportedEventTypes lists the event types the registry can format.
func (s *TriggerService) SupportedEventTypes() []domain.EventType {
	return s.registry.EventTypes()
}
