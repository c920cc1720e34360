package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Abhishek-erlin/slack-integration/internal/domain"
)

// NotificationStore is the delivery log consumed by the dispatcher. The
// store does not enforce transition legality; NotificationService is its
// sole writer and responsible for legal transitions.
type NotificationStore interface {
	Create(ctx context.Context, n domain.Notification) (uuid.UUID, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DeliveryStatus, errorMessage, slackMessageID *string) error
	MergeMetadata(ctx context.Context, id uuid.UUID, partial domain.Metadata) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	History(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, int, error)
	ListFailed(ctx context.Context, maxRetries, limit int) ([]domain.Notification, error)
	IncrementRetry(ctx context.Context, id uuid.UUID) error
}

// MessagingIntegration is the external messaging collaborator: integration
// state plus the network-bound send.
type MessagingIntegration interface {
	IntegrationStatus(ctx context.Context, userID uuid.UUID) (domain.IntegrationStatus, error)
	SendMessage(ctx context.Context, userID uuid.UUID, text, channelID string) (string, error)
}

// DispatchInput carries one delivery request into the dispatcher.
type DispatchInput struct {
	UserID    uuid.UUID
	WebsiteID *uuid.UUID
	EventType domain.EventType
	Message   string
	ChannelID *string
	Priority  domain.Priority
	Metadata  domain.Metadata
}

// NotificationService dispatches notifications and records every attempt.
// Each call persists exactly one notification log entry, whatever the
// outcome; no delivery attempt is silently dropped.
type NotificationService struct {
	store     NotificationStore
	messaging MessagingIntegration
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(store NotificationStore, messaging MessagingIntegration) *NotificationService {
	return &NotificationService{store: store, messaging: messaging}
}

// Send resolves the destination channel, invokes the transport and records
// the outcome. Delivery failures come back inside the DispatchResult; a
// non-nil error means the delivery log itself could not be written and the
// audit guarantee is broken for this call.
func (s *NotificationService) Send(ctx context.Context, in DispatchInput) (domain.DispatchResult, error) {
	status, err := s.messaging.IntegrationStatus(ctx, in.UserID)
	if err != nil {
		return s.recordImmediateFailure(ctx, in, nil, err.Error())
	}

	if !status.Connected {
		// Account state, not a transient transport failure: terminal and
		// not retryable.
		return s.recordImmediateFailure(ctx, in, nil,
			"user does not have an active Slack integration")
	}

	var target string
	if in.ChannelID != nil && *in.ChannelID != "" {
		target = *in.ChannelID
	} else if status.ChannelID != nil {
		target = *status.ChannelID
	}
	if target == "" {
		return s.recordImmediateFailure(ctx, in, nil,
			"no Slack channel available for notification")
	}

	id, err := s.store.Create(ctx, domain.Notification{
		UserID:         in.UserID,
		WebsiteID:      in.WebsiteID,
		ChannelID:      &target,
		EventType:      in.EventType,
		MessageContent: in.Message,
		Priority:       in.Priority,
		DeliveryStatus: domain.StatusQueued,
		Metadata:       in.Metadata,
	})
	if err != nil {
		return domain.DispatchResult{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return s.deliver(ctx, id, in, target)
}

// deliver runs the sending→{delivered,failed} leg. The record is finalized
// on every exit path, including a panicking transport.
func (s *NotificationService) deliver(ctx context.Context, id uuid.UUID, in DispatchInput, channel string) (result domain.DispatchResult, err error) {
	if updErr := s.store.UpdateStatus(ctx, id, domain.StatusSending, nil, nil); updErr != nil {
		return domain.DispatchResult{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, updErr)
	}

	finalized := false
	defer func() {
		if finalized {
			return
		}
		errText := "dispatch aborted before completion"
		if r := recover(); r != nil {
			errText = fmt.Sprintf("panic during delivery: %v", r)
			slog.Error("transport panicked", "notification_id", id, "panic", r)
		}
		if updErr := s.store.UpdateStatus(ctx, id, domain.StatusFailed, &errText, nil); updErr != nil {
			slog.Error("failed to finalize notification", "notification_id", id, "error", updErr)
		}
		result = domain.DispatchResult{
			Success:        false,
			Message:        errText,
			NotificationID: &id,
			DeliveryStatus: domain.StatusFailed,
		}
		err = nil
	}()

	messageID, sendErr := s.messaging.SendMessage(ctx, in.UserID, in.Message, channel)
	if sendErr != nil {
		errText := sendErr.Error()
		finalized = true
		if updErr := s.store.UpdateStatus(ctx, id, domain.StatusFailed, &errText, nil); updErr != nil {
			return domain.DispatchResult{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, updErr)
		}
		slog.Warn("notification delivery failed",
			"notification_id", id, "user_id", in.UserID, "event_type", in.EventType, "error", errText)
		return domain.DispatchResult{
			Success:        false,
			Message:        "failed to deliver notification: " + errText,
			NotificationID: &id,
			DeliveryStatus: domain.StatusFailed,
		}, nil
	}

	finalized = true
	if updErr := s.store.UpdateStatus(ctx, id, domain.StatusDelivered, nil, &messageID); updErr != nil {
		// The message reached Slack but the log could not be finalized;
		// surface the store failure rather than report a clean success
		// without a record.
		return domain.DispatchResult{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, updErr)
	}

	slog.Info("notification delivered",
		"notification_id", id, "user_id", in.UserID, "event_type", in.EventType, "channel", channel)
	return domain.DispatchResult{
		Success:        true,
		Message:        "notification delivered successfully",
		NotificationID: &id,
		DeliveryStatus: domain.StatusDelivered,
	}, nil
}

// recordImmediateFailure persists the mandatory audit record for dispatches
// that never reach the transport.
func (s *NotificationService) recordImmediateFailure(ctx context.Context, in DispatchInput, channel *string, reason string) (domain.DispatchResult, error) {
	id, err := s.store.Create(ctx, domain.Notification{
		UserID:         in.UserID,
		WebsiteID:      in.WebsiteID,
		ChannelID:      channel,
		EventType:      in.EventType,
		MessageContent: in.Message,
		Priority:       in.Priority,
		DeliveryStatus: domain.StatusFailed,
		ErrorMessage:   &reason,
		Metadata:       in.Metadata,
	})
	if err != nil {
		return domain.DispatchResult{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	slog.Warn("notification not dispatched",
		"notification_id", id, "user_id", in.UserID, "event_type", in.EventType, "reason", reason)
	return domain.DispatchResult{
		Success:        false,
		Message:        reason,
		NotificationID: &id,
		DeliveryStatus: domain.StatusFailed,
	}, nil
}

// RetryFailed re-attempts delivery of failed notifications that still have
// retry budget. Records whose integration is gone or that never resolved a
// channel are skipped; they stay failed and age out of the retry window.
// Returns the number of notifications delivered by this sweep.
func (s *NotificationService) RetryFailed(ctx context.Context, maxRetries, limit int) (int, error) {
	failed, err := s.store.ListFailed(ctx, maxRetries, limit)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	delivered := 0
	for _, n := range failed {
		status, err := s.messaging.IntegrationStatus(ctx, n.UserID)
		if err != nil || !status.Connected {
			continue
		}

		var target string
		if n.ChannelID != nil && *n.ChannelID != "" {
			target = *n.ChannelID
		} else if status.ChannelID != nil {
			target = *status.ChannelID
		}
		if target == "" {
			continue
		}

		if err := s.store.IncrementRetry(ctx, n.ID); err != nil {
			slog.Error("failed to record retry attempt", "notification_id", n.ID, "error", err)
			continue
		}

		result, err := s.deliver(ctx, n.ID, DispatchInput{
			UserID:    n.UserID,
			WebsiteID: n.WebsiteID,
			EventType: n.EventType,
			Message:   n.MessageContent,
			Priority:  n.Priority,
		}, target)
		if err != nil {
			return delivered, err
		}
		if result.Success {
			delivered++
			if mergeErr := s.store.MergeMetadata(ctx, n.ID, domain.Metadata{
				"recoveredByRetry": true,
				"retryAttempt":     n.RetryCount + 1,
			}); mergeErr != nil {
				slog.Error("failed to annotate retried notification", "notification_id", n.ID, "error", mergeErr)
			}
		}
	}
	return delivered, nil
}

// History returns notification log entries for external reporting.
func (s *NotificationService) History(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, int, error) {
	return s.store.History(ctx, filter)
}

// Get returns a single notification log entry.
func (s *NotificationService) Get(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	return s.store.GetByID(ctx, id)
}
