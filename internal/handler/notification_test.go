package handler

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek-erlin/slack-integration/internal/domain"
	"github.com/Abhishek-erlin/slack-integration/internal/service"
)

// stubNotificationStore is a minimal in-memory NotificationStore.
type stubNotificationStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*domain.Notification
}

func newStubNotificationStore() *stubNotificationStore {
	return &stubNotificationStore{records: map[uuid.UUID]*domain.Notification{}}
}

func (s *stubNotificationStore) Create(_ context.Context, n domain.Notification) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	n.ID = id
	s.records[id] = &n
	return id, nil
}

func (s *stubNotificationStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.DeliveryStatus, errorMessage, slackMessageID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.DeliveryStatus = status
	if errorMessage != nil {
		n.ErrorMessage = errorMessage
	}
	if slackMessageID != nil {
		n.SlackMessageID = slackMessageID
	}
	return nil
}

func (s *stubNotificationStore) MergeMetadata(context.Context, uuid.UUID, domain.Metadata) error {
	return nil
}

func (s *stubNotificationStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *n
	return &copied, nil
}

func (s *stubNotificationStore) History(context.Context, domain.NotificationFilter) ([]domain.Notification, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, 0, len(s.records))
	for _, n := range s.records {
		out = append(out, *n)
	}
	return out, len(out), nil
}

func (s *stubNotificationStore) ListFailed(context.Context, int, int) ([]domain.Notification, error) {
	return nil, nil
}

func (s *stubNotificationStore) IncrementRetry(context.Context, uuid.UUID) error {
	return nil
}

func (s *stubNotificationStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// stubMessaging is an always-connected MessagingIntegration.
type stubMessaging struct {
	channel string
}

func (m *stubMessaging) IntegrationStatus(context.Context, uuid.UUID) (domain.IntegrationStatus, error) {
	return domain.IntegrationStatus{Connected: true, ChannelID: &m.channel}, nil
}

func (m *stubMessaging) SendMessage(context.Context, uuid.UUID, string, string) (string, error) {
	return "1724300000.000200", nil
}

func newNotificationTestServer(store *stubNotificationStore) *echo.Echo {
	e := newTestServer()
	svc := service.NewNotificationService(store, &stubMessaging{channel: "C123"})
	NewNotificationHandler(svc).Register(e.Group("/api/v1/notifications"))
	return e
}

func TestNotificationSendAccepted(t *testing.T) {
	store := newStubNotificationStore()
	srv := newNotificationTestServer(store)

	body := `{
		"user_id": "` + uuid.NewString() + `",
		"notification_type": "system_alert",
		"message_content": "Disk usage above 90%"
	}`
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/notifications/send", body)

	require.Equal(t, http.StatusAccepted, rec.Code)
	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "delivered", data["delivery_status"])
	assert.Equal(t, 1, store.count())
}

func TestNotificationSendRejectsUnknownType(t *testing.T) {
	store := newStubNotificationStore()
	srv := newNotificationTestServer(store)

	body := `{
		"user_id": "` + uuid.NewString() + `",
		"notification_type": "bogus_event",
		"message_content": "should never be stored"
	}`
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/notifications/send", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	apiErr := envelope["error"].(map[string]any)
	assert.Equal(t, "unknown_event_type", apiErr["code"])
	assert.Equal(t, 0, store.count(), "rejected sends must not create a record")
}
