package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek-erlin/slack-integration/internal/domain"
	"github.com/Abhishek-erlin/slack-integration/internal/notification"
	"github.com/Abhishek-erlin/slack-integration/internal/service"
)

type fakeDispatcher struct {
	lastInput service.DispatchInput
	result    domain.DispatchResult
	err       error
	calls     int
}

func (f *fakeDispatcher) Send(_ context.Context, in service.DispatchInput) (domain.DispatchResult, error) {
	f.calls++
	f.lastInput = in
	if f.err != nil {
		return domain.DispatchResult{}, f.err
	}
	return f.result, nil
}

func newTestServer() *echo.Echo {
	e := echo.New()
	e.Validator = NewAppValidator()
	e.HTTPErrorHandler = HTTPErrorHandler
	return e
}

func doRequest(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestTriggerSendAccepted(t *testing.T) {
	id := uuid.New()
	dispatcher := &fakeDispatcher{result: domain.DispatchResult{
		Success:        true,
		Message:        "notification sent",
		NotificationID: &id,
		DeliveryStatus: domain.StatusDelivered,
	}}
	triggers := service.NewTriggerService(notification.NewRegistry(), dispatcher)

	e := newTestServer()
	NewTriggerHandler(triggers).Register(e.Group("/api/v1/triggers"))

	body := `{
		"user_id": "` + uuid.NewString() + `",
		"event_type": "audit_complete",
		"context": {"auditType": "technical", "websiteName": "example.com", "score": 85, "issuesCount": 3}
	}`
	rec := doRequest(t, e, http.MethodPost, "/api/v1/triggers/send", body)

	require.Equal(t, http.StatusAccepted, rec.Code)
	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "audit_complete", data["event_type"])
	assert.Equal(t, "delivered", data["delivery_status"])
	assert.Equal(t, id.String(), data["notification_id"])

	assert.Equal(t, 1, dispatcher.calls)
	assert.Equal(t,
		"Your technical audit for example.com is complete with a score of 85/100. Found 3 issues to review.",
		dispatcher.lastInput.Message)
}

func TestTriggerSendUnknownEventType(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	triggers := service.NewTriggerService(notification.NewRegistry(), dispatcher)

	e := newTestServer()
	NewTriggerHandler(triggers).Register(e.Group("/api/v1/triggers"))

	body := `{"user_id": "` + uuid.NewString() + `", "event_type": "nonsense"}`
	rec := doRequest(t, e, http.MethodPost, "/api/v1/triggers/send", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	apiErr := envelope["error"].(map[string]any)
	assert.Equal(t, "unknown_event_type", apiErr["code"])
	assert.Equal(t, 0, dispatcher.calls, "no dispatch should happen for unknown event types")
}

func TestTriggerSendInvalidUserID(t *testing.T) {
	triggers := service.NewTriggerService(notification.NewRegistry(), &fakeDispatcher{})

	e := newTestServer()
	NewTriggerHandler(triggers).Register(e.Group("/api/v1/triggers"))

	body := `{"user_id": "not-a-uuid", "event_type": "audit_complete"}`
	rec := doRequest(t, e, http.MethodPost, "/api/v1/triggers/send", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriggerSendStoreUnavailable(t *testing.T) {
	dispatcher := &fakeDispatcher{err: domain.ErrStoreUnavailable}
	triggers := service.NewTriggerService(notification.NewRegistry(), dispatcher)

	e := newTestServer()
	NewTriggerHandler(triggers).Register(e.Group("/api/v1/triggers"))

	body := `{"user_id": "` + uuid.NewString() + `", "event_type": "system_alert", "context": {"alertMessage": "disk full"}}`
	rec := doRequest(t, e, http.MethodPost, "/api/v1/triggers/send", body)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	envelope := decodeEnvelope(t, rec)
	apiErr := envelope["error"].(map[string]any)
	assert.Equal(t, "store_unavailable", apiErr["code"])
}

func TestTriggerSupportedEvents(t *testing.T) {
	triggers := service.NewTriggerService(notification.NewRegistry(), &fakeDispatcher{})

	e := newTestServer()
	NewTriggerHandler(triggers).Register(e.Group("/api/v1/triggers"))

	rec := doRequest(t, e, http.MethodGet, "/api/v1/triggers/supported-events", "")

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	assert.EqualValues(t, 6, data["count"])
	assert.Contains(t, data["event_types"], "audit_complete")
	assert.Contains(t, data["event_types"], "system_alert")
}

func TestTriggerHealth(t *testing.T) {
	triggers := service.NewTriggerService(notification.NewRegistry(), &fakeDispatcher{})

	e := newTestServer()
	NewTriggerHandler(triggers).Register(e.Group("/api/v1/triggers"))

	rec := doRequest(t, e, http.MethodGet, "/api/v1/triggers/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "healthy", data["status"])
}
