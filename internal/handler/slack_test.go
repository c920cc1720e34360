package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek-erlin/slack-integration/internal/cache"
	"github.com/Abhishek-erlin/slack-integration/internal/domain"
	"github.com/Abhishek-erlin/slack-integration/internal/service"
	"github.com/Abhishek-erlin/slack-integration/internal/slack"
)

type memTokenStore struct {
	integrations map[uuid.UUID]domain.SlackIntegration
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{integrations: map[uuid.UUID]domain.SlackIntegration{}}
}

func (m *memTokenStore) SaveTokens(_ context.Context, integration domain.SlackIntegration) error {
	m.integrations[integration.UserID] = integration
	return nil
}

func (m *memTokenStore) GetTokens(_ context.Context, userID uuid.UUID) (*domain.SlackIntegration, error) {
	integration, ok := m.integrations[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &integration, nil
}

func (m *memTokenStore) UpdateChannel(_ context.Context, userID uuid.UUID, channelID string) error {
	integration, ok := m.integrations[userID]
	if !ok {
		return domain.ErrNotFound
	}
	integration.ChannelID = &channelID
	m.integrations[userID] = integration
	return nil
}

func (m *memTokenStore) DeleteTokens(_ context.Context, userID uuid.UUID) error {
	if _, ok := m.integrations[userID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.integrations, userID)
	return nil
}

type stubSlackAPI struct {
	exchangeErr error
	posted      []string
}

func (s *stubSlackAPI) AuthCodeURL(state string) string {
	return "https://slack.com/oauth/v2/authorize?state=" + state
}

func (s *stubSlackAPI) Exchange(_ context.Context, code string) (*slack.TokenData, error) {
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}
	return &slack.TokenData{
		AccessToken: "xoxb-" + code,
		TeamID:      "T123",
		TeamName:    "Acme",
		SlackUserID: "U456",
	}, nil
}

func (s *stubSlackAPI) PostMessage(_ context.Context, _, channel, text string) (string, error) {
	s.posted = append(s.posted, channel+": "+text)
	return "1724300000.000100", nil
}

func newSlackTestService() (*service.SlackService, *memTokenStore, *stubSlackAPI) {
	tokens := newMemTokenStore()
	api := &stubSlackAPI{}
	svc := service.NewSlackService(tokens, api, cache.NewMemoryStore(), 10*time.Minute)
	return svc, tokens, api
}

func TestSlackOAuthFlow(t *testing.T) {
	svc, tokens, _ := newSlackTestService()
	e := newTestServer()
	NewSlackHandler(svc).Register(e.Group("/api/v1/slack"))

	userID := uuid.New()
	rec := doRequest(t, e, http.MethodGet, "/api/v1/slack/oauth/start?user_id="+userID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	state := data["state"].(string)
	require.NotEmpty(t, state)
	authURL := data["authorization_url"].(string)
	assert.Contains(t, authURL, "state="+url.QueryEscape(state))

	rec = doRequest(t, e, http.MethodGet,
		"/api/v1/slack/oauth/callback?code=abc&state="+url.QueryEscape(state), "")
	require.Equal(t, http.StatusOK, rec.Code)

	envelope = decodeEnvelope(t, rec)
	data = envelope["data"].(map[string]any)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "Acme", data["team_name"])

	saved, ok := tokens.integrations[userID]
	require.True(t, ok)
	assert.Equal(t, "T123", saved.TeamID)
}

func TestSlackOAuthCallbackForgedState(t *testing.T) {
	svc, _, _ := newSlackTestService()
	e := newTestServer()
	NewSlackHandler(svc).Register(e.Group("/api/v1/slack"))

	rec := doRequest(t, e, http.MethodGet, "/api/v1/slack/oauth/callback?code=abc&state=forged", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	apiErr := envelope["error"].(map[string]any)
	assert.Equal(t, "invalid_input", apiErr["code"])
}

func TestSlackOAuthCallbackMissingParams(t *testing.T) {
	svc, _, _ := newSlackTestService()
	e := newTestServer()
	NewSlackHandler(svc).Register(e.Group("/api/v1/slack"))

	rec := doRequest(t, e, http.MethodGet, "/api/v1/slack/oauth/callback", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSlackSendMessage(t *testing.T) {
	svc, tokens, api := newSlackTestService()
	e := newTestServer()
	NewSlackHandler(svc).Register(e.Group("/api/v1/slack"))

	userID := uuid.New()
	channel := "C123"
	tokens.integrations[userID] = domain.SlackIntegration{
		UserID:      userID,
		AccessToken: "xoxb-token",
		TeamID:      "T123",
		ChannelID:   &channel,
	}

	body := `{"user_id": "` + userID.String() + `", "message": "hello"}`
	rec := doRequest(t, e, http.MethodPost, "/api/v1/slack/send-message", body)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "1724300000.000100", data["message_ts"])
	require.Len(t, api.posted, 1)
	assert.Equal(t, "C123: hello", api.posted[0])
}

func TestSlackStatusNotConnected(t *testing.T) {
	svc, _, _ := newSlackTestService()
	e := newTestServer()
	NewSlackHandler(svc).Register(e.Group("/api/v1/slack"))

	rec := doRequest(t, e, http.MethodGet, "/api/v1/slack/status?user_id="+uuid.NewString(), "")

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, false, data["connected"])
}

func TestSlackUpdateChannelAndDisconnect(t *testing.T) {
	svc, tokens, _ := newSlackTestService()
	e := newTestServer()
	NewSlackHandler(svc).Register(e.Group("/api/v1/slack"))

	userID := uuid.New()
	tokens.integrations[userID] = domain.SlackIntegration{
		UserID:      userID,
		AccessToken: "xoxb-token",
		TeamID:      "T123",
	}

	body := `{"user_id": "` + userID.String() + `", "channel_id": "C777"}`
	rec := doRequest(t, e, http.MethodPut, "/api/v1/slack/channel", body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, tokens.integrations[userID].ChannelID)
	assert.Equal(t, "C777", *tokens.integrations[userID].ChannelID)

	rec = doRequest(t, e, http.MethodDelete, "/api/v1/slack/disconnect?user_id="+userID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, tokens.integrations)

	rec = doRequest(t, e, http.MethodDelete, "/api/v1/slack/disconnect?user_id="+userID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
