package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Abhishek-erlin/slack-integration/internal/cache"
	"github.com/Abhishek-erlin/slack-integration/internal/domain"
	"github.com/Abhishek-erlin/slack-integration/internal/slack"
)

// TokenStore defines the Slack integration data access consumed by
// SlackService.
type TokenStore interface {
	SaveTokens(ctx context.Context, integration domain.SlackIntegration) error
	GetTokens(ctx context.Context, userID uuid.UUID) (*domain.SlackIntegration, error)
	UpdateChannel(ctx context.Context, userID uuid.UUID, channelID string) error
	DeleteTokens(ctx context.Context, userID uuid.UUID) error
}

// SlackAPI is the part of the Slack Web API the service calls.
type SlackAPI interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*slack.TokenData, error)
	PostMessage(ctx context.Context, accessToken, channel, text string) (string, error)
}

// SlackService owns the OAuth flow and message transport for Slack
// workspaces.
type SlackService struct {
	tokens   TokenStore
	api      SlackAPI
	states   cache.Store
	stateTTL time.Duration
}

// NewSlackService creates a new SlackService. The state store must be shared
// across handler instances so concurrent callbacks see the same state
// tokens.
func NewSlackService(tokens TokenStore, api SlackAPI, states cache.Store, stateTTL time.Duration) *SlackService {
	return &SlackService{
		tokens:   tokens,
		api:      api,
		states:   states,
		stateTTL: stateTTL,
	}
}

// OAuthStart generates the Slack authorization URL and a CSRF state bound to
// the user for the configured TTL.
func (s *SlackService) OAuthStart(userID uuid.UUID) (oauthURL, state string, err error) {
	state, err = generateState()
	if err != nil {
		return "", "", fmt.Errorf("generate oauth state: %w", err)
	}

	s.states.Put(state, userID.String(), s.stateTTL)
	return s.api.AuthCodeURL(state), state, nil
}

// OAuthCallback validates the state, exchanges the authorization code and
// persists the workspace tokens. It returns the connected integration.
func (s *SlackService) OAuthCallback(ctx context.Context, code, state string) (*domain.SlackIntegration, error) {
	storedUserID, ok := s.states.Get(state)
	if !ok {
		return nil, fmt.Errorf("%w: invalid or expired state parameter", domain.ErrInvalidInput)
	}

	userID, err := uuid.Parse(storedUserID)
	if err != nil {
		s.states.Delete(state)
		return nil, fmt.Errorf("%w: malformed user id in state", domain.ErrInvalidInput)
	}

	tokenData, err := s.api.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	integration := domain.SlackIntegration{
		UserID:       userID,
		SlackUserID:  tokenData.SlackUserID,
		TeamID:       tokenData.TeamID,
		TeamName:     tokenData.TeamName,
		BotUserID:    tokenData.BotUserID,
		AccessToken:  tokenData.AccessToken,
		RefreshToken: tokenData.RefreshToken,
		Scope:        tokenData.Scope,
	}
	if err := s.tokens.SaveTokens(ctx, integration); err != nil {
		return nil, fmt.Errorf("save slack tokens: %w", err)
	}

	s.states.Delete(state)
	slog.Info("slack integration connected", "user_id", userID, "team", tokenData.TeamName)
	return &integration, nil
}

// IntegrationStatus reports whether the user has a usable Slack connection.
// A missing integration is a normal answer, not an error.
func (s *SlackService) IntegrationStatus(ctx context.Context, userID uuid.UUID) (domain.IntegrationStatus, error) {
	integration, err := s.tokens.GetTokens(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.IntegrationStatus{Connected: false}, nil
		}
		return domain.IntegrationStatus{}, fmt.Errorf("check integration status: %w", err)
	}

	connectedAt := integration.CreatedAt
	return domain.IntegrationStatus{
		Connected:   true,
		TeamName:    integration.TeamName,
		SlackUserID: integration.SlackUserID,
		ChannelID:   integration.ChannelID,
		ConnectedAt: &connectedAt,
	}, nil
}

// SendMessage delivers text to a Slack channel using the user's stored
// tokens and returns the Slack message id.
func (s *SlackService) SendMessage(ctx context.Context, userID uuid.UUID, text, channelID string) (string, error) {
	integration, err := s.tokens.GetTokens(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("no Slack integration found, connect your workspace first")
		}
		return "", fmt.Errorf("load slack tokens: %w", err)
	}

	target := channelID
	if target == "" {
		if integration.ChannelID == nil || *integration.ChannelID == "" {
			return "", fmt.Errorf("no channel specified, set a default channel or provide one")
		}
		target = *integration.ChannelID
	}

	messageID, err := s.api.PostMessage(ctx, integration.AccessToken, target, text)
	if err != nil {
		if errors.Is(err, slack.ErrInvalidAuth) {
			return "", fmt.Errorf("Slack integration expired, reconnect your workspace")
		}
		return "", err
	}
	return messageID, nil
}

// UpdateDefaultChannel sets the channel used when a notification carries no
// override.
func (s *SlackService) UpdateDefaultChannel(ctx context.Context, userID uuid.UUID, channelID string) error {
	return s.tokens.UpdateChannel(ctx, userID, channelID)
}

// Disconnect removes the user's Slack integration.
func (s *SlackService) Disconnect(ctx context.Context, userID uuid.UUID) error {
	return s.tokens.DeleteTokens(ctx, userID)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
