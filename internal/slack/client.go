// Package slack wraps the two pieces of the Slack Web API this service
// consumes: the OAuth v2 authorization-code exchange and chat.postMessage.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const defaultBaseURL = "https://slack.com/api"

// ErrInvalidAuth is returned when Slack rejects a stored token, which means
// the user has to reconnect their workspace.
var ErrInvalidAuth = errors.New("slack token is no longer valid")

// Scopes requested during the OAuth flow.
var Scopes = []string{
	"chat:write",
	"channels:read",
	"users:read",
	"groups:read",
	"im:read",
	"mpim:read",
}

// TokenData holds the fields of a successful oauth.v2.access response.
type TokenData struct {
	SlackUserID  string
	TeamID       string
	TeamName     string
	BotUserID    string
	AccessToken  string
	RefreshToken *string
	Scope        string
}

// Client is a Slack Web API client bound to one OAuth application.
type Client struct {
	oauth   *oauth2.Config
	http    *http.Client
	baseURL string
}

// NewClient creates a Client for the given OAuth application credentials.
func NewClient(clientID, clientSecret, redirectURI string) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://slack.com/oauth/v2/authorize",
				TokenURL: defaultBaseURL + "/oauth.v2.access",
			},
			Scopes:      Scopes,
			RedirectURL: redirectURI,
		},
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultBaseURL,
	}
}

// AuthCodeURL returns the Slack authorization URL carrying the CSRF state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for workspace tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*TokenData, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("slack token exchange: %w", err)
	}

	data := &TokenData{
		AccessToken: token.AccessToken,
	}
	if scope, ok := token.Extra("scope").(string); ok {
		data.Scope = scope
	}
	if botUserID, ok := token.Extra("bot_user_id").(string); ok {
		data.BotUserID = botUserID
	}
	if refresh := token.RefreshToken; refresh != "" {
		data.RefreshToken = &refresh
	}
	if team, ok := token.Extra("team").(map[string]any); ok {
		data.TeamID, _ = team["id"].(string)
		data.TeamName, _ = team["name"].(string)
	}
	if authed, ok := token.Extra("authed_user").(map[string]any); ok {
		data.SlackUserID, _ = authed["id"].(string)
	}

	if data.TeamID == "" {
		return nil, fmt.Errorf("slack token exchange: response missing team")
	}
	return data, nil
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	TS    string `json:"ts"`
	Error string `json:"error"`
}

// PostMessage sends text to a channel via chat.postMessage and returns the
// Slack message timestamp, which doubles as the message identifier.
func (c *Client) PostMessage(ctx context.Context, accessToken, channel, text string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"channel": channel,
		"text":    text,
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call chat.postMessage: %w", err)
	}
	defer resp.Body.Close()

	var body postMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode chat.postMessage response: %w", err)
	}

	if !body.OK {
		if body.Error == "invalid_auth" || body.Error == "token_revoked" || body.Error == "account_inactive" {
			return "", ErrInvalidAuth
		}
		return "", fmt.Errorf("chat.postMessage failed: %s", body.Error)
	}
	return body.TS, nil
}
