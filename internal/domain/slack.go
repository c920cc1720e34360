package domain

import (
	"time"

	"github.com/google/uuid"
)

// SlackIntegration holds a user's Slack workspace connection. Access and
// refresh tokens are sealed before they reach the database.
type SlackIntegration struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	SlackUserID  string    `json:"slack_user_id" db:"slack_user_id"`
	TeamID       string    `json:"team_id" db:"team_id"`
	TeamName     string    `json:"team_name" db:"team_name"`
	BotUserID    string    `json:"bot_user_id" db:"bot_user_id"`
	AccessToken  string    `json:"-" db:"access_token"`
	RefreshToken *string   `json:"-" db:"refresh_token"`
	Scope        string    `json:"scope" db:"scope"`
	ChannelID    *string   `json:"channel_id,omitempty" db:"channel_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IntegrationStatus describes whether a user has a usable Slack connection.
type IntegrationStatus struct {
	Connected   bool       `json:"connected"`
	TeamName    string     `json:"team_name,omitempty"`
	SlackUserID string     `json:"slack_user_id,omitempty"`
	ChannelID   *string    `json:"channel_id,omitempty"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
}
