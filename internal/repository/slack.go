package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Abhishek-erlin/slack-integration/internal/domain"
)

// SlackRepository stores Slack workspace integrations. Access and refresh
// tokens are sealed before insert and unsealed on read.
type SlackRepository struct {
	db     *sqlx.DB
	sealer *Sealer
}

// NewSlackRepository creates a new SlackRepository.
func NewSlackRepository(db *sqlx.DB, sealer *Sealer) *SlackRepository {
	return &SlackRepository{db: db, sealer: sealer}
}

// SaveTokens upserts a user's Slack integration, replacing any previous
// connection for the same user.
func (r *SlackRepository) SaveTokens(ctx context.Context, integration domain.SlackIntegration) error {
	sealedAccess, err := r.sealer.Seal(integration.AccessToken)
	if err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}

	var sealedRefresh *string
	if integration.RefreshToken != nil {
		sealed, err := r.sealer.Seal(*integration.RefreshToken)
		if err != nil {
			return fmt.Errorf("seal refresh token: %w", err)
		}
		sealedRefresh = &sealed
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO slack_integrations
		   (user_id, slack_user_id, team_id, team_name, bot_user_id,
		    access_token, refresh_token, scope, channel_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id)
		 DO UPDATE SET slack_user_id = EXCLUDED.slack_user_id,
		               team_id = EXCLUDED.team_id,
		               team_name = EXCLUDED.team_name,
		               bot_user_id = EXCLUDED.bot_user_id,
		               access_token = EXCLUDED.access_token,
		               refresh_token = EXCLUDED.refresh_token,
		               scope = EXCLUDED.scope,
		               channel_id = EXCLUDED.channel_id,
		               updated_at = NOW()`,
		integration.UserID, integration.SlackUserID, integration.TeamID,
		integration.TeamName, integration.BotUserID, sealedAccess,
		sealedRefresh, integration.Scope, integration.ChannelID)
	if err != nil {
		return fmt.Errorf("upsert slack integration: %w", err)
	}
	return nil
}

// GetTokens retrieves a user's Slack integration with tokens unsealed.
func (r *SlackRepository) GetTokens(ctx context.Context, userID uuid.UUID) (*domain.SlackIntegration, error) {
	var integration domain.SlackIntegration
	err := r.db.GetContext(ctx, &integration,
		`SELECT user_id, slack_user_id, team_id, team_name, bot_user_id,
		        access_token, refresh_token, scope, channel_id, created_at, updated_at
		 FROM slack_integrations WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find slack integration for user %s: %w", userID, err)
	}

	access, err := r.sealer.Open(integration.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("unseal access token for user %s: %w", userID, err)
	}
	integration.AccessToken = access

	if integration.RefreshToken != nil {
		refresh, err := r.sealer.Open(*integration.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("unseal refresh token for user %s: %w", userID, err)
		}
		integration.RefreshToken = &refresh
	}

	return &integration, nil
}

// UpdateChannel sets the default notification channel for a user.
func (r *SlackRepository) UpdateChannel(ctx context.Context, userID uuid.UUID, channelID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE slack_integrations SET channel_id = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, channelID)
	if err != nil {
		return fmt.Errorf("update default channel for user %s: %w", userID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update default channel for user %s: %w", userID, err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteTokens removes a user's Slack integration.
func (r *SlackRepository) DeleteTokens(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM slack_integrations WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete slack integration for user %s: %w", userID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slack integration for user %s: %w", userID, err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
