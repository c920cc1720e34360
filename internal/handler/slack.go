package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Abhishek-erlin/slack-integration/internal/domain"
	"github.com/Abhishek-erlin/slack-integration/internal/service"
)

// SlackHandler exposes the Slack OAuth flow and workspace operations.
type SlackHandler struct {
	slack *service.SlackService
}

func NewSlackHandler(slack *service.SlackService) *SlackHandler {
	return &SlackHandler{slack: slack}
}

// Register mounts the Slack routes on the given group.
func (h *SlackHandler) Register(g *echo.Group) {
	g.GET("/oauth/start", h.OAuthStart)
	g.GET("/oauth/callback", h.OAuthCallback)
	g.POST("/send-message", h.SendMessage)
	g.PUT("/channel", h.UpdateChannel)
	g.GET("/status", h.Status)
	g.DELETE("/disconnect", h.Disconnect)
	g.GET("/health", h.Health)
}

// OAuthStart generates the Slack authorization URL for a user.
func (h *SlackHandler) OAuthStart(c echo.Context) error {
	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return &domain.ValidationError{Field: "user_id", Message: "must be a valid UUID"}
	}

	url, state, err := h.slack.OAuthStart(userID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, map[string]string{
		"authorization_url": url,
		"state":             state,
	})
}

type oauthCallbackResponse struct {
	Success  bool   `json:"success"`
	TeamName string `json:"team_name"`
	TeamID   string `json:"team_id"`
}

// OAuthCallback completes the OAuth flow. Slack redirects here with the
// authorization code and the state issued by OAuthStart.
func (h *SlackHandler) OAuthCallback(c echo.Context) error {
	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return &domain.ValidationError{Field: "code", Message: "code and state are required"}
	}
	if errParam := c.QueryParam("error"); errParam != "" {
		return echo.NewHTTPError(http.StatusBadRequest, "authorization denied: "+errParam)
	}

	integration, err := h.slack.OAuthCallback(c.Request().Context(), code, state)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, oauthCallbackResponse{
		Success:  true,
		TeamName: integration.TeamName,
		TeamID:   integration.TeamID,
	})
}

type sendMessageRequest struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	Message   string `json:"message" validate:"required"`
	ChannelID string `json:"channel_id"`
}

// SendMessage posts an ad-hoc message to the user's workspace.
func (h *SlackHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return &domain.ValidationError{Field: "user_id", Message: "must be a valid UUID"}
	}

	ts, err := h.slack.SendMessage(c.Request().Context(), userID, req.Message, req.ChannelID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, map[string]any{
		"success":    true,
		"message_ts": ts,
	})
}

type updateChannelRequest struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	ChannelID string `json:"channel_id" validate:"required"`
}

// UpdateChannel sets the default notification channel for a user.
func (h *SlackHandler) UpdateChannel(c echo.Context) error {
	var req updateChannelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return &domain.ValidationError{Field: "user_id", Message: "must be a valid UUID"}
	}

	if err := h.slack.UpdateDefaultChannel(c.Request().Context(), userID, req.ChannelID); err != nil {
		return err
	}
	return JSON(c, http.StatusOK, map[string]bool{"success": true})
}

// Status reports whether the user has a connected workspace.
func (h *SlackHandler) Status(c echo.Context) error {
	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return &domain.ValidationError{Field: "user_id", Message: "must be a valid UUID"}
	}

	status, err := h.slack.IntegrationStatus(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, status)
}

// Disconnect removes the user's workspace connection and stored tokens.
func (h *SlackHandler) Disconnect(c echo.Context) error {
	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return &domain.ValidationError{Field: "user_id", Message: "must be a valid UUID"}
	}

	if err := h.slack.Disconnect(c.Request().Context(), userID); err != nil {
		return err
	}
	return JSON(c, http.StatusOK, map[string]bool{"success": true})
}

// Health reports liveness of the Slack integration surface.
func (h *SlackHandler) Health(c echo.Context) error {
	return JSON(c, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "slack-integration",
	})
}
