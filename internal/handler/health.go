package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves the root health probe.
type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Register mounts the root health route.
func (h *HealthHandler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
}

// Health reports service liveness and database reachability.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, Envelope{Data: map[string]string{
			"status":   "degraded",
			"database": "unreachable",
		}})
	}
	return JSON(c, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}
