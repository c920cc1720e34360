package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Abhishek-erlin/slack-integration/db"
	"github.com/Abhishek-erlin/slack-integration/internal/cache"
	"github.com/Abhishek-erlin/slack-integration/internal/config"
	"github.com/Abhishek-erlin/slack-integration/internal/handler"
	"github.com/Abhishek-erlin/slack-integration/internal/notification"
	"github.com/Abhishek-erlin/slack-integration/internal/repository"
	"github.com/Abhishek-erlin/slack-integration/internal/scraper"
	"github.com/Abhishek-erlin/slack-integration/internal/service"
	"github.com/Abhishek-erlin/slack-integration/internal/slack"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	conn, err := sqlx.Connect("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer conn.Close()

	conn.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.Migrate(conn.DB); err != nil {
		return err
	}

	sealer, err := repository.NewSealer(cfg.Security.SealKey)
	if err != nil {
		return fmt.Errorf("init token sealer: %w", err)
	}

	notificationRepo := repository.NewNotificationRepository(conn)
	slackRepo := repository.NewSlackRepository(conn, sealer)
	articleRepo := repository.NewArticleRepository(conn)

	slackClient := slack.NewClient(cfg.Slack.ClientID, cfg.Slack.ClientSecret, cfg.Slack.RedirectURI)
	scraperClient := scraper.NewClient(scraper.Config{
		ScraperURL:      cfg.Articles.ScraperURL,
		ScraperAPIKey:   cfg.Articles.ScraperAPIKey,
		GeneratorURL:    cfg.Articles.GeneratorURL,
		GeneratorAPIKey: cfg.Articles.GeneratorAPIKey,
		RequestTimeout:  cfg.Articles.RequestTimeout,
		MaxAttempts:     cfg.Articles.MaxRetries,
	})

	slackService := service.NewSlackService(slackRepo, slackClient, cache.NewMemoryStore(), cfg.Slack.StateTTL)
	notificationService := service.NewNotificationService(notificationRepo, slackService)
	triggerService := service.NewTriggerService(notification.NewRegistry(), notificationService)
	articleService := service.NewArticleService(articleRepo, scraperClient)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if cfg.Retry.Interval > 0 {
		go retrySweep(sweepCtx, notificationService, cfg.Retry)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewAppValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.CORS.AllowedOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))
	e.Use(handler.RequestLogger())

	handler.NewHealthHandler(conn).Register(e)

	api := e.Group("/api/v1")
	serviceAuth := handler.ServiceAuth(cfg.Security.ServiceJWTSecret)

	handler.NewSlackHandler(slackService).Register(api.Group("/slack"))
	handler.NewTriggerHandler(triggerService).Register(api.Group("/triggers", serviceAuth))
	handler.NewNotificationHandler(notificationService).Register(api.Group("/notifications", serviceAuth))
	handler.NewArticleHandler(articleService).Register(api.Group("/articles"))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := e.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped unexpectedly", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

// retrySweep periodically re-attempts failed notifications that still have
// retry budget.
func retrySweep(ctx context.Context, notifications *service.NotificationService, cfg config.RetryConfig) {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			delivered, err := notifications.RetryFailed(ctx, cfg.MaxRetries, cfg.BatchSize)
			if err != nil {
				slog.Error("retry sweep failed", "error", err)
				continue
			}
			if delivered > 0 {
				slog.Info("retry sweep recovered notifications", "delivered", delivered)
			}
		}
	}
}
