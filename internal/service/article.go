package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Abhishek-erlin/slack-integration/internal/domain"
	"github.com/Abhishek-erlin/slack-integration/internal/scraper"
)

// ArticleJobStore tracks proxied article jobs.
type ArticleJobStore interface {
	Create(ctx context.Context, job domain.ArticleJob) (uuid.UUID, error)
	MarkRunning(ctx context.Context, id uuid.UUID, attempts int) error
	Complete(ctx context.Context, id uuid.UUID, result string) error
	Fail(ctx context.Context, id uuid.UUID, errMsg string) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ArticleJob, error)
}

// ContentProvider is the external scraping/generation capability.
type ContentProvider interface {
	Scrape(ctx context.Context, url string) (*scraper.ScrapeResult, error)
	Generate(ctx context.Context, req scraper.GenerateRequest) (*scraper.GenerateResult, error)
}

// ArticleService proxies scraping and content-generation jobs to external
// providers and tracks each job's outcome.
type ArticleService struct {
	jobs     ArticleJobStore
	provider ContentProvider
}

// NewArticleService creates a new ArticleService.
func NewArticleService(jobs ArticleJobStore, provider ContentProvider) *ArticleService {
	return &ArticleService{jobs: jobs, provider: provider}
}

// Scrape extracts article content from url via the scraping provider.
func (s *ArticleService) Scrape(ctx context.Context, userID *uuid.UUID, url string) (*scraper.ScrapeResult, uuid.UUID, error) {
	jobID, err := s.jobs.Create(ctx, domain.ArticleJob{
		UserID:  userID,
		Keyword: "scrape",
		URL:     &url,
	})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("create scrape job: %w", err)
	}

	if err := s.jobs.MarkRunning(ctx, jobID, 1); err != nil {
		return nil, uuid.Nil, fmt.Errorf("mark scrape job running: %w", err)
	}

	result, err := s.provider.Scrape(ctx, url)
	if err != nil {
		if failErr := s.jobs.Fail(ctx, jobID, err.Error()); failErr != nil {
			slog.Error("failed to record scrape failure", "job_id", jobID, "error", failErr)
		}
		return nil, jobID, err
	}

	if err := s.jobs.Complete(ctx, jobID, result.Content); err != nil {
		slog.Error("failed to record scrape completion", "job_id", jobID, "error", err)
	}
	return result, jobID, nil
}

// Generate produces article content for a keyword via the generation
// provider.
func (s *ArticleService) Generate(ctx context.Context, userID *uuid.UUID, req scraper.GenerateRequest) (*scraper.GenerateResult, uuid.UUID, error) {
	var jobURL *string
	if req.URL != "" {
		jobURL = &req.URL
	}
	jobID, err := s.jobs.Create(ctx, domain.ArticleJob{
		UserID:  userID,
		Keyword: req.Keyword,
		URL:     jobURL,
	})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("create generation job: %w", err)
	}

	if err := s.jobs.MarkRunning(ctx, jobID, 1); err != nil {
		return nil, uuid.Nil, fmt.Errorf("mark generation job running: %w", err)
	}

	result, err := s.provider.Generate(ctx, req)
	if err != nil {
		if failErr := s.jobs.Fail(ctx, jobID, err.Error()); failErr != nil {
			slog.Error("failed to record generation failure", "job_id", jobID, "error", failErr)
		}
		return nil, jobID, err
	}

	if err := s.jobs.Complete(ctx, jobID, result.Content); err != nil {
		slog.Error("failed to record generation completion", "job_id", jobID, "error", err)
	}
	return result, jobID, nil
}

// Job returns a tracked article job.
func (s *ArticleService) Job(ctx context.Context, id uuid.UUID) (*domain.ArticleJob, error) {
	return s.jobs.GetByID(ctx, id)
}
