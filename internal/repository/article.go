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

// ArticleRepository tracks proxied scraping and content-generation jobs.
type ArticleRepository struct {
	db *sqlx.DB
}

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Create inserts a pending job and returns its id.
func (r *ArticleRepository) Create(ctx context.Context, job domain.ArticleJob) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO article_jobs (id, user_id, keyword, url, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())`,
		id, job.UserID, job.Keyword, job.URL, domain.ArticleJobPending)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert article job: %w", err)
	}
	return id, nil
}

// MarkRunning moves a job to running and records the attempt count.
func (r *ArticleRepository) MarkRunning(ctx context.Context, id uuid.UUID, attempts int) error {
	return r.update(ctx,
		`UPDATE article_jobs SET status = $2, attempts = $3 WHERE id = $1`,
		id, domain.ArticleJobRunning, attempts)
}

// Complete stores the provider result and marks the job completed.
func (r *ArticleRepository) Complete(ctx context.Context, id uuid.UUID, result string) error {
	return r.update(ctx,
		`UPDATE article_jobs SET status = $2, result = $3, completed_at = NOW() WHERE id = $1`,
		id, domain.ArticleJobCompleted, result)
}

// Fail marks the job failed with the provider error.
func (r *ArticleRepository) Fail(ctx context.Context, id uuid.UUID, errMsg string) error {
	return r.update(ctx,
		`UPDATE article_jobs SET status = $2, error_msg = $3, completed_at = NOW() WHERE id = $1`,
		id, domain.ArticleJobFailed, errMsg)
}

// GetByID retrieves a single job.
func (r *ArticleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ArticleJob, error) {
	var job domain.ArticleJob
	err := r.db.GetContext(ctx, &job,
		`SELECT id, user_id, keyword, url, status, attempts, result, error_msg, created_at, completed_at
		 FROM article_jobs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find article job %s: %w", id, err)
	}
	return &job, nil
}

func (r *ArticleRepository) update(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update article job: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update article job: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
