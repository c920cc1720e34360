package domain

import (
	"time"

	"github.com/google/uuid"
)

// ArticleJobStatus represents the state of a proxied content-generation job.
type ArticleJobStatus string

const (
	ArticleJobPending   ArticleJobStatus = "pending"
	ArticleJobRunning   ArticleJobStatus = "running"
	ArticleJobCompleted ArticleJobStatus = "completed"
	ArticleJobFailed    ArticleJobStatus = "failed"
)

// ArticleJob tracks one scraping or content-generation request proxied to an
// external provider.
type ArticleJob struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	UserID      *uuid.UUID       `json:"user_id,omitempty" db:"user_id"`
	Keyword     string           `json:"keyword" db:"keyword"`
	URL         *string          `json:"url,omitempty" db:"url"`
	Status      ArticleJobStatus `json:"status" db:"status"`
	Attempts    int              `json:"attempts" db:"attempts"`
	Result      *string          `json:"result,omitempty" db:"result"`
	ErrorMsg    *string          `json:"error_msg,omitempty" db:"error_msg"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
}
