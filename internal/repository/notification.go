package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Abhishek-erlin/slack-integration/internal/domain"
)

const notificationColumns = `id, user_id, website_id, channel_id, event_type, message_content,
	 priority, delivery_status, slack_message_id, error_message, retry_count, metadata,
	 created_at, updated_at, delivered_at`

// NotificationRepository is the append/update store for notification logs.
// It records every delivery attempt; rows are never deleted here.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create persists a new notification log entry and returns its generated id.
// The message content is immutable from this point on.
func (r *NotificationRepository) Create(ctx context.Context, n domain.Notification) (uuid.UUID, error) {
	id := uuid.New()
	status := n.DeliveryStatus
	if status == "" {
		status = domain.StatusQueued
	}
	priority := n.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notification_logs
		   (id, user_id, website_id, channel_id, event_type, message_content,
		    priority, delivery_status, error_message, metadata, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`,
		id, n.UserID, n.WebsiteID, n.ChannelID, n.EventType, n.MessageContent,
		priority, status, n.ErrorMessage, n.Metadata)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert notification log: %w", err)
	}
	return id, nil
}

// UpdateStatus transitions a notification's delivery status. The delivered
// timestamp is set only when transitioning to delivered. Unknown ids fail
// with domain.ErrNotFound.
func (r *NotificationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DeliveryStatus, errorMessage, slackMessageID *string) error {
	builder := sq.Update("notification_logs").
		Set("delivery_status", status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)

	if status == domain.StatusDelivered {
		builder = builder.Set("delivered_at", sq.Expr("NOW()"))
	}
	if errorMessage != nil {
		builder = builder.Set("error_message", *errorMessage)
	}
	if slackMessageID != nil {
		builder = builder.Set("slack_message_id", *slackMessageID)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build status update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update notification %s status: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update notification %s status: %w", id, err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MergeMetadata shallow-merges partial into the stored metadata. Existing
// keys absent from partial are preserved; keys present in both are
// overwritten by partial.
func (r *NotificationRepository) MergeMetadata(ctx context.Context, id uuid.UUID, partial domain.Metadata) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notification_logs
		 SET metadata = COALESCE(metadata, '{}'::jsonb) || $2,
		     updated_at = NOW()
		 WHERE id = $1`,
		id, partial)
	if err != nil {
		return fmt.Errorf("merge notification %s metadata: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("merge notification %s metadata: %w", id, err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementRetry bumps the retry counter and moves the record to retrying,
// on behalf of an external retry scheduler.
func (r *NotificationRepository) IncrementRetry(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notification_logs
		 SET retry_count = retry_count + 1,
		     delivery_status = $2,
		     updated_at = NOW()
		 WHERE id = $1`,
		id, domain.StatusRetrying)
	if err != nil {
		return fmt.Errorf("increment notification %s retry: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment notification %s retry: %w", id, err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID retrieves a single notification log entry.
func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.GetContext(ctx, &n,
		`SELECT `+notificationColumns+` FROM notification_logs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find notification %s: %w", id, err)
	}
	return &n, nil
}

// History returns notification log entries matching the filter, newest
// first, along with the total match count for pagination.
func (r *NotificationRepository) History(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	where := sq.And{}
	if filter.UserID != nil {
		where = append(where, sq.Eq{"user_id": *filter.UserID})
	}
	if filter.EventType != nil {
		where = append(where, sq.Eq{"event_type": *filter.EventType})
	}
	if filter.Status != nil {
		where = append(where, sq.Eq{"delivery_status": *filter.Status})
	}

	countBuilder := sq.Select("COUNT(*)").From("notification_logs").PlaceholderFormat(sq.Dollar)
	listBuilder := sq.Select(notificationColumns).From("notification_logs").
		OrderBy("created_at DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		PlaceholderFormat(sq.Dollar)
	if len(where) > 0 {
		countBuilder = countBuilder.Where(where)
		listBuilder = listBuilder.Where(where)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build history count: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count notification history: %w", err)
	}

	listQuery, listArgs, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build history query: %w", err)
	}
	notifications := []domain.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, listQuery, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list notification history: %w", err)
	}

	return notifications, total, nil
}

// ListFailed returns failed notifications that still have retry budget,
// oldest first, for an external retry scheduler.
func (r *NotificationRepository) ListFailed(ctx context.Context, maxRetries, limit int) ([]domain.Notification, error) {
	if limit < 1 {
		limit = 50
	}

	notifications := []domain.Notification{}
	err := r.db.SelectContext(ctx, &notifications,
		`SELECT `+notificationColumns+`
		 FROM notification_logs
		 WHERE delivery_status = $1 AND retry_count < $2
		 ORDER BY updated_at ASC
		 LIMIT $3`,
		domain.StatusFailed, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("list failed notifications: %w", err)
	}
	return notifications, nil
}
