package inapp

import (
	"context"
	"fmt"
	"time"

	"crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreate      = "notification.inapp.repository.create"
	opList        = "notification.inapp.repository.list"
	opCountUnread = "notification.inapp.repository.count_unread"
	opMarkRead    = "notification.inapp.repository.mark_read"
	opMarkAllRead = "notification.inapp.repository.mark_all_read"
	opDelete      = "notification.inapp.repository.delete"

	errRepoNotConfigured = "in-app notification repository not configured"
	errNotFound          = "notification not found"

	notificationColumns = `id, title, content, resource_id, resource_type, category, is_read, read_at, created_at`
)

type Notification struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	ResourceID   *uuid.UUID `json:"resourceId,omitempty"`
	ResourceType *string    `json:"resourceType,omitempty"`
	Category     string     `json:"category"`
	IsRead       bool       `json:"isRead"`
	ReadAt       *time.Time `json:"readAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type CreateParams struct {
	Title        string
	Content      string
	ResourceID   *uuid.UUID
	ResourceType *string
	Category     string
}

// Store is the persistence contract of the notification feed.
type Store interface {
	Create(ctx context.Context, p CreateParams) (Notification, error)
	List(ctx context.Context, limit, offset int) ([]Notification, int, error)
	CountUnread(ctx context.Context, resourceTypes []string) (int, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Repository struct {
	pool *pgxpool.Pool
}

var _ Store = (*Repository)(nil)

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (Notification, error) {
	if r == nil || r.pool == nil {
		return Notification{}, apperr.Internal(errRepoNotConfigured).WithOp(opCreate)
	}
	if p.Title == "" || p.Content == "" {
		return Notification{}, apperr.Validation("title and content are required").WithOp(opCreate)
	}

	category := p.Category
	if category == "" {
		category = CategoryInfo
	}

	var n Notification
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (title, content, resource_id, resource_type, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+notificationColumns,
		p.Title, p.Content, p.ResourceID, p.ResourceType, category,
	).Scan(&n.ID, &n.Title, &n.Content, &n.ResourceID, &n.ResourceType, &n.Category, &n.IsRead, &n.ReadAt, &n.CreatedAt)
	if err != nil {
		return Notification{}, apperr.Internal(fmt.Sprintf("create notification failed: %v", err)).WithOp(opCreate)
	}

	return n, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]Notification, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, apperr.Internal(errRepoNotConfigured).WithOp(opList)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&total); err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("count notifications failed: %v", err)).WithOp(opList)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("list notifications query failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	items := make([]Notification, 0, limit)
	for rows.Next() {
		var n Notification
		if scanErr := rows.Scan(&n.ID, &n.Title, &n.Content, &n.ResourceID, &n.ResourceType, &n.Category, &n.IsRead, &n.ReadAt, &n.CreatedAt); scanErr != nil {
			return nil, 0, apperr.Internal(fmt.Sprintf("scan notifications failed: %v", scanErr)).WithOp(opList)
		}
		items = append(items, n)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("iterate notifications failed: %v", rowsErr)).WithOp(opList)
	}

	return items, total, nil
}

// CountUnread counts unread entries, optionally restricted to resource types.
func (r *Repository) CountUnread(ctx context.Context, resourceTypes []string) (int, error) {
	if r == nil || r.pool == nil {
		return 0, apperr.Internal(errRepoNotConfigured).WithOp(opCountUnread)
	}

	var typesParam interface{}
	if len(resourceTypes) > 0 {
		typesParam = resourceTypes
	}

	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE is_read = FALSE AND ($1::text[] IS NULL OR resource_type = ANY($1))
	`, typesParam).Scan(&count)
	if err != nil {
		return 0, apperr.Internal(fmt.Sprintf("count unread notifications failed: %v", err)).WithOp(opCountUnread)
	}

	return count, nil
}

func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opMarkRead)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, now())
		WHERE id = $1
	`, id)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark notification read failed: %v", err)).WithOp(opMarkRead)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(errNotFound).WithOp(opMarkRead)
	}

	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, apperr.Internal(errRepoNotConfigured).WithOp(opMarkAllRead)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = now()
		WHERE is_read = FALSE
	`)
	if err != nil {
		return 0, apperr.Internal(fmt.Sprintf("mark all notifications read failed: %v", err)).WithOp(opMarkAllRead)
	}

	return tag.RowsAffected(), nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opDelete)
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("delete notification failed: %v", err)).WithOp(opDelete)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(errNotFound).WithOp(opDelete)
	}

	return nil
}
