package exports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContactRow is a contact as read for export. Phones are in stored form.
type ContactRow struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     *string
	Company   *string
	JobTitle  *string
	Phone     *string
	WhatsApp  *string
	CreatedAt time.Time
}

// ContactSource provides contact rows for export.
type ContactSource interface {
	ListContacts(ctx context.Context, limit int) ([]ContactRow, error)
}

// Repository reads export data from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

var _ ContactSource = (*Repository)(nil)

// NewRepository creates a new export repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListContacts returns up to limit contacts ordered by creation time.
func (r *Repository) ListContacts(ctx context.Context, limit int) ([]ContactRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, first_name, last_name, email, company, job_title, phone, whatsapp, created_at
		FROM contacts
		ORDER BY created_at ASC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list contacts for export: %w", err)
	}
	defer rows.Close()

	items := make([]ContactRow, 0)
	for rows.Next() {
		var row ContactRow
		if err := rows.Scan(&row.ID, &row.FirstName, &row.LastName, &row.Email, &row.Company,
			&row.JobTitle, &row.Phone, &row.WhatsApp, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact for export: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts for export: %w", err)
	}

	return items, nil
}
