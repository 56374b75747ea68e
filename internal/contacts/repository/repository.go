package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crm_backend/platform/apperr"
)

const (
	opGetByID   = "contacts.repository.get_by_id"
	opList      = "contacts.repository.list"
	opCreate    = "contacts.repository.create"
	opUpdate    = "contacts.repository.update"
	opDelete    = "contacts.repository.delete"
	opBackfill  = "contacts.repository.list_non_canonical_phones"
	opSetPhones = "contacts.repository.update_phones"

	contactNotFoundMessage = "contact not found"

	contactColumns = `id, first_name, last_name, email, company, job_title, phone, whatsapp, notes, created_at, updated_at`
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new contacts repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time checks that Repo implements the repository interfaces.
var (
	_ Repository      = (*Repo)(nil)
	_ PhoneBackfiller = (*Repo)(nil)
)

// GetByID retrieves a contact by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`

	c, err := scanContact(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, apperr.NotFound(contactNotFoundMessage).WithOp(opGetByID)
		}
		return Contact{}, fmt.Errorf("%s: %w", opGetByID, err)
	}
	return c, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching value literally anywhere in
// a column. Backslash is the default LIKE escape in PostgreSQL.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

// List retrieves contacts ordered by name. Search matches names, email and
// company case-insensitively; PhoneDigits matches stored phones by substring.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Contact, int, error) {
	var searchParam interface{}
	if params.Search != "" {
		searchParam = containsPattern(params.Search)
	}
	var digitsParam interface{}
	if params.PhoneDigits != "" {
		digitsParam = containsPattern(params.PhoneDigits)
	}

	filter := `
		WHERE ($1::text IS NULL
			OR first_name ILIKE $1
			OR last_name ILIKE $1
			OR (first_name || ' ' || last_name) ILIKE $1
			OR email ILIKE $1
			OR company ILIKE $1
			OR ($2::text IS NOT NULL AND (phone LIKE $2 OR whatsapp LIKE $2)))`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts`+filter, searchParam, digitsParam).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", opList, err)
	}

	query := `SELECT ` + contactColumns + ` FROM contacts` + filter + `
		ORDER BY lower(first_name), lower(last_name), id
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, searchParam, digitsParam, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", opList, err)
	}
	defer rows.Close()

	items := make([]Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: scan: %w", opList, err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", opList, err)
	}

	return items, total, nil
}

// Create inserts a new contact.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Contact, error) {
	query := `
		INSERT INTO contacts (first_name, last_name, email, company, job_title, phone, whatsapp, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + contactColumns

	c, err := scanContact(r.pool.QueryRow(ctx, query,
		params.FirstName, params.LastName, params.Email, params.Company,
		params.JobTitle, params.Phone, params.WhatsApp, params.Notes,
	))
	if err != nil {
		return Contact{}, fmt.Errorf("%s: %w", opCreate, err)
	}
	return c, nil
}

// Update applies a partial update and returns the stored contact.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Contact, error) {
	query := `
		UPDATE contacts SET
			first_name = COALESCE($2, first_name),
			last_name  = COALESCE($3, last_name),
			email      = NULLIF(COALESCE($4, email), ''),
			company    = NULLIF(COALESCE($5, company), ''),
			job_title  = NULLIF(COALESCE($6, job_title), ''),
			phone      = NULLIF(COALESCE($7, phone), ''),
			whatsapp   = NULLIF(COALESCE($8, whatsapp), ''),
			notes      = NULLIF(COALESCE($9, notes), ''),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + contactColumns

	c, err := scanContact(r.pool.QueryRow(ctx, query,
		params.ID, params.FirstName, params.LastName, params.Email, params.Company,
		params.JobTitle, params.Phone, params.WhatsApp, params.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, apperr.NotFound(contactNotFoundMessage).WithOp(opUpdate)
		}
		return Contact{}, fmt.Errorf("%s: %w", opUpdate, err)
	}
	return c, nil
}

// Delete removes a contact.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", opDelete, err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(contactNotFoundMessage).WithOp(opDelete)
	}
	return nil
}

// ListNonCanonicalPhones returns contacts after the given ID whose phone or
// WhatsApp value is not a "+" followed by digits.
func (r *Repo) ListNonCanonicalPhones(ctx context.Context, after uuid.UUID, limit int) ([]PhoneRecord, error) {
	query := `
		SELECT id, phone, whatsapp
		FROM contacts
		WHERE id > $1
			AND ((phone IS NOT NULL AND phone !~ '^\+[0-9]+$')
				OR (whatsapp IS NOT NULL AND whatsapp !~ '^\+[0-9]+$'))
		ORDER BY id
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, after, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opBackfill, err)
	}
	defer rows.Close()

	records := make([]PhoneRecord, 0, limit)
	for rows.Next() {
		var rec PhoneRecord
		if err := rows.Scan(&rec.ID, &rec.Phone, &rec.WhatsApp); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", opBackfill, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", opBackfill, err)
	}
	return records, nil
}

// UpdatePhones overwrites both phone columns of a contact.
func (r *Repo) UpdatePhones(ctx context.Context, id uuid.UUID, phone, whatsapp *string) error {
	query := `UPDATE contacts SET phone = $2, whatsapp = $3, updated_at = now() WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, phone, whatsapp)
	if err != nil {
		return fmt.Errorf("%s: %w", opSetPhones, err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(contactNotFoundMessage).WithOp(opSetPhones)
	}
	return nil
}

func scanContact(row pgx.Row) (Contact, error) {
	var c Contact
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Company, &c.JobTitle,
		&c.Phone, &c.WhatsApp, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}
