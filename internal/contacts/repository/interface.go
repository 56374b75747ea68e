package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Contact is a stored contact. Phone and WhatsApp hold the stored form
// ("+" followed by digits only).
type Contact struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     *string
	Company   *string
	JobTitle  *string
	Phone     *string
	WhatsApp  *string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateParams contains parameters for creating a contact.
type CreateParams struct {
	FirstName string
	LastName  string
	Email     *string
	Company   *string
	JobTitle  *string
	Phone     *string
	WhatsApp  *string
	Notes     *string
}

// UpdateParams contains parameters for a partial update. Nil fields are kept;
// an empty string clears an optional column.
type UpdateParams struct {
	ID        uuid.UUID
	FirstName *string
	LastName  *string
	Email     *string
	Company   *string
	JobTitle  *string
	Phone     *string
	WhatsApp  *string
	Notes     *string
}

// ListParams controls search and pagination of the contact list.
type ListParams struct {
	Search      string
	PhoneDigits string
	Offset      int
	Limit       int
}

// PhoneRecord is the phone columns of a contact, used by the backfill.
type PhoneRecord struct {
	ID       uuid.UUID
	Phone    *string
	WhatsApp *string
}

// ContactReader provides read operations for contacts.
type ContactReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Contact, error)
	List(ctx context.Context, params ListParams) ([]Contact, int, error)
}

// ContactWriter provides write operations for contacts.
type ContactWriter interface {
	Create(ctx context.Context, params CreateParams) (Contact, error)
	Update(ctx context.Context, params UpdateParams) (Contact, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PhoneBackfiller finds and rewrites phone values that are not in stored form.
type PhoneBackfiller interface {
	ListNonCanonicalPhones(ctx context.Context, after uuid.UUID, limit int) ([]PhoneRecord, error)
	UpdatePhones(ctx context.Context, id uuid.UUID, phone, whatsapp *string) error
}

// Repository combines all contact repository operations.
type Repository interface {
	ContactReader
	ContactWriter
}
