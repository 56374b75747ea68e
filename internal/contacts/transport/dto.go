package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateContactRequest contains data for creating a contact. Phone numbers
// arrive as a calling code plus the national number as typed.
type CreateContactRequest struct {
	FirstName           string  `json:"firstName" validate:"required,min=1,max=100"`
	LastName            string  `json:"lastName" validate:"max=100"`
	Email               *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Company             *string `json:"company,omitempty" validate:"omitempty,max=200"`
	JobTitle            *string `json:"jobTitle,omitempty" validate:"omitempty,max=200"`
	PhoneCallingCode    string  `json:"phoneCallingCode" validate:"omitempty,callingcode"`
	Phone               string  `json:"phone" validate:"max=64"`
	WhatsAppCallingCode string  `json:"whatsappCallingCode" validate:"omitempty,callingcode"`
	WhatsApp            string  `json:"whatsapp" validate:"max=64"`
	Notes               *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateContactRequest contains data for a partial contact update. Nil fields
// are kept. An empty phone or whatsapp clears it.
type UpdateContactRequest struct {
	FirstName           *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName            *string `json:"lastName,omitempty" validate:"omitempty,max=100"`
	Email               *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Company             *string `json:"company,omitempty" validate:"omitempty,max=200"`
	JobTitle            *string `json:"jobTitle,omitempty" validate:"omitempty,max=200"`
	PhoneCallingCode    *string `json:"phoneCallingCode,omitempty" validate:"omitempty,callingcode"`
	Phone               *string `json:"phone,omitempty" validate:"omitempty,max=64"`
	WhatsAppCallingCode *string `json:"whatsappCallingCode,omitempty" validate:"omitempty,callingcode"`
	WhatsApp            *string `json:"whatsapp,omitempty" validate:"omitempty,max=64"`
	Notes               *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ListContactsRequest is bound from the list query string.
type ListContactsRequest struct {
	Search   string `form:"search" validate:"max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// PhoneResponse is a phone in stored, display and edit form.
type PhoneResponse struct {
	Stored      string `json:"stored"`
	Display     string `json:"display"`
	CallingCode string `json:"callingCode,omitempty"`
	National    string `json:"national,omitempty"`
}

// ContactResponse represents a contact in API responses.
type ContactResponse struct {
	ID          uuid.UUID      `json:"id"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	DisplayName string         `json:"displayName"`
	Email       *string        `json:"email,omitempty"`
	Company     *string        `json:"company,omitempty"`
	JobTitle    *string        `json:"jobTitle,omitempty"`
	Phone       *PhoneResponse `json:"phone,omitempty"`
	WhatsApp    *PhoneResponse `json:"whatsapp,omitempty"`
	Notes       *string        `json:"notes,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// ContactListResponse wraps a page of contacts.
type ContactListResponse struct {
	Items      []ContactResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}
