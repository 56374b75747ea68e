// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	Subscriber  = events.Subscriber
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Contacts Domain Events
// =============================================================================

// ContactCreated is published after a contact is stored.
type ContactCreated struct {
	BaseEvent
	ContactID    uuid.UUID `json:"contactId"`
	DisplayName  string    `json:"displayName"`
	PhoneDisplay string    `json:"phoneDisplay,omitempty"`
}

func (e ContactCreated) EventName() string { return "contacts.contact.created" }

// ContactUpdated is published after a contact is edited.
type ContactUpdated struct {
	BaseEvent
	ContactID     uuid.UUID `json:"contactId"`
	DisplayName   string    `json:"displayName"`
	PhoneDisplay  string    `json:"phoneDisplay,omitempty"`
	ChangedFields []string  `json:"changedFields,omitempty"`
}

func (e ContactUpdated) EventName() string { return "contacts.contact.updated" }

// ContactDeleted is published after a contact is removed.
type ContactDeleted struct {
	BaseEvent
	ContactID   uuid.UUID `json:"contactId"`
	DisplayName string    `json:"displayName"`
}

func (e ContactDeleted) EventName() string { return "contacts.contact.deleted" }
