// Package notification keeps the in-app notification feed. It subscribes to
// contact events, persists one feed entry per event and streams new entries to
// connected clients over SSE.
package notification

import (
	"context"
	"fmt"
	"strings"

	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	notifhandler "crm_backend/internal/notification/handler"
	"crm_backend/internal/notification/inapp"
	"crm_backend/internal/notification/sse"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const resourceTypeContact = "contact"

// Module is the notification module implementing http.Module and events.Handler.
type Module struct {
	inAppService *inapp.Service
	sse          *sse.Service
	handler      *notifhandler.HTTPHandler
	log          *logger.Logger
}

// New creates the notification module backed by PostgreSQL.
func New(pool *pgxpool.Pool, log *logger.Logger) *Module {
	return newModule(inapp.NewRepository(pool), log)
}

func newModule(store inapp.Store, log *logger.Logger) *Module {
	stream := sse.New(log)
	svc := inapp.NewService(store, stream, log)
	return &Module{
		inAppService: svc,
		sse:          stream,
		handler:      notifhandler.NewHTTPHandler(svc, stream),
		log:          log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// RegisterRoutes mounts the notification feed routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/notifications"))
}

// Close disconnects all SSE clients so that server shutdown is not held open
// by long-lived streams.
func (m *Module) Close() { m.sse.Close() }

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ContactCreated{}.EventName(), m)
	bus.Subscribe(events.ContactUpdated{}.EventName(), m)
	bus.Subscribe(events.ContactDeleted{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ContactCreated:
		return m.handleContactCreated(ctx, e)
	case events.ContactUpdated:
		return m.handleContactUpdated(ctx, e)
	case events.ContactDeleted:
		return m.handleContactDeleted(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleContactCreated(ctx context.Context, e events.ContactCreated) error {
	content := fmt.Sprintf("%s was added to your contacts.", contactLabel(e.DisplayName))
	if e.PhoneDisplay != "" {
		content = fmt.Sprintf("%s was added to your contacts with phone %s.", contactLabel(e.DisplayName), e.PhoneDisplay)
	}
	return m.send(ctx, e.ContactID, "Contact created", content, inapp.CategorySuccess)
}

func (m *Module) handleContactUpdated(ctx context.Context, e events.ContactUpdated) error {
	content := fmt.Sprintf("%s was updated.", contactLabel(e.DisplayName))
	if len(e.ChangedFields) > 0 {
		content = fmt.Sprintf("%s was updated: %s.", contactLabel(e.DisplayName), strings.Join(e.ChangedFields, ", "))
	}
	if e.PhoneDisplay != "" && containsField(e.ChangedFields, "phone") {
		content += fmt.Sprintf(" New phone: %s.", e.PhoneDisplay)
	}
	return m.send(ctx, e.ContactID, "Contact updated", content, inapp.CategoryInfo)
}

func (m *Module) handleContactDeleted(ctx context.Context, e events.ContactDeleted) error {
	content := fmt.Sprintf("%s was removed from your contacts.", contactLabel(e.DisplayName))
	return m.send(ctx, e.ContactID, "Contact deleted", content, inapp.CategoryWarning)
}

func (m *Module) send(ctx context.Context, contactID uuid.UUID, title, content, category string) error {
	resourceID := contactID
	return m.inAppService.Send(ctx, inapp.SendParams{
		Title:        title,
		Content:      content,
		ResourceID:   &resourceID,
		ResourceType: resourceTypeContact,
		Category:     category,
	})
}

func contactLabel(name string) string {
	if name == "" {
		return "A contact"
	}
	return name
}

func containsField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

// Compile-time checks.
var (
	_ apphttp.Module    = (*Module)(nil)
	_ events.Handler    = (*Module)(nil)
	_ events.Subscriber = (*Module)(nil)
)
