// Package contacts provides the contacts bounded context module.
// Contacts carry phone and WhatsApp numbers in stored form and expose them in
// display form.
package contacts

import (
	"crm_backend/internal/contacts/handler"
	"crm_backend/internal/contacts/repository"
	"crm_backend/internal/contacts/service"
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the contacts bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the contacts module with all its dependencies.
func NewModule(pool *pgxpool.Pool, formatter *phone.Formatter, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	return newModule(repository.New(pool), formatter, eventBus, val, log)
}

func newModule(repo repository.Repository, formatter *phone.Formatter, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repo, formatter, eventBus, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "contacts"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts contact routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/contacts")
	group.GET("", m.handler.List)
	group.POST("", m.handler.Create)
	group.GET("/:id", m.handler.GetByID)
	group.PUT("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
