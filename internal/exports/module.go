// Package exports provides CSV exports of CRM data.
package exports

import (
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the exports module.
func NewModule(pool *pgxpool.Pool, formatter *phone.Formatter, log *logger.Logger) *Module {
	return newModule(NewRepository(pool), formatter, log)
}

func newModule(source ContactSource, formatter *phone.Formatter, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(source, formatter, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts export routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/exports/contacts.csv", m.handler.ExportContactsCSV)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
