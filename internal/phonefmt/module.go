// Package phonefmt exposes the international phone format engine over HTTP.
// Front-ends use it to mask input boxes and render stored numbers.
package phonefmt

import (
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/phonefmt/handler"
	"crm_backend/internal/phonefmt/service"
	"crm_backend/platform/config"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"
	"crm_backend/platform/validator"

	"golang.org/x/time/rate"
)

// Module is the phone format module implementing http.Module.
type Module struct {
	handler *handler.Handler
	limiter *httpkit.IPRateLimiter
}

// NewModule creates the phone format module. Requests are rate limited per client IP.
func NewModule(formatter *phone.Formatter, val *validator.Validator, cfg config.RateLimitConfig, log *logger.Logger) *Module {
	return &Module{
		handler: handler.New(service.New(formatter, log), val),
		limiter: httpkit.NewIPRateLimiter(rate.Limit(cfg.GetPhoneAPIRatePerSec()), cfg.GetPhoneAPIBurst(), log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "phonefmt"
}

// RegisterRoutes mounts phone format routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/phone", m.limiter.RateLimit())
	group.GET("/formats", m.handler.ListFormats)
	group.GET("/formats/lookup", m.handler.Lookup)
	group.POST("/format-input", m.handler.FormatInput)
	group.POST("/format-display", m.handler.FormatDisplay)
	group.POST("/compose", m.handler.Compose)
	group.POST("/validate", m.handler.Validate)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
