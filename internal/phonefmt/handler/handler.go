package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"crm_backend/internal/phonefmt/service"
	"crm_backend/internal/phonefmt/transport"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"
)

// Handler handles HTTP requests for phone formatting.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const msgInvalidRequest = "invalid request"

// New creates a new phone format handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListFormats returns the country format table.
// GET /api/v1/phone/formats
func (h *Handler) ListFormats(c *gin.Context) {
	httpkit.OK(c, h.svc.ListFormats())
}

// Lookup returns the format for a single calling code.
// GET /api/v1/phone/formats/lookup?code=+44
func (h *Handler) Lookup(c *gin.Context) {
	var req transport.LookupFormatRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	req.Code = normalizeCodeParam(req.Code)
	if err := h.val.Struct(req); err != nil {
		httpkit.ValidationError(c, err)
		return
	}

	httpkit.OK(c, h.svc.Lookup(req.Code))
}

// FormatInput masks a national-number input value.
// POST /api/v1/phone/format-input
func (h *Handler) FormatInput(c *gin.Context) {
	var req transport.FormatInputRequest
	if !h.bindJSON(c, &req) {
		return
	}

	httpkit.OK(c, h.svc.FormatInput(req))
}

// FormatDisplay renders a stored phone.
// POST /api/v1/phone/format-display
func (h *Handler) FormatDisplay(c *gin.Context) {
	var req transport.FormatDisplayRequest
	if !h.bindJSON(c, &req) {
		return
	}

	httpkit.OK(c, h.svc.FormatDisplay(req))
}

// Compose builds the stored form of a phone.
// POST /api/v1/phone/compose
func (h *Handler) Compose(c *gin.Context) {
	var req transport.ComposeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Compose(req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Validate checks a phone with libphonenumber.
// POST /api/v1/phone/validate
func (h *Handler) Validate(c *gin.Context) {
	var req transport.ValidateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	httpkit.OK(c, h.svc.Validate(req))
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.ValidationError(c, err)
		return false
	}
	return true
}

// normalizeCodeParam restores the "+" of a calling code. An unescaped "+" in a
// query string decodes to a space, and "44" is accepted as shorthand for "+44".
func normalizeCodeParam(code string) string {
	code = strings.TrimSpace(code)
	if code != "" && !strings.HasPrefix(code, "+") {
		code = "+" + code
	}
	return code
}
