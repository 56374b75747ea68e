// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"

	"crm_backend/platform/apperr"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const msgValidationFailed = "validation failed"

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// ValidationError sends a 400 response listing the failed fields.
func ValidationError(c *gin.Context, err error) {
	details := interface{}(err.Error())
	if fields := validator.FieldErrors(err); fields != nil {
		details = fields
	}
	Error(c, http.StatusBadRequest, msgValidationFailed, details)
}

// HandleError maps domain errors to HTTP responses.
// If the error chain holds an *apperr.Error, its Kind determines the
// HTTP status code. Otherwise, it defaults to 500 Internal Server Error.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := apperr.As(err); ok {
		c.JSON(domainErr.HTTPStatus(), ErrorResponse{
			Error:   domainErr.Message,
			Details: domainErr.Details,
		})
		return true
	}

	// Untyped errors come from infrastructure; don't leak their text.
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	return true
}
