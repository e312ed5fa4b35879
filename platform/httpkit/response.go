// Package httpkit provides HTTP response and middleware infrastructure.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"

	"github.com/natelasko528/wisconsin-hail-tracker-sub000/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// RespondError maps a domain error to its HTTP status. Non-apperr errors are
// treated as internal and their message is not leaked to the client.
func RespondError(c *gin.Context, err error) {
	if e, ok := err.(*apperr.Error); ok {
		Error(c, e.HTTPStatus(), e.Message, e.Details)
		return
	}
	Error(c, http.StatusInternalServerError, "internal error", nil)
}
