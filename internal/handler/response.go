package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/speechcare/clinic-api/pkg/errors"
)

// ErrorResponse is the error body for every endpoint: a status code and a
// single human-readable message.
type ErrorResponse struct {
	Error string `json:"error"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// Error maps an application error onto its HTTP status and writes the JSON
// error body. Wrapped detail stays in the logs, never in the response.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(apperrors.Status(err), NewErrorResponse(apperrors.Message(err)))
}
