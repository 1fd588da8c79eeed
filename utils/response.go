package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookingpro-backend/apperror"
)

// APIResponse is the envelope of every response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// RespondWithSuccess writes data with the given status.
func RespondWithSuccess(c *gin.Context, statusCode int, data interface{}, message ...string) {
	response := APIResponse{Success: true, Data: data}
	if len(message) > 0 {
		response.Message = message[0]
	}
	c.JSON(statusCode, response)
}

// RespondWithError writes a plain error message.
func RespondWithError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error:   &ErrorInfo{Type: "error", Message: message},
	})
}

// RespondWithAppError maps err onto its status code. Errors that are not an
// AppError are reported as internal errors without leaking their text.
func RespondWithAppError(c *gin.Context, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, APIResponse{
			Success: false,
			Error:   &ErrorInfo{Type: string(apperror.TypeInternal), Message: "Internal server error"},
		})
		return
	}
	c.JSON(appErr.Code, APIResponse{
		Success: false,
		Error: &ErrorInfo{
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}
