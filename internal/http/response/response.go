package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type OKEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: msg, Code: code})
}

// RespondErrorDetails separates a short public message from details.
func RespondErrorDetails(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, ErrorEnvelope{Error: message, Code: code, Details: details})
}

func RespondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, OKEnvelope{Success: true, Message: message, Data: data})
}
