package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulsenet-backend/internal/http/response"
	"github.com/yungbote/pulsenet-backend/internal/platform/apierr"
)

// bindJSON decodes the request body into dst and writes the error response
// itself when decoding fails.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondDomainError(c, apierr.New(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", errors.New("Request body too large")))
			return false
		}
		response.RespondDomainError(c, &apierr.Error{
			Status:  http.StatusBadRequest,
			Code:    response.CodeValidation,
			Err:     errors.New("Validation error"),
			Details: "Malformed JSON body",
		})
		return false
	}
	return true
}
