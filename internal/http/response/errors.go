package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/platform/apierr"
)

const (
	CodeValidation              = "VALIDATION_ERROR"
	CodeDeviceAlreadyRegistered = "DEVICE_ALREADY_REGISTERED"
	CodeWalletAlreadyRegistered = "WALLET_ALREADY_REGISTERED"
	CodeDeviceMismatch          = "DEVICE_MISMATCH"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeNotFound                = "NOT_FOUND"
	CodeStorage                 = "STORAGE_ERROR"
	CodeBlockchainUnavailable   = "BLOCKCHAIN_UNAVAILABLE"
	CodeInternal                = "INTERNAL_ERROR"
)

// Classify maps an error to its HTTP status, machine code and public message.
func Classify(err error) (status int, code, message, details string) {
	var (
		ae *apierr.Error
		ve *domain.ValidationError
		ce *domain.ConflictError
		ne *domain.NotFoundError
		se *domain.StorageError
		re *domain.RelayError
	)
	switch {
	case errors.As(err, &ae):
		return ae.Status, ae.Code, ae.Error(), ae.Details
	case errors.As(err, &ve):
		if ve.Field == "" {
			return http.StatusBadRequest, CodeValidation, ve.Message, ""
		}
		return http.StatusBadRequest, CodeValidation, "Validation error", ve.Error()
	case errors.As(err, &ce):
		switch ce.Reason {
		case domain.ReasonDeviceAlreadyRegistered:
			return http.StatusConflict, CodeDeviceAlreadyRegistered, "Device already registered with different wallet", ""
		case domain.ReasonWalletAlreadyRegistered:
			return http.StatusConflict, CodeWalletAlreadyRegistered, "Wallet already registered with different device", ""
		case domain.ReasonFingerprintMismatch:
			return http.StatusForbidden, CodeDeviceMismatch, "Device fingerprint mismatch", ""
		default:
			return http.StatusConflict, "CONFLICT", ce.Error(), ""
		}
	case errors.As(err, &ne):
		if ne.Resource == "registration" {
			return http.StatusNotFound, CodeUserNotFound, "User not registered", ""
		}
		return http.StatusNotFound, CodeNotFound, ne.Error(), ""
	case errors.As(err, &se):
		return http.StatusInternalServerError, CodeStorage, "Failed to store health data", ""
	case errors.As(err, &re):
		return http.StatusBadGateway, CodeBlockchainUnavailable, "Blockchain unavailable", re.Error()
	default:
		return http.StatusInternalServerError, CodeInternal, "Internal server error", ""
	}
}

func RespondDomainError(c *gin.Context, err error) {
	status, code, message, details := Classify(err)
	_ = c.Error(err)
	RespondErrorDetails(c, status, code, message, details)
}
