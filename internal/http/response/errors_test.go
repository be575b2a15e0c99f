package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/platform/apierr"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"field validation", domain.NewValidationError("heartRate", "out of range"), http.StatusBadRequest, CodeValidation},
		{"device conflict", &domain.ConflictError{Reason: domain.ReasonDeviceAlreadyRegistered}, http.StatusConflict, CodeDeviceAlreadyRegistered},
		{"wallet conflict", &domain.ConflictError{Reason: domain.ReasonWalletAlreadyRegistered}, http.StatusConflict, CodeWalletAlreadyRegistered},
		{"fingerprint mismatch", &domain.ConflictError{Reason: domain.ReasonFingerprintMismatch}, http.StatusForbidden, CodeDeviceMismatch},
		{"unknown user", &domain.NotFoundError{Resource: "registration", Key: "0x1"}, http.StatusNotFound, CodeUserNotFound},
		{"other not found", &domain.NotFoundError{Resource: "thing"}, http.StatusNotFound, CodeNotFound},
		{"storage", &domain.StorageError{Op: "append", Err: errors.New("disk full")}, http.StatusInternalServerError, CodeStorage},
		{"relay", &domain.RelayError{Op: "rewardUser", Err: errors.New("down")}, http.StatusBadGateway, CodeBlockchainUnavailable},
		{"wrapped relay", fmt.Errorf("manual reward: %w", &domain.RelayError{Op: "rewardUser", Err: errors.New("down")}), http.StatusBadGateway, CodeBlockchainUnavailable},
		{"api error", apierr.New(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", errors.New("too large")), http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range tests {
		status, code, message, _ := Classify(tc.err)
		if status != tc.status || code != tc.code {
			t.Fatalf("%s: got=%d/%s want=%d/%s", tc.name, status, code, tc.status, tc.code)
		}
		if message == "" {
			t.Fatalf("%s: empty message", tc.name)
		}
	}
}

func TestClassifyHidesInternalDetails(t *testing.T) {
	t.Parallel()

	_, _, message, details := Classify(&domain.StorageError{Op: "append", Err: errors.New("secret path /var/db")})
	if message != "Failed to store health data" || details != "" {
		t.Fatalf("storage error leaked: message=%q details=%q", message, details)
	}
	_, _, message, details = Classify(domain.NewValidationError("", "Missing proof or dataHash"))
	if message != "Missing proof or dataHash" || details != "" {
		t.Fatalf("got message=%q details=%q", message, details)
	}
}
