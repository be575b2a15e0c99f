package domain

import "fmt"

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

const (
	ReasonDeviceAlreadyRegistered = "device-already-registered"
	ReasonWalletAlreadyRegistered = "wallet-already-registered"
	ReasonFingerprintMismatch     = "fingerprint-mismatch"
)

// ConflictError is a violation of the wallet/device uniqueness invariant.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	switch e.Reason {
	case ReasonDeviceAlreadyRegistered:
		return "device already registered with different wallet"
	case ReasonWalletAlreadyRegistered:
		return "wallet already registered with different device"
	case ReasonFingerprintMismatch:
		return "device fingerprint mismatch"
	default:
		return "conflict: " + e.Reason
	}
}

type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// StorageError wraps a persistence failure. Previously committed data is intact.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// RelayError is a ledger relay failure. It never aborts a submission.
type RelayError struct {
	Op  string
	Err error
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("ledger relay %s: %v", e.Op, e.Err)
}

func (e *RelayError) Unwrap() error { return e.Err }
