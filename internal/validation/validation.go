// Package validation holds the schema and physiological range rules shared by
// the HTTP layer, the commitment engine and the aggregation engine.
package validation

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/yungbote/pulsenet-backend/internal/domain"
)

const (
	MinHeartRate  = 30
	MaxHeartRate  = 220
	MinSleepHours = 0
	MaxSleepHours = 24
	MinSteps      = 0
	MaxSteps      = 100000

	MinFingerprintLength = 32
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// SubmissionInput is a candidate submission as decoded from JSON. Nil means absent.
type SubmissionInput struct {
	UserAddress *string  `json:"userAddress"`
	HeartRate   *float64 `json:"heartRate"`
	SleepHours  *float64 `json:"sleepHours"`
	Steps       *float64 `json:"steps"`
	Timestamp   *float64 `json:"timestamp"`
}

// Submission checks in and returns the normalized submission. A missing or
// zero timestamp defaults to now.
func Submission(in SubmissionInput, now time.Time) (domain.HealthSubmission, error) {
	if in.UserAddress == nil {
		return domain.HealthSubmission{}, domain.NewValidationError("userAddress", "userAddress is required")
	}
	if err := Address(*in.UserAddress); err != nil {
		return domain.HealthSubmission{}, err
	}
	if in.HeartRate == nil {
		return domain.HealthSubmission{}, domain.NewValidationError("heartRate", "heartRate is required")
	}
	if in.SleepHours == nil {
		return domain.HealthSubmission{}, domain.NewValidationError("sleepHours", "sleepHours is required")
	}
	if in.Steps == nil {
		return domain.HealthSubmission{}, domain.NewValidationError("steps", "steps is required")
	}
	steps := *in.Steps
	if !isInteger(steps) {
		return domain.HealthSubmission{}, domain.NewValidationError("steps", "steps must be an integer")
	}

	ts, err := Timestamp(in.Timestamp, now)
	if err != nil {
		return domain.HealthSubmission{}, err
	}

	s := domain.HealthSubmission{
		UserAddress: *in.UserAddress,
		HeartRate:   *in.HeartRate,
		SleepHours:  *in.SleepHours,
		Steps:       int64(steps),
		Timestamp:   ts,
	}
	if err := Check(s); err != nil {
		return domain.HealthSubmission{}, err
	}
	return s, nil
}

// Check applies the address and range rules to an already-built submission.
func Check(s domain.HealthSubmission) error {
	if err := Address(s.UserAddress); err != nil {
		return err
	}
	if !HeartRateInRange(s.HeartRate) {
		return domain.NewValidationError("heartRate", "heartRate must be between %d and %d bpm", MinHeartRate, MaxHeartRate)
	}
	if !SleepHoursInRange(s.SleepHours) {
		return domain.NewValidationError("sleepHours", "sleepHours must be between %d and %d hours", MinSleepHours, MaxSleepHours)
	}
	if !StepsInRange(float64(s.Steps)) {
		return domain.NewValidationError("steps", "steps must be between %d and %d", MinSteps, MaxSteps)
	}
	if s.Timestamp < 0 {
		return domain.NewValidationError("timestamp", "timestamp must be a non-negative integer")
	}
	return nil
}

func Address(addr string) error {
	if !addressPattern.MatchString(addr) {
		return domain.NewValidationError("userAddress", "invalid Ethereum address")
	}
	return nil
}

func IsAddress(addr string) bool { return addressPattern.MatchString(addr) }

// Timestamp resolves an optional millisecond timestamp. Nil or zero means now.
func Timestamp(v *float64, now time.Time) (int64, error) {
	if v == nil || *v == 0 {
		return now.UnixMilli(), nil
	}
	t := *v
	// Values at or past 2^63 do not convert to int64.
	if !isInteger(t) || t < 0 || t >= math.MaxInt64 {
		return 0, domain.NewValidationError("timestamp", "timestamp must be a non-negative integer")
	}
	return int64(t), nil
}

// Registration validates a wallet/device pair.
func Registration(wallet, fingerprint string) error {
	if !addressPattern.MatchString(wallet) {
		return domain.NewValidationError("walletAddress", "invalid Ethereum address")
	}
	if len(strings.TrimSpace(fingerprint)) < MinFingerprintLength {
		return domain.NewValidationError("deviceFingerprint", "deviceFingerprint must be at least %d characters", MinFingerprintLength)
	}
	return nil
}

func HeartRateInRange(v float64) bool {
	return v >= MinHeartRate && v <= MaxHeartRate
}

func SleepHoursInRange(v float64) bool {
	return v >= MinSleepHours && v <= MaxSleepHours
}

func StepsInRange(v float64) bool {
	return v >= MinSteps && v <= MaxSteps
}

// InRange reports whether all three metrics satisfy their range rules.
func InRange(heartRate, sleepHours float64, steps int64) bool {
	return HeartRateInRange(heartRate) && SleepHoursInRange(sleepHours) && StepsInRange(float64(steps))
}

func isInteger(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v == math.Trunc(v)
}
