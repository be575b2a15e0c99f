// Package commitment binds a submission to a reproducible data hash and a
// companion proof token.
//
// The proof produced by SimulatedScheme is not a zero-knowledge proof. It
// embeds a prefix of the data hash and a random nonce, and verification only
// checks the hash prefix. Two proofs that differ only in their nonce both
// verify against the same hash. A real proof system can replace it by
// implementing Scheme.
package commitment

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/validation"
)

const (
	proofPrefix = "zkp"
	proofSuffix = "verified"
	hashPrefix  = "0x"
	prefixLen   = 8
	nonceBytes  = 16
)

// Commitment is the output of Scheme.Generate.
type Commitment struct {
	Proof       string        `json:"proof"`
	DataHash    string        `json:"dataHash"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Duration    time.Duration `json:"-"`
}

// Scheme generates and checks commitments.
type Scheme interface {
	Generate(s domain.HealthSubmission) (Commitment, error)
	Verify(proof, dataHash string) bool
}

type SimulatedScheme struct {
	now   func() time.Time
	nonce func([]byte) (int, error)
}

func NewSimulatedScheme() *SimulatedScheme {
	return &SimulatedScheme{now: time.Now, nonce: rand.Read}
}

// Generate re-validates s so it is safe to call without going through the
// HTTP layer, then derives the data hash and proof token.
func (ss *SimulatedScheme) Generate(s domain.HealthSubmission) (Commitment, error) {
	start := ss.now()
	if err := validation.Check(s); err != nil {
		return Commitment{}, err
	}
	dataHash, err := DataHash(s)
	if err != nil {
		return Commitment{}, err
	}
	nonce := make([]byte, nonceBytes)
	if _, err := ss.nonce(nonce); err != nil {
		return Commitment{}, fmt.Errorf("proof nonce: %w", err)
	}
	proof := strings.Join([]string{
		proofPrefix,
		dataHash[len(hashPrefix) : len(hashPrefix)+prefixLen],
		hex.EncodeToString(nonce),
		proofSuffix,
	}, "-")
	end := ss.now()
	return Commitment{
		Proof:       proof,
		DataHash:    dataHash,
		GeneratedAt: end,
		Duration:    end.Sub(start),
	}, nil
}

func (ss *SimulatedScheme) Verify(proof, dataHash string) bool {
	return VerifyProof(proof, dataHash)
}

// VerifyProof reports whether proof is well formed and carries the prefix of
// dataHash. The nonce segment is not checked.
func VerifyProof(proof, dataHash string) bool {
	if !strings.HasPrefix(proof, proofPrefix+"-") {
		return false
	}
	parts := strings.Split(proof, "-")
	if len(parts) != 4 || parts[3] != proofSuffix {
		return false
	}
	if len(dataHash) < len(hashPrefix)+prefixLen {
		return false
	}
	return parts[1] == dataHash[len(hashPrefix):len(hashPrefix)+prefixLen]
}

// canonical fixes the key order of the hashed document.
type canonical struct {
	UserAddress string  `json:"userAddress"`
	HeartRate   float64 `json:"heartRate"`
	SleepHours  float64 `json:"sleepHours"`
	Steps       int64   `json:"steps"`
	Timestamp   int64   `json:"timestamp"`
}

// DataHash is "0x" + hex(sha256(canonical JSON of the five submission fields)).
func DataHash(s domain.HealthSubmission) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(canonical{
		UserAddress: s.UserAddress,
		HeartRate:   s.HeartRate,
		SleepHours:  s.SleepHours,
		Steps:       s.Steps,
		Timestamp:   s.Timestamp,
	}); err != nil {
		return "", fmt.Errorf("canonical serialize: %w", err)
	}
	sum := sha256.Sum256(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return hashPrefix + hex.EncodeToString(sum[:]), nil
}
