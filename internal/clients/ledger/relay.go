// Package ledger relays data hashes and reward calls to the PulseNet and
// PulseToken contracts. Every call is best effort from the pipeline's view.
package ledger

import (
	"context"
	"errors"
	"math/big"

	"github.com/yungbote/pulsenet-backend/internal/domain"
)

// RewardPerSubmission is the PulseToken reward, in whole tokens, the contract
// mints for each on-chain submission.
const RewardPerSubmission = 10

var ErrNotInitialized = errors.New("blockchain service not initialized")

type Receipt struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     uint64 `json:"blockNumber"`
	GasUsed         string `json:"gasUsed"`
}

type ChainStats struct {
	TotalSubmissions   int64 `json:"totalSubmissions"`
	UniqueContributors int64 `json:"uniqueContributors"`
}

type Relay interface {
	Ready() bool
	SubmitHash(ctx context.Context, dataHash string) (Receipt, error)
	SubmissionCount(ctx context.Context, addr string) (int64, error)
	// TokenBalance is the balance formatted in whole tokens, e.g. "20.0".
	TokenBalance(ctx context.Context, addr string) (string, error)
	PlatformStats(ctx context.Context) (ChainStats, error)
	RewardUser(ctx context.Context, addr string, amount *big.Int) (Receipt, error)
}

// Unavailable is the relay used when no chain is configured. Writes fail and
// reads report zero.
type Unavailable struct{}

func (Unavailable) Ready() bool { return false }

func (Unavailable) SubmitHash(ctx context.Context, dataHash string) (Receipt, error) {
	return Receipt{}, &domain.RelayError{Op: "submitData", Err: ErrNotInitialized}
}

func (Unavailable) SubmissionCount(ctx context.Context, addr string) (int64, error) {
	return 0, nil
}

func (Unavailable) TokenBalance(ctx context.Context, addr string) (string, error) {
	return "0", nil
}

func (Unavailable) PlatformStats(ctx context.Context) (ChainStats, error) {
	return ChainStats{}, nil
}

func (Unavailable) RewardUser(ctx context.Context, addr string, amount *big.Int) (Receipt, error) {
	return Receipt{}, &domain.RelayError{Op: "rewardUser", Err: ErrNotInitialized}
}
