package services

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/yungbote/pulsenet-backend/internal/clients/ledger"
	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
	"github.com/yungbote/pulsenet-backend/internal/store"
)

const (
	alice = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	bob   = "0x0000000000000000000000000000000000000b0b"
)

var errChainDown = errors.New("chain down")

type fakeRelay struct {
	mu        sync.Mutex
	fail      bool
	submitted []string
	rewarded  []*big.Int
	count     int64
	balance   string
	stats     ledger.ChainStats
	statCalls int
}

func (f *fakeRelay) Ready() bool { return !f.fail }

func (f *fakeRelay) SubmitHash(ctx context.Context, dataHash string) (ledger.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return ledger.Receipt{}, &domain.RelayError{Op: "submitData", Err: errChainDown}
	}
	f.submitted = append(f.submitted, dataHash)
	return ledger.Receipt{TransactionHash: "0xfeed", BlockNumber: 1, GasUsed: "21000"}, nil
}

func (f *fakeRelay) SubmissionCount(ctx context.Context, addr string) (int64, error) {
	if f.fail {
		return 0, &domain.RelayError{Op: "getSubmissionCount", Err: errChainDown}
	}
	return f.count, nil
}

func (f *fakeRelay) TokenBalance(ctx context.Context, addr string) (string, error) {
	if f.fail {
		return "", &domain.RelayError{Op: "balanceOf", Err: errChainDown}
	}
	return f.balance, nil
}

func (f *fakeRelay) PlatformStats(ctx context.Context) (ledger.ChainStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statCalls++
	if f.fail {
		return ledger.ChainStats{}, &domain.RelayError{Op: "getPlatformStats", Err: errChainDown}
	}
	return f.stats, nil
}

func (f *fakeRelay) RewardUser(ctx context.Context, addr string, amount *big.Int) (ledger.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return ledger.Receipt{}, &domain.RelayError{Op: "rewardUser", Err: errChainDown}
	}
	f.rewarded = append(f.rewarded, amount)
	return ledger.Receipt{TransactionHash: "0xbeef", BlockNumber: 2}, nil
}

// memCache is an in-process StatsCache.
type memCache struct {
	mu          sync.Mutex
	raw         []byte
	invalidated int
}

func (c *memCache) Get(ctx context.Context, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.raw == nil {
		return false, nil
	}
	return true, json.Unmarshal(c.raw, dest)
}

func (c *memCache) Set(ctx context.Context, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.raw = raw
	c.mu.Unlock()
	return nil
}

func (c *memCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.raw = nil
	c.invalidated++
	c.mu.Unlock()
	return nil
}

func (c *memCache) Close() error { return nil }

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), store.NewMemoryLog(), logger.Nop())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	return st
}

func ptr[T any](v T) *T { return &v }
