package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/platform/httpx"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
)

var ErrNoSigner = errors.New("no signing key configured")

type Config struct {
	URL        string
	PrivateKey string // hex secp256k1 key that signs submitData and rewardUser
	PulseNet   string
	PulseToken string

	// Timeout bounds a single transaction from send to mined receipt.
	Timeout    time.Duration
	MaxRetries int
}

// Backend is the slice of an Ethereum client the relay needs. *ethclient.Client
// satisfies it.
type Backend interface {
	bind.ContractCaller
	bind.ContractTransactor
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

type RPCRelay struct {
	cfg  Config
	log  *logger.Logger
	dial func(ctx context.Context, url string) (Backend, error)

	backend    Backend
	pulseNet   *bind.BoundContract
	pulseToken *bind.BoundContract
	signer     *bind.TransactOpts
	ready      atomic.Bool
}

func NewRPCRelay(cfg Config, baseLog *logger.Logger) *RPCRelay {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &RPCRelay{
		cfg:  cfg,
		log:  baseLog.With("client", "LedgerRelay"),
		dial: dialEthclient,
	}
}

func dialEthclient(ctx context.Context, url string) (Backend, error) {
	return ethclient.DialContext(ctx, url)
}

// Init dials the node, binds both contracts and loads the signing key. The
// relay is ready only when every step succeeds.
func (r *RPCRelay) Init(ctx context.Context) error {
	r.ready.Store(false)
	pulseNet, err := ParseAddress(r.cfg.PulseNet)
	if err != nil {
		return &domain.RelayError{Op: "connect", Err: fmt.Errorf("pulsenet contract: %w", err)}
	}
	pulseToken, err := ParseAddress(r.cfg.PulseToken)
	if err != nil {
		return &domain.RelayError{Op: "connect", Err: fmt.Errorf("pulsetoken contract: %w", err)}
	}

	backend, err := r.dial(ctx, r.cfg.URL)
	if err != nil {
		return &domain.RelayError{Op: "connect", Err: err}
	}
	var chainID *big.Int
	err = r.retry(ctx, "eth_chainId", func() error {
		id, err := backend.ChainID(ctx)
		chainID = id
		return err
	})
	if err != nil {
		closeBackend(backend)
		return &domain.RelayError{Op: "connect", Err: err}
	}

	var signer *bind.TransactOpts
	if key := strings.TrimSpace(r.cfg.PrivateKey); key != "" {
		pk, err := crypto.HexToECDSA(strings.TrimPrefix(key, "0x"))
		if err != nil {
			closeBackend(backend)
			return &domain.RelayError{Op: "connect", Err: fmt.Errorf("parse private key: %w", err)}
		}
		signer, err = bind.NewKeyedTransactorWithChainID(pk, chainID)
		if err != nil {
			closeBackend(backend)
			return &domain.RelayError{Op: "connect", Err: err}
		}
	} else {
		r.log.Warn("PRIVATE_KEY not set, ledger writes disabled")
	}

	r.backend = backend
	r.pulseNet = bind.NewBoundContract(pulseNet, pulseNetABI, backend, backend, nil)
	r.pulseToken = bind.NewBoundContract(pulseToken, pulseTokenABI, backend, backend, nil)
	r.signer = signer
	r.ready.Store(true)

	fields := []any{"chain_id", hexutil.EncodeBig(chainID), "pulsenet", pulseNet.Hex(), "pulsetoken", pulseToken.Hex()}
	if signer != nil {
		fields = append(fields, "signer", signer.From.Hex())
	}
	r.log.Info("ledger relay connected", fields...)
	return nil
}

func (r *RPCRelay) Ready() bool { return r.ready.Load() }

// Close releases the node connection.
func (r *RPCRelay) Close() {
	r.ready.Store(false)
	if r.backend != nil {
		closeBackend(r.backend)
	}
}

func closeBackend(b Backend) {
	if c, ok := b.(interface{ Close() }); ok {
		c.Close()
	}
}

func (r *RPCRelay) SubmitHash(ctx context.Context, dataHash string) (Receipt, error) {
	hash, err := ParseHash(dataHash)
	if err != nil {
		return Receipt{}, &domain.RelayError{Op: "submitData", Err: err}
	}
	return r.transact(ctx, "submitData", [32]byte(hash))
}

func (r *RPCRelay) RewardUser(ctx context.Context, addr string, amount *big.Int) (Receipt, error) {
	user, err := ParseAddress(addr)
	if err != nil {
		return Receipt{}, &domain.RelayError{Op: "rewardUser", Err: err}
	}
	if amount == nil || amount.Sign() < 0 {
		return Receipt{}, &domain.RelayError{Op: "rewardUser", Err: fmt.Errorf("invalid amount %v", amount)}
	}
	return r.transact(ctx, "rewardUser", user, amount)
}

func (r *RPCRelay) SubmissionCount(ctx context.Context, addr string) (int64, error) {
	if !r.Ready() {
		return 0, nil
	}
	user, err := ParseAddress(addr)
	if err != nil {
		return 0, &domain.RelayError{Op: "getSubmissionCount", Err: err}
	}
	out, err := r.view(ctx, r.pulseNet, "getSubmissionCount", user)
	if err != nil {
		return 0, err
	}
	return uintOut(out, 0).Int64(), nil
}

func (r *RPCRelay) TokenBalance(ctx context.Context, addr string) (string, error) {
	if !r.Ready() {
		return "0", nil
	}
	account, err := ParseAddress(addr)
	if err != nil {
		return "0", &domain.RelayError{Op: "balanceOf", Err: err}
	}
	out, err := r.view(ctx, r.pulseToken, "balanceOf", account)
	if err != nil {
		return "0", err
	}
	return FormatEther(uintOut(out, 0)), nil
}

func (r *RPCRelay) PlatformStats(ctx context.Context) (ChainStats, error) {
	if !r.Ready() {
		return ChainStats{}, nil
	}
	out, err := r.view(ctx, r.pulseNet, "getPlatformStats")
	if err != nil {
		return ChainStats{}, err
	}
	return ChainStats{
		TotalSubmissions:   uintOut(out, 0).Int64(),
		UniqueContributors: uintOut(out, 1).Int64(),
	}, nil
}

func uintOut(out []interface{}, i int) *big.Int {
	if i >= len(out) {
		return new(big.Int)
	}
	return abi.ConvertType(out[i], new(big.Int)).(*big.Int)
}

func (r *RPCRelay) view(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) ([]interface{}, error) {
	var out []interface{}
	err := r.retry(ctx, method, func() error {
		out = nil
		return contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...)
	})
	if err != nil {
		return nil, &domain.RelayError{Op: method, Err: err}
	}
	return out, nil
}

// transact signs and sends a PulseNet call, then waits for it to be mined.
// Sends are never retried.
func (r *RPCRelay) transact(ctx context.Context, method string, params ...interface{}) (Receipt, error) {
	if !r.Ready() {
		return Receipt{}, &domain.RelayError{Op: method, Err: ErrNotInitialized}
	}
	if r.signer == nil {
		return Receipt{}, &domain.RelayError{Op: method, Err: ErrNoSigner}
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	opts := *r.signer
	opts.Context = ctx
	tx, err := r.pulseNet.Transact(&opts, method, params...)
	if err != nil {
		return Receipt{}, &domain.RelayError{Op: method, Err: err}
	}
	mined, err := bind.WaitMined(ctx, r.backend, tx)
	if err != nil {
		return Receipt{}, &domain.RelayError{Op: method, Err: err}
	}
	if mined.Status != types.ReceiptStatusSuccessful {
		return Receipt{}, &domain.RelayError{Op: method, Err: fmt.Errorf("transaction %s reverted", tx.Hash().Hex())}
	}

	receipt := Receipt{TransactionHash: mined.TxHash.Hex(), GasUsed: strconv.FormatUint(mined.GasUsed, 10)}
	if mined.TxHash == (common.Hash{}) {
		receipt.TransactionHash = tx.Hash().Hex()
	}
	if mined.BlockNumber != nil {
		receipt.BlockNumber = mined.BlockNumber.Uint64()
	}
	r.log.Debug("ledger transaction mined", "op", method, "tx_hash", receipt.TransactionHash, "block", receipt.BlockNumber)
	return receipt, nil
}

func (r *RPCRelay) retry(ctx context.Context, op string, fn func() error) error {
	backoff := 250 * time.Millisecond
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn()
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt >= r.cfg.MaxRetries {
			return err
		}
		sleepFor := httpx.Jitter(min(backoff, 5*time.Second))
		r.log.Warn("ledger rpc retrying",
			"op", op,
			"attempt", attempt+1,
			"max_retries", r.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}
}

func retryable(err error) bool {
	var he rpc.HTTPError
	if errors.As(err, &he) {
		return httpx.RetryableStatus(he.StatusCode)
	}
	return httpx.Retryable(err)
}
