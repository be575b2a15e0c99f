package ledger

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// PulseNetABI covers the PulseNet methods the relay calls.
const PulseNetABI = `[
	{"type":"function","name":"submitData","stateMutability":"nonpayable",
	 "inputs":[{"name":"dataHash","type":"bytes32"}],"outputs":[]},
	{"type":"function","name":"rewardUser","stateMutability":"nonpayable",
	 "inputs":[{"name":"user","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"getSubmissionCount","stateMutability":"view",
	 "inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getPlatformStats","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"},{"name":"","type":"uint256"}]}
]`

// PulseTokenABI covers the ERC-20 balance read.
const PulseTokenABI = `[
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

var (
	pulseNetABI   = mustParseABI(PulseNetABI)
	pulseTokenABI = mustParseABI(PulseTokenABI)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("ledger: parse abi: %v", err))
	}
	return parsed
}

const tokenDecimals = 18

// ParseAddress accepts a 20-byte hex address with or without the 0x prefix.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// ParseHash accepts a 0x-prefixed 32-byte hex value.
func ParseHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(strings.TrimSpace(s))
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid bytes32 %q: %w", s, err)
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid bytes32 %q: %d bytes", s, len(b))
	}
	return common.BytesToHash(b), nil
}

// FormatEther renders a wei amount in whole tokens, always with a fraction
// part: 20e18 is "20.0".
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}
	s := decimal.NewFromBigInt(wei, -tokenDecimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseEther converts a decimal token amount to wei.
func ParseEther(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	wei := d.Shift(tokenDecimals)
	if !wei.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimals", amount, tokenDecimals)
	}
	return wei.BigInt(), nil
}
