package ledger

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"
)

func TestContractABIs(t *testing.T) {
	t.Parallel()

	if got := hex.EncodeToString(pulseTokenABI.Methods["balanceOf"].ID); got != "70a08231" {
		t.Fatalf("balanceOf id: got=%s want=70a08231", got)
	}
	sigs := map[string]string{
		"submitData":         "submitData(bytes32)",
		"rewardUser":         "rewardUser(address,uint256)",
		"getSubmissionCount": "getSubmissionCount(address)",
		"getPlatformStats":   "getPlatformStats()",
	}
	for name, want := range sigs {
		m, ok := pulseNetABI.Methods[name]
		if !ok {
			t.Fatalf("PulseNet abi missing %s", name)
		}
		if m.Sig != want {
			t.Fatalf("%s sig: got=%s want=%s", name, m.Sig, want)
		}
	}
	if got := len(pulseNetABI.Methods["getPlatformStats"].Outputs); got != 2 {
		t.Fatalf("getPlatformStats outputs: got=%d want=2", got)
	}
}

func TestPackBalanceOf(t *testing.T) {
	t.Parallel()

	addr, err := ParseAddress("0x742d35Cc6634C0532925a3b844Bc454e4438f44e")
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	data, err := pulseTokenABI.Pack("balanceOf", addr)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	want := "70a08231" + strings.Repeat("0", 24) + "742d35cc6634c0532925a3b844bc454e4438f44e"
	if got := hex.EncodeToString(data); got != want {
		t.Fatalf("unexpected calldata:\ngot=%s\nwant=%s", got, want)
	}
}

func TestParseAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in string
		ok bool
	}{
		{"0x742d35Cc6634C0532925a3b844Bc454e4438f44e", true},
		{"742d35Cc6634C0532925a3b844Bc454e4438f44e", true},
		{"0x" + strings.Repeat("a", 39), false},
		{"0x" + strings.Repeat("a", 41), false},
		{"0x1234", false},
		{"0x" + strings.Repeat("g", 40), false},
		{"", false},
	}
	for _, tc := range tests {
		_, err := ParseAddress(tc.in)
		if (err == nil) != tc.ok {
			t.Fatalf("ParseAddress(%q): got err=%v want ok=%v", tc.in, err, tc.ok)
		}
	}
}

func TestParseHash(t *testing.T) {
	t.Parallel()

	h, err := ParseHash(testHash)
	if err != nil {
		t.Fatalf("ParseHash: %v", err)
	}
	if h.Hex() != testHash {
		t.Fatalf("got=%s want=%s", h.Hex(), testHash)
	}
	for _, bad := range []string{"0xabcd", strings.TrimPrefix(testHash, "0x"), testHash + "00", testHash[:65]} {
		if _, err := ParseHash(bad); err == nil {
			t.Fatalf("ParseHash(%q) should fail", bad)
		}
	}
}

func TestFormatEther(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wei  string
		want string
	}{
		{"0", "0.0"},
		{"10000000000000000000", "10.0"},
		{"20000000000000000000", "20.0"},
		{"1500000000000000000", "1.5"},
		{"1", "0.000000000000000001"},
		{"123450000000000000000", "123.45"},
	}
	for _, tc := range tests {
		v, _ := new(big.Int).SetString(tc.wei, 10)
		if got := FormatEther(v); got != tc.want {
			t.Fatalf("FormatEther(%s): got=%s want=%s", tc.wei, got, tc.want)
		}
	}
	if got := FormatEther(nil); got != "0.0" {
		t.Fatalf("FormatEther(nil): got=%s", got)
	}
}

func TestParseEther(t *testing.T) {
	t.Parallel()

	v, err := ParseEther("2.5")
	if err != nil {
		t.Fatalf("ParseEther: %v", err)
	}
	if v.String() != "2500000000000000000" {
		t.Fatalf("unexpected wei: %s", v)
	}
	if got := FormatEther(v); got != "2.5" {
		t.Fatalf("round trip: got=%s want=2.5", got)
	}
	if v, err := ParseEther("10"); err != nil || v.String() != "10000000000000000000" {
		t.Fatalf("ParseEther(10): got=%v err=%v", v, err)
	}
	if _, err := ParseEther("abc"); err == nil {
		t.Fatalf("non-numeric amount should fail")
	}
	if _, err := ParseEther("0.0000000000000000001"); err == nil {
		t.Fatalf("more than 18 decimals should fail")
	}
}
