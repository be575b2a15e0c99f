package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/pulsenet-backend/internal/data/repos/testutil"
	"github.com/yungbote/pulsenet-backend/internal/domain"
)

func registration(id, wallet, fp string) domain.UserRegistration {
	at := time.Unix(1_700_000_000, 0).UTC()
	return domain.UserRegistration{
		RegistrationID:    id,
		WalletAddress:     wallet,
		DeviceFingerprint: fp,
		RegisteredAt:      at,
		Verified:          true,
		LastActivity:      at,
	}
}

func TestRegistrationBackendRoundTrip(t *testing.T) {
	db := testutil.DB(t)
	b := NewRegistrationBackend(db, testutil.Logger(t))
	ctx := context.Background()

	reg := registration("11111111-1111-1111-1111-111111111111", "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", "device-fingerprint-0000000000000000000001")
	if err := b.Insert(ctx, reg); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	later := time.Unix(1_700_000_600, 0).UTC()
	if err := b.Touch(ctx, reg.RegistrationID, later); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	regs, err := b.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(regs) != 1 {
		t.Fatalf("unexpected registrations: got=%d want=1", len(regs))
	}
	got := regs[0]
	if got.WalletKey != domain.WalletKey(reg.WalletAddress) {
		t.Fatalf("unexpected wallet key: got=%q", got.WalletKey)
	}
	if !got.LastActivity.Equal(later) {
		t.Fatalf("unexpected lastActivity: got=%v want=%v", got.LastActivity, later)
	}
}

func TestRegistrationBackendUniqueness(t *testing.T) {
	db := testutil.DB(t)
	b := NewRegistrationBackend(db, testutil.Logger(t))
	ctx := context.Background()

	wallet := "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	if err := b.Insert(ctx, registration("a", wallet, "device-fingerprint-0000000000000000000001")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := b.Insert(ctx, registration("b", domain.WalletKey(wallet), "device-fingerprint-0000000000000000000002")); err == nil {
		t.Fatalf("expected wallet key uniqueness violation")
	}
	if err := b.Insert(ctx, registration("c", "0x0000000000000000000000000000000000000b0b", "device-fingerprint-0000000000000000000001")); err == nil {
		t.Fatalf("expected fingerprint uniqueness violation")
	}
}

func TestTouchUnknownRegistration(t *testing.T) {
	db := testutil.DB(t)
	b := NewRegistrationBackend(db, testutil.Logger(t))

	err := b.Touch(context.Background(), "missing", time.Now())
	var ne *domain.NotFoundError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NotFoundError, got=%v", err)
	}
}
