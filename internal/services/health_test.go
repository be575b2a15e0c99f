package services

import (
	"context"
	"testing"

	"github.com/yungbote/pulsenet-backend/internal/clients/ledger"
)

func TestHealthDetailed(t *testing.T) {
	t.Parallel()

	report, healthy := NewHealthService(newStore(t), &fakeRelay{}).Detailed(context.Background())
	if !healthy || report.Status != "healthy" {
		t.Fatalf("unexpected report: %+v", report)
	}
	for _, name := range []string{"api", "blockchain", "storage", "zkProof"} {
		if _, ok := report.Checks[name]; !ok {
			t.Fatalf("missing check %q", name)
		}
	}

	report, healthy = NewHealthService(newStore(t), ledger.Unavailable{}).Detailed(context.Background())
	if healthy || report.Status != "degraded" || report.Checks["blockchain"].Status != "unhealthy" {
		t.Fatalf("unexpected report without chain: %+v", report)
	}
}
