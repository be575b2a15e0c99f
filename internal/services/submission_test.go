package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/pulsenet-backend/internal/commitment"
	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
	"github.com/yungbote/pulsenet-backend/internal/validation"
)

func input(addr string, hr float64) validation.SubmissionInput {
	return validation.SubmissionInput{
		UserAddress: ptr(addr),
		HeartRate:   ptr(hr),
		SleepHours:  ptr(7.5),
		Steps:       ptr(8000.0),
	}
}

func TestSubmitHappyPath(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	relay := &fakeRelay{balance: "10.0"}
	cache := &memCache{}
	svc := NewSubmissionService(logger.Nop(), commitment.NewSimulatedScheme(), st, relay, cache, nil, SubmissionConfig{RelayTimeout: time.Second})

	res, err := svc.Submit(context.Background(), input(alice, 72))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Degraded || len(res.Warnings) != 0 {
		t.Fatalf("unexpected degraded result: %+v", res)
	}
	if !res.ZKProof.Verified || !commitment.VerifyProof(res.ZKProof.Proof, res.DataHash) {
		t.Fatalf("proof does not verify: %+v", res.ZKProof)
	}
	if !res.Blockchain.Success || res.Blockchain.Receipt == nil || res.Blockchain.TransactionHash != "0xfeed" {
		t.Fatalf("unexpected blockchain result: %+v", res.Blockchain)
	}
	if res.User.SubmissionCount != 1 || res.User.TokenBalance != "10.0" || res.User.Address != alice {
		t.Fatalf("unexpected user snapshot: %+v", res.User)
	}
	if len(relay.submitted) != 1 || relay.submitted[0] != res.DataHash {
		t.Fatalf("relay did not receive the data hash: %v", relay.submitted)
	}
	if cache.invalidated != 1 {
		t.Fatalf("stats cache not invalidated")
	}
}

func TestSubmitRelayFailureDegrades(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	svc := NewSubmissionService(logger.Nop(), commitment.NewSimulatedScheme(), st, &fakeRelay{fail: true}, nil, nil, SubmissionConfig{})

	res, err := svc.Submit(context.Background(), input(alice, 72))
	if err != nil {
		t.Fatalf("relay failure must not fail Submit: %v", err)
	}
	if !res.Degraded || len(res.Warnings) == 0 {
		t.Fatalf("expected degraded result: %+v", res)
	}
	if res.Blockchain.Success || res.Blockchain.Error == "" || res.Blockchain.Receipt != nil {
		t.Fatalf("unexpected blockchain result: %+v", res.Blockchain)
	}
	if res.User.TokenBalance != "0" {
		t.Fatalf("unexpected balance fallback: %q", res.User.TokenBalance)
	}
	if got := st.CountByUser(alice); got != 1 {
		t.Fatalf("record must be stored despite relay failure: got=%d", got)
	}
	if got := st.Stats().TotalSubmissions; got != 1 {
		t.Fatalf("stats must include the record: got=%d", got)
	}
}

func TestSubmitValidationFailureStoresNothing(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	relay := &fakeRelay{}
	svc := NewSubmissionService(logger.Nop(), commitment.NewSimulatedScheme(), st, relay, nil, nil, SubmissionConfig{})

	_, err := svc.Submit(context.Background(), input(alice, 300))
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "heartRate" {
		t.Fatalf("expected heartRate ValidationError, got=%v", err)
	}
	if st.Stats().TotalSubmissions != 0 || len(relay.submitted) != 0 {
		t.Fatalf("invalid submission must not be stored or relayed")
	}
}

func TestVerifyProof(t *testing.T) {
	t.Parallel()

	svc := NewSubmissionService(logger.Nop(), commitment.NewSimulatedScheme(), newStore(t), &fakeRelay{}, nil, nil, SubmissionConfig{})
	ctx := context.Background()

	if _, err := svc.VerifyProof(ctx, "", "0xabc"); err == nil {
		t.Fatalf("missing proof should fail")
	}
	res, err := svc.Submit(ctx, input(alice, 72))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	v, err := svc.VerifyProof(ctx, res.ZKProof.Proof, res.DataHash)
	if err != nil || !v.Valid {
		t.Fatalf("VerifyProof: valid=%v err=%v", v != nil && v.Valid, err)
	}
	v, err = svc.VerifyProof(ctx, "zkp-00000000-00-verified", res.DataHash)
	if err != nil || v.Valid {
		t.Fatalf("foreign proof should not verify")
	}
}
