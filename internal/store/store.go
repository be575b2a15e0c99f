// Package store is the append-only off-chain record of accepted submissions and
// the statistics snapshot derived from it.
package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pulsenet-backend/internal/aggregation"
	"github.com/yungbote/pulsenet-backend/internal/commitment"
	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
)

// Log persists submissions and the stats snapshot. Append must store the
// record and the snapshot together or not at all.
type Log interface {
	Append(ctx context.Context, rec domain.HealthSubmission, stats domain.PlatformStats) error
	LoadAll(ctx context.Context) ([]domain.HealthSubmission, error)
	// LoadStats returns nil when no snapshot has been persisted yet.
	LoadStats(ctx context.Context) (*domain.PlatformStats, error)
}

// Store serves reads from an in-memory view that is replaced only after the
// backing Log has committed a write.
type Store struct {
	mu  sync.RWMutex
	log *logger.Logger

	backend  Log
	records  []domain.HealthSubmission
	stats    domain.PlatformStats
	snapshot aggregation.Snapshot

	now   func() time.Time
	newID func() string
}

// Open loads the log and rebuilds the stats snapshot when the persisted one is
// missing or stale.
func Open(ctx context.Context, backend Log, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{
		log:     log.With("service", "OffChainStore"),
		backend: backend,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}

	records, err := backend.LoadAll(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "load", Err: err}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })

	persisted, err := backend.LoadStats(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "load stats", Err: err}
	}

	initial := s.now().UTC()
	if persisted != nil && !persisted.LastUpdated.IsZero() {
		initial = persisted.LastUpdated
	}
	stats := aggregation.Stats(records, initial)
	if persisted != nil && (persisted.TotalSubmissions != stats.TotalSubmissions || persisted.UniqueContributors != stats.UniqueContributors) {
		s.log.Warn("persisted stats snapshot disagrees with log, rebuilding",
			"persisted_total", persisted.TotalSubmissions,
			"log_total", stats.TotalSubmissions,
		)
	}

	snap, ok := decodeSnapshot(persisted)
	if !ok || snap.TotalSubmissions != stats.TotalSubmissions {
		snap = aggregation.Compute(records, initial)
	}

	s.records = records
	s.stats = stats
	s.snapshot = snap
	s.log.Info("off-chain store loaded", "submissions", len(records), "contributors", stats.UniqueContributors)
	return s, nil
}

// Append assigns an id to sub, attaches the commitment, recomputes the
// statistics over the enlarged set and persists both. On failure the
// in-memory view is left untouched.
func (s *Store) Append(ctx context.Context, sub domain.HealthSubmission, c commitment.Commitment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec := sub
	rec.ID = s.newID()
	rec.Seq = int64(len(s.records)) + 1
	rec.DataHash = c.DataHash
	rec.Proof = c.Proof
	rec.ReceivedAt = now

	next := append(s.records[:len(s.records):len(s.records)], rec)
	stats := aggregation.Stats(next, now)
	snap := aggregation.Compute(next, now)
	raw, err := json.Marshal(snap)
	if err != nil {
		return "", &domain.StorageError{Op: "encode snapshot", Err: err}
	}
	stats.Aggregate = raw

	if err := s.backend.Append(ctx, rec, stats); err != nil {
		s.log.Error("append failed", "error", err, "seq", rec.Seq)
		return "", &domain.StorageError{Op: "append", Err: err}
	}

	stats.Aggregate = nil
	s.records = next
	s.stats = stats
	s.snapshot = snap
	return rec.ID, nil
}

// CountByUser counts submissions from addr, ignoring case.
func (s *Store) CountByUser(addr string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.records {
		if strings.EqualFold(r.UserAddress, addr) {
			n++
		}
	}
	return n
}

// Stats returns the cached PlatformStats.
func (s *Store) Stats() domain.PlatformStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Snapshot returns the aggregation snapshot computed at the last write.
func (s *Store) Snapshot() aggregation.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Records returns a copy of every stored submission in append order.
func (s *Store) Records() []domain.HealthSubmission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.HealthSubmission(nil), s.records...)
}

func decodeSnapshot(ps *domain.PlatformStats) (aggregation.Snapshot, bool) {
	if ps == nil || len(ps.Aggregate) == 0 {
		return aggregation.Snapshot{}, false
	}
	var snap aggregation.Snapshot
	if err := json.Unmarshal(ps.Aggregate, &snap); err != nil {
		return aggregation.Snapshot{}, false
	}
	return snap, true
}
