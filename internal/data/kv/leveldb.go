// Package kv holds the LevelDB-backed submission log and registration backend.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
)

// Key layout:
//
//	sub_<seq, zero padded>  submission JSON, iterates in append order
//	stats_latest            PlatformStats JSON
//	reg_<registrationID>    UserRegistration JSON
const (
	submissionPrefix   = "sub_"
	statsKey           = "stats_latest"
	registrationPrefix = "reg_"
)

type DB struct {
	db  *leveldb.DB
	log *logger.Logger
}

func Open(path string, baseLog *logger.Logger) (*DB, error) {
	ldb, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	l := baseLog.With("service", "LevelDB", "path", path)
	l.Info("leveldb opened")
	return &DB{db: ldb, log: l}, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	d.log.Info("leveldb closed")
	return d.db.Close()
}

func submissionKey(seq int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", submissionPrefix, seq))
}

func registrationKey(id string) []byte {
	return []byte(registrationPrefix + id)
}

// SubmissionLog is the LevelDB-backed store.Log.
type SubmissionLog struct{ d *DB }

func (d *DB) SubmissionLog() *SubmissionLog { return &SubmissionLog{d: d} }

// Append writes the record and the stats snapshot in one synced batch.
func (s *SubmissionLog) Append(ctx context.Context, rec domain.HealthSubmission, stats domain.PlatformStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	recRaw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	statsRaw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Put(submissionKey(rec.Seq), recRaw)
	batch.Put([]byte(statsKey), statsRaw)
	return s.d.db.Write(batch, &opt.WriteOptions{Sync: true})
}

func (s *SubmissionLog) LoadAll(ctx context.Context) ([]domain.HealthSubmission, error) {
	iter := s.d.db.NewIterator(util.BytesPrefix([]byte(submissionPrefix)), nil)
	defer iter.Release()

	var out []domain.HealthSubmission
	for iter.Next() {
		var rec domain.HealthSubmission
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", iter.Key(), err)
		}
		out = append(out, rec)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SubmissionLog) LoadStats(ctx context.Context) (*domain.PlatformStats, error) {
	raw, err := s.d.db.Get([]byte(statsKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var st domain.PlatformStats
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode %s: %w", statsKey, err)
	}
	return &st, nil
}

// RegistrationBackend is the LevelDB-backed registry.Backend.
type RegistrationBackend struct{ d *DB }

func (d *DB) RegistrationBackend() *RegistrationBackend { return &RegistrationBackend{d: d} }

func (r *RegistrationBackend) LoadAll(ctx context.Context) ([]domain.UserRegistration, error) {
	iter := r.d.db.NewIterator(util.BytesPrefix([]byte(registrationPrefix)), nil)
	defer iter.Release()

	var out []domain.UserRegistration
	for iter.Next() {
		reg, err := decodeRegistration(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", iter.Key(), err)
		}
		out = append(out, reg)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RegistrationBackend) Insert(ctx context.Context, reg domain.UserRegistration) error {
	key := registrationKey(reg.RegistrationID)
	exists, err := r.d.db.Has(key, nil)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("registration %s exists", reg.RegistrationID)
	}
	return r.put(reg)
}

func (r *RegistrationBackend) Touch(ctx context.Context, registrationID string, at time.Time) error {
	raw, err := r.d.db.Get(registrationKey(registrationID), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return &domain.NotFoundError{Resource: "registration", Key: registrationID}
	}
	if err != nil {
		return err
	}
	reg, err := decodeRegistration(raw)
	if err != nil {
		return err
	}
	reg.LastActivity = at
	return r.put(reg)
}

// storedRegistration carries WalletKey, which the API form omits.
type storedRegistration struct {
	domain.UserRegistration
	WalletKey string `json:"walletKey"`
}

func (r *RegistrationBackend) put(reg domain.UserRegistration) error {
	raw, err := json.Marshal(storedRegistration{UserRegistration: reg, WalletKey: reg.WalletKey})
	if err != nil {
		return err
	}
	return r.d.db.Put(registrationKey(reg.RegistrationID), raw, &opt.WriteOptions{Sync: true})
}

func decodeRegistration(raw []byte) (domain.UserRegistration, error) {
	var sr storedRegistration
	if err := json.Unmarshal(raw, &sr); err != nil {
		return domain.UserRegistration{}, err
	}
	reg := sr.UserRegistration
	reg.WalletKey = sr.WalletKey
	if reg.WalletKey == "" {
		reg.WalletKey = domain.WalletKey(reg.WalletAddress)
	}
	return reg, nil
}
