package graph

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/crypto/sha3"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
	"github.com/yungbote/pulsenet-backend/internal/platform/neo4jdb"
)

var identitySchema = []string{
	`CREATE CONSTRAINT wallet_key_unique IF NOT EXISTS FOR (w:Wallet) REQUIRE w.key IS UNIQUE`,
	`CREATE CONSTRAINT device_key_unique IF NOT EXISTS FOR (d:Device) REQUIRE d.key IS UNIQUE`,
}

const upsertBinding = `
MERGE (w:Wallet {key: $wallet_key})
SET w.address = $wallet_address
MERGE (d:Device {key: $device_key})
MERGE (w)-[b:BOUND_TO]->(d)
SET b.registration_id = $registration_id,
    b.registered_at = $registered_at,
    b.verified = $verified,
    b.synced_at = $synced_at
`

// IdentityGraph projects wallet/device bindings as
// (:Wallet)-[:BOUND_TO]->(:Device). Devices are keyed by a digest of the
// fingerprint so the raw value never leaves the service.
type IdentityGraph struct {
	log *logger.Logger
	// run executes one write statement; nil when no graph is configured.
	run func(ctx context.Context, cypher string, params map[string]any) error
	now func() time.Time
}

func NewIdentityGraph(client *neo4jdb.Client, baseLog *logger.Logger) *IdentityGraph {
	g := &IdentityGraph{log: baseLog.With("graph", "IdentityGraph"), now: time.Now}
	if client != nil && client.Driver != nil {
		g.run = func(ctx context.Context, cypher string, params map[string]any) error {
			return runWrite(ctx, client, cypher, params)
		}
	}
	return g
}

func DeviceKey(fingerprint string) string {
	sum := sha3.Sum256([]byte(fingerprint))
	return hex.EncodeToString(sum[:])
}

// EnsureSchema creates the uniqueness constraints. Failures are logged and
// projection continues without them.
func (g *IdentityGraph) EnsureSchema(ctx context.Context) {
	if g == nil || g.run == nil {
		return
	}
	for _, stmt := range identitySchema {
		if err := g.run(ctx, stmt, nil); err != nil {
			g.log.Warn("neo4j schema init failed (continuing)", "error", err)
		}
	}
}

func (g *IdentityGraph) ProjectBinding(ctx context.Context, reg domain.UserRegistration) error {
	if g == nil || g.run == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return g.run(ctx, upsertBinding, map[string]any{
		"wallet_key":      domain.WalletKey(reg.WalletAddress),
		"wallet_address":  reg.WalletAddress,
		"device_key":      DeviceKey(reg.DeviceFingerprint),
		"registration_id": reg.RegistrationID,
		"registered_at":   reg.RegisteredAt.UTC().Format(time.RFC3339Nano),
		"verified":        reg.Verified,
		"synced_at":       g.now().UTC().Format(time.RFC3339Nano),
	})
}

func runWrite(ctx context.Context, client *neo4jdb.Client, cypher string, params map[string]any) error {
	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
