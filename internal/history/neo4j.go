package history

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// NewNeo4jStore establishes a Bolt connection using the official Neo4j
// driver. Payments are modeled as (:User)-[:MADE]->(:Payment)-[:VIA]->(:Rail)
// so rail-usage counts and cross-user rail analytics stay cheap.
func NewNeo4jStore(ctx context.Context, opts Options) (Store, error) {
	if opts.URI == "" {
		return nil, ErrMissingURI
	}

	auth := neo4j.NoAuth()
	if opts.Username != "" {
		auth = neo4j.BasicAuth(opts.Username, opts.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, auth, func(c *neo4j.Config) {
		if opts.MaxConnections > 0 {
			c.MaxConnectionPoolSize = opts.MaxConnections
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify graph connectivity: %w", err)
	}

	return &neo4jStore{
		driver:   driver,
		database: opts.Database,
	}, nil
}

type neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

func (s *neo4jStore) RecordPayment(ctx context.Context, rec PaymentRecord) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	amount, _ := rec.Amount.Float64()
	_, err := session.Run(ctx, `
		MERGE (u:User {id: $userId})
		MERGE (r:Rail {name: $rail})
		CREATE (p:Payment {
			id: $id, amount: $amount, currency: $currency,
			intent: $intent, status: $status, ts: $ts
		})
		CREATE (u)-[:MADE]->(p)
		CREATE (p)-[:VIA]->(r)`,
		map[string]any{
			"userId":   rec.UserID,
			"rail":     rec.Rail,
			"id":       rec.ID,
			"amount":   amount,
			"currency": rec.Currency,
			"intent":   rec.Intent,
			"status":   rec.Status,
			"ts":       rec.Timestamp.UTC().UnixMilli(),
		})
	if err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	return nil
}

func (s *neo4jStore) RecentRailUsage(ctx context.Context, userID string, since time.Time) (map[string]int, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, `
		MATCH (u:User {id: $userId})-[:MADE]->(p:Payment)-[:VIA]->(r:Rail)
		WHERE p.status = $status AND p.ts >= $since
		RETURN r.name AS rail, count(p) AS uses`,
		map[string]any{
			"userId": userID,
			"status": StatusSucceeded,
			"since":  since.UTC().UnixMilli(),
		})
	if err != nil {
		return nil, fmt.Errorf("query rail usage: %w", err)
	}

	usage := make(map[string]int)
	for res.Next(ctx) {
		rec := res.Record()
		rail, _ := rec.Get("rail")
		uses, _ := rec.Get("uses")
		name, ok := rail.(string)
		if !ok {
			continue
		}
		if count, ok := uses.(int64); ok {
			usage[name] = int(count)
		}
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("consume rail usage: %w", err)
	}
	return usage, nil
}

func (s *neo4jStore) VerifyConnectivity(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

func (s *neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
