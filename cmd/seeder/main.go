// Command seeder provisions the Postgres schema and a demo user with linked
// funding sources, so the API can be exercised locally without the real
// linking flows.
package main

import (
	"context"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const demoUserID = "USR-DEMO"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS funding_sources (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		rail_type TEXT NOT NULL,
		name TEXT NOT NULL,
		balance NUMERIC(12,2) NOT NULL DEFAULT 0,
		is_linked BOOLEAN NOT NULL DEFAULT TRUE,
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		priority INT NOT NULL,
		max_auto_topup NUMERIC(12,2) NOT NULL DEFAULT 0,
		require_confirm_above NUMERIC(12,2) NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_funding_sources_user ON funding_sources (user_id, priority)`,
	`CREATE TABLE IF NOT EXISTS guardrails (
		user_id TEXT PRIMARY KEY,
		max_auto_topup_amount NUMERIC(12,2) NOT NULL,
		require_confirmation_above NUMERIC(12,2) NOT NULL,
		daily_auto_approve_cap NUMERIC(12,2) NOT NULL,
		fallback_preference TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_payment_state (
		user_id TEXT PRIMARY KEY,
		daily_auto_approved NUMERIC(12,2) NOT NULL DEFAULT 0,
		last_reset_date TEXT NOT NULL DEFAULT ''
	)`,
}

func main() {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN environment variable is required")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		log.Fatalf("unable to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	for _, stmt := range schema {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			log.Fatalf("schema setup failed: %v", err)
		}
	}

	var count int
	if err := conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM funding_sources WHERE user_id = $1", demoUserID).Scan(&count); err != nil {
		log.Fatalf("count check failed: %v", err)
	}
	if count > 0 {
		log.Printf("demo user already has %d funding sources, skipping", count)
		return
	}

	rows := [][]any{
		{uuid.NewString(), demoUserID, "wallet", "TouchNGo", decimal.NewFromInt(120), true, true, 1, decimal.NewFromInt(100), decimal.NewFromInt(200)},
		{uuid.NewString(), demoUserID, "wallet", "GrabPay", decimal.NewFromInt(45), true, true, 2, decimal.NewFromInt(50), decimal.Zero},
		{uuid.NewString(), demoUserID, "bank", "Maybank", decimal.NewFromInt(2500), true, true, 3, decimal.Zero, decimal.NewFromInt(500)},
		{uuid.NewString(), demoUserID, "bank", "DuitNow", decimal.NewFromInt(2500), true, true, 4, decimal.Zero, decimal.NewFromInt(500)},
	}

	copied, err := conn.CopyFrom(
		ctx,
		pgx.Identifier{"funding_sources"},
		[]string{"id", "user_id", "rail_type", "name", "balance", "is_linked", "is_available",
			"priority", "max_auto_topup", "require_confirm_above"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		log.Fatalf("bulk insert failed: %v", err)
	}

	if _, err := conn.Exec(ctx, `
		INSERT INTO guardrails (user_id, max_auto_topup_amount, require_confirmation_above,
		                        daily_auto_approve_cap, fallback_preference)
		VALUES ($1, 200, 250, 500, 'auto_topup_bank')
		ON CONFLICT (user_id) DO NOTHING`, demoUserID); err != nil {
		log.Fatalf("guardrail seed failed: %v", err)
	}

	log.Printf("seeded %d funding sources for %s", copied, demoUserID)
}
