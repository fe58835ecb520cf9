// Package store persists funding-source snapshots and user payment policy.
// The resolution engine itself never touches storage; this package serves the
// orchestration layer that feeds it.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hazman-azhar/kitapay/backend/internal/domain"
)

var (
	ErrSourceNotFound = errors.New("funding source not found")
)

// Store is the Postgres-backed funding-source and user-state store.
type Store struct {
	db *pgxpool.Pool
}

// NewStore opens a connection pool against the provided DSN and verifies it.
func NewStore(ctx context.Context, dsn string, maxConns int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{db: pool}, nil
}

// Ping verifies connectivity, used by health probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.db.Close()
}

// SourcesByUser returns the user's full funding-source snapshot ordered by
// priority.
func (s *Store) SourcesByUser(ctx context.Context, userID string) ([]domain.FundingSource, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, rail_type, name, balance, is_linked, is_available,
		       priority, max_auto_topup, require_confirm_above
		FROM funding_sources
		WHERE user_id = $1
		ORDER BY priority ASC, balance DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query funding sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.FundingSource
	for rows.Next() {
		var src domain.FundingSource
		var railType string
		if err := rows.Scan(&src.ID, &src.UserID, &railType, &src.Name, &src.Balance,
			&src.IsLinked, &src.IsAvailable, &src.Priority, &src.MaxAutoTopUp,
			&src.RequireConfirmAbove); err != nil {
			return nil, fmt.Errorf("scan funding source: %w", err)
		}
		src.Type = domain.RailType(railType)
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate funding sources: %w", err)
	}
	return sources, nil
}

// UpdateBalance stores a freshly synced balance for one source.
func (s *Store) UpdateBalance(ctx context.Context, sourceID string, balance decimal.Decimal) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE funding_sources SET balance = $1 WHERE id = $2", balance, sourceID)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSourceNotFound
	}
	return nil
}

// UpdateLinkedStatus flips a source's consent flag.
func (s *Store) UpdateLinkedStatus(ctx context.Context, sourceID string, linked bool) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE funding_sources SET is_linked = $1 WHERE id = $2", linked, sourceID)
	if err != nil {
		return fmt.Errorf("update linked status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSourceNotFound
	}
	return nil
}

// Guardrails returns the user's guardrail config and fallback preference,
// falling back to defaults when the user has not configured any.
func (s *Store) Guardrails(ctx context.Context, userID string) (domain.GuardrailConfig, domain.FallbackPreference, error) {
	var cfg domain.GuardrailConfig
	var fallback string
	err := s.db.QueryRow(ctx, `
		SELECT max_auto_topup_amount, require_confirmation_above,
		       daily_auto_approve_cap, fallback_preference
		FROM guardrails WHERE user_id = $1`, userID).
		Scan(&cfg.MaxAutoTopUpAmount, &cfg.RequireConfirmationAbove,
			&cfg.DailyAutoApproveCap, &fallback)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultGuardrails(), domain.FallbackAutoTopUpBank, nil
	}
	if err != nil {
		return domain.GuardrailConfig{}, "", fmt.Errorf("query guardrails: %w", err)
	}
	return cfg, domain.FallbackPreference(fallback), nil
}

// UserState returns the user's rolling daily counter, zero-valued when no
// row exists yet. Callers must pass it through the resolver's get-or-reset
// helper before use.
func (s *Store) UserState(ctx context.Context, userID string) (domain.UserPaymentState, error) {
	var state domain.UserPaymentState
	err := s.db.QueryRow(ctx, `
		SELECT daily_auto_approved, last_reset_date
		FROM user_payment_state WHERE user_id = $1`, userID).
		Scan(&state.DailyAutoApproved, &state.LastResetDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserPaymentState{DailyAutoApproved: decimal.Zero}, nil
	}
	if err != nil {
		return domain.UserPaymentState{}, fmt.Errorf("query user state: %w", err)
	}
	return state, nil
}

// SaveUserState upserts the user's daily counter.
func (s *Store) SaveUserState(ctx context.Context, userID string, state domain.UserPaymentState) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_payment_state (user_id, daily_auto_approved, last_reset_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET daily_auto_approved = $2, last_reset_date = $3`,
		userID, state.DailyAutoApproved, state.LastResetDate)
	if err != nil {
		return fmt.Errorf("save user state: %w", err)
	}
	return nil
}
