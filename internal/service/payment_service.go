package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hazman-azhar/kitapay/backend/internal/domain"
	"github.com/hazman-azhar/kitapay/backend/internal/history"
	"github.com/hazman-azhar/kitapay/backend/internal/resolver"
	"github.com/hazman-azhar/kitapay/backend/internal/scoring"
)

// FundingStore is the storage contract for funding sources and user policy.
type FundingStore interface {
	SourcesByUser(ctx context.Context, userID string) ([]domain.FundingSource, error)
	UpdateBalance(ctx context.Context, sourceID string, balance decimal.Decimal) error
	UpdateLinkedStatus(ctx context.Context, sourceID string, linked bool) error
	Guardrails(ctx context.Context, userID string) (domain.GuardrailConfig, domain.FallbackPreference, error)
	UserState(ctx context.Context, userID string) (domain.UserPaymentState, error)
	SaveUserState(ctx context.Context, userID string, state domain.UserPaymentState) error
}

// HistoryStore supplies recent successful-payment counts per rail and
// records completed payments.
type HistoryStore interface {
	RecordPayment(ctx context.Context, rec history.PaymentRecord) error
	RecentRailUsage(ctx context.Context, userID string, since time.Time) (map[string]int, error)
}

// HealthStore supplies per-rail connector status.
type HealthStore interface {
	Statuses(ctx context.Context) (map[string]domain.HealthStatus, error)
}

// PaymentService orchestrates resolution: it fetches snapshots from the
// collaborator stores, invokes the pure resolvers, and owns the
// read-modify-write cycle for the user's daily payment state.
type PaymentService struct {
	store    FundingStore
	history  HistoryStore
	health   HealthStore
	lookback time.Duration
	nowFn    func() time.Time
}

// NewPaymentService constructs a PaymentService. A non-positive lookback
// defaults to thirty days.
func NewPaymentService(store FundingStore, hist HistoryStore, health HealthStore, lookback time.Duration) *PaymentService {
	if lookback <= 0 {
		lookback = 30 * 24 * time.Hour
	}
	return &PaymentService{
		store:    store,
		history:  hist,
		health:   health,
		lookback: lookback,
		nowFn:    time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *PaymentService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// ResolveParams describes one rule-based resolution request.
type ResolveParams struct {
	UserID        string
	Amount        decimal.Decimal
	Currency      string
	IntentID      string
	MerchantID    string
	MerchantRails []string
}

// Resolve fetches the user's snapshot and runs the rule-based resolver. The
// returned resolution is a plan only; nothing is debited or persisted here.
func (s *PaymentService) Resolve(ctx context.Context, p ResolveParams) (domain.PaymentResolution, error) {
	if p.UserID == "" {
		return domain.PaymentResolution{}, fmt.Errorf("user ID is required")
	}

	sources, err := s.store.SourcesByUser(ctx, p.UserID)
	if err != nil {
		return domain.PaymentResolution{}, fmt.Errorf("fetch funding sources: %w", err)
	}
	cfg, fallback, err := s.store.Guardrails(ctx, p.UserID)
	if err != nil {
		return domain.PaymentResolution{}, fmt.Errorf("fetch guardrails: %w", err)
	}
	state, err := s.store.UserState(ctx, p.UserID)
	if err != nil {
		return domain.PaymentResolution{}, fmt.Errorf("fetch user state: %w", err)
	}

	intentID := p.IntentID
	if intentID == "" {
		intentID = uuid.NewString()
	}

	req := domain.PaymentRequest{
		Amount:        p.Amount,
		Currency:      p.Currency,
		IntentID:      intentID,
		MerchantID:    p.MerchantID,
		MerchantRails: p.MerchantRails,
	}
	return resolver.Resolve(req, resolver.Context{
		Sources:  sources,
		Config:   cfg,
		State:    resolver.GetOrResetDailyState(state, s.nowFn()),
		Fallback: fallback,
	}), nil
}

// SmartResolveParams describes one smart resolution request.
type SmartResolveParams struct {
	UserID                   string
	Amount                   decimal.Decimal
	Currency                 string
	IntentType               string
	MerchantRails            []string
	RecipientWallets         []string
	RecipientPreferredWallet string
}

// SmartResolve fetches sources, recent rail usage, and connector health, then
// runs the pure scorer to produce a ranked, explained view of viable rails.
func (s *PaymentService) SmartResolve(ctx context.Context, p SmartResolveParams) (domain.SmartResolutionResult, error) {
	if p.UserID == "" {
		return domain.SmartResolutionResult{}, fmt.Errorf("user ID is required")
	}

	sources, err := s.store.SourcesByUser(ctx, p.UserID)
	if err != nil {
		return domain.SmartResolutionResult{}, fmt.Errorf("fetch funding sources: %w", err)
	}
	cfg, fallback, err := s.store.Guardrails(ctx, p.UserID)
	if err != nil {
		return domain.SmartResolutionResult{}, fmt.Errorf("fetch guardrails: %w", err)
	}

	since := s.nowFn().Add(-s.lookback)
	usage, err := s.history.RecentRailUsage(ctx, p.UserID, since)
	if err != nil {
		return domain.SmartResolutionResult{}, fmt.Errorf("fetch rail usage: %w", err)
	}
	statuses, err := s.health.Statuses(ctx)
	if err != nil {
		return domain.SmartResolutionResult{}, fmt.Errorf("fetch connector health: %w", err)
	}

	accepted := mergeAccepted(p.MerchantRails, p.RecipientWallets)
	return scoring.ScoreRails(scoring.Input{
		Amount:        p.Amount,
		Currency:      p.Currency,
		IntentType:    p.IntentType,
		Sources:       sources,
		AcceptedRails: accepted,
		PreferredRail: p.RecipientPreferredWallet,
		History:       usage,
		Health:        statuses,
		Config:        cfg,
		Fallback:      fallback,
	}), nil
}

// Sources returns the user's funding-source snapshot for display.
func (s *PaymentService) Sources(ctx context.Context, userID string) ([]domain.FundingSource, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	return s.store.SourcesByUser(ctx, userID)
}

// CompletedPayment reports one payment that actually executed.
type CompletedPayment struct {
	UserID       string
	Rail         string
	Amount       decimal.Decimal
	Currency     string
	IntentType   string
	AutoApproved bool
}

// CompletePayment records a finished payment: it bumps the daily
// auto-approval counter when the payment ran without explicit confirmation
// and appends the payment to history. Resolution itself never calls this;
// balances and counters change only after the caller executed the plan.
func (s *PaymentService) CompletePayment(ctx context.Context, cp CompletedPayment) (domain.UserPaymentState, error) {
	if cp.UserID == "" {
		return domain.UserPaymentState{}, fmt.Errorf("user ID is required")
	}
	if cp.Amount.Sign() <= 0 {
		return domain.UserPaymentState{}, fmt.Errorf("amount must be positive")
	}

	now := s.nowFn()
	state, err := s.store.UserState(ctx, cp.UserID)
	if err != nil {
		return domain.UserPaymentState{}, fmt.Errorf("fetch user state: %w", err)
	}
	state = resolver.GetOrResetDailyState(state, now)
	if cp.AutoApproved {
		state = resolver.RecordAutoApprovedPayment(state, cp.Amount)
	}
	if err := s.store.SaveUserState(ctx, cp.UserID, state); err != nil {
		return domain.UserPaymentState{}, fmt.Errorf("save user state: %w", err)
	}

	rec := history.PaymentRecord{
		ID:        uuid.NewString(),
		UserID:    cp.UserID,
		Rail:      cp.Rail,
		Amount:    cp.Amount,
		Currency:  cp.Currency,
		Intent:    cp.IntentType,
		Status:    history.StatusSucceeded,
		Timestamp: now,
	}
	if err := s.history.RecordPayment(ctx, rec); err != nil {
		return domain.UserPaymentState{}, fmt.Errorf("record payment history: %w", err)
	}
	return state, nil
}

func mergeAccepted(merchantRails, recipientWallets []string) []string {
	if len(merchantRails) == 0 && len(recipientWallets) == 0 {
		return nil
	}
	merged := make([]string, 0, len(merchantRails)+len(recipientWallets))
	merged = append(merged, merchantRails...)
	merged = append(merged, recipientWallets...)
	return merged
}
