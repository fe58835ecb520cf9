package store

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/hazman-azhar/kitapay/backend/internal/domain"
)

// MemoryStore is an in-memory implementation of the funding-source store,
// used for unit testing and local development without Postgres.
type MemoryStore struct {
	mu        sync.Mutex
	sources   map[string]domain.FundingSource
	config    map[string]domain.GuardrailConfig
	fallback  map[string]domain.FallbackPreference
	userState map[string]domain.UserPaymentState
}

// NewMemoryStore instantiates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sources:   make(map[string]domain.FundingSource),
		config:    make(map[string]domain.GuardrailConfig),
		fallback:  make(map[string]domain.FallbackPreference),
		userState: make(map[string]domain.UserPaymentState),
	}
}

// AddSource seeds a funding source.
func (m *MemoryStore) AddSource(src domain.FundingSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[src.ID] = src
}

// SetGuardrails seeds a user's guardrail config and fallback preference.
func (m *MemoryStore) SetGuardrails(userID string, cfg domain.GuardrailConfig, pref domain.FallbackPreference) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config[userID] = cfg
	m.fallback[userID] = pref
}

func (m *MemoryStore) SourcesByUser(_ context.Context, userID string) ([]domain.FundingSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.FundingSource
	for _, src := range m.sources {
		if src.UserID == userID {
			out = append(out, src)
		}
	}
	return out, nil
}

func (m *MemoryStore) UpdateBalance(_ context.Context, sourceID string, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.sources[sourceID]
	if !ok {
		return ErrSourceNotFound
	}
	src.Balance = balance
	m.sources[sourceID] = src
	return nil
}

func (m *MemoryStore) UpdateLinkedStatus(_ context.Context, sourceID string, linked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.sources[sourceID]
	if !ok {
		return ErrSourceNotFound
	}
	src.IsLinked = linked
	m.sources[sourceID] = src
	return nil
}

func (m *MemoryStore) Guardrails(_ context.Context, userID string) (domain.GuardrailConfig, domain.FallbackPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.config[userID]
	if !ok {
		return domain.DefaultGuardrails(), domain.FallbackAutoTopUpBank, nil
	}
	return cfg, m.fallback[userID], nil
}

func (m *MemoryStore) UserState(_ context.Context, userID string) (domain.UserPaymentState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.userState[userID]
	if !ok {
		return domain.UserPaymentState{DailyAutoApproved: decimal.Zero}, nil
	}
	return state, nil
}

func (m *MemoryStore) SaveUserState(_ context.Context, userID string, state domain.UserPaymentState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userState[userID] = state
	return nil
}
