package history

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory history store used for unit testing and for
// running the service without a graph database configured.
type MemoryStore struct {
	mu           sync.Mutex
	records      []PaymentRecord
	connectivity error
}

// NewMemoryStore instantiates an empty in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryStore) WithConnectivityError(err error) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

func (m *MemoryStore) RecordPayment(_ context.Context, rec PaymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *MemoryStore) RecentRailUsage(_ context.Context, userID string, since time.Time) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	usage := make(map[string]int)
	for _, rec := range m.records {
		if rec.UserID != userID || rec.Status != StatusSucceeded {
			continue
		}
		if rec.Timestamp.Before(since) {
			continue
		}
		usage[rec.Rail]++
	}
	return usage, nil
}

func (m *MemoryStore) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryStore) Close(context.Context) error {
	return nil
}

// Records returns a snapshot of stored payments.
func (m *MemoryStore) Records() []PaymentRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PaymentRecord(nil), m.records...)
}
