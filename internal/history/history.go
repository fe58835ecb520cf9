// Package history records completed payments and answers the smart
// resolver's usage queries: how often has this user successfully paid
// through a given rail recently.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecord is one completed payment as stored in history.
type PaymentRecord struct {
	ID        string
	UserID    string
	Rail      string
	Amount    decimal.Decimal
	Currency  string
	Intent    string
	Status    string
	Timestamp time.Time
}

// StatusSucceeded marks payments that count toward the history factor.
const StatusSucceeded = "succeeded"

// Store is the contract required by the smart resolver's history factor.
type Store interface {
	RecordPayment(ctx context.Context, rec PaymentRecord) error
	RecentRailUsage(ctx context.Context, userID string, since time.Time) (map[string]int, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Options configures the graph-backed store.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
