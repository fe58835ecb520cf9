package domain

import "github.com/shopspring/decimal"

// FundingSource is a point-in-time snapshot of one linked payment instrument.
// The resolution engine only ever reads these values; balance and link status
// are mutated by external sync jobs and connection flows, never by resolvers.
type FundingSource struct {
	ID          string
	UserID      string
	Type        RailType
	Name        string
	Balance     decimal.Decimal
	IsLinked    bool
	IsAvailable bool
	// Priority orders user preference: lower is more preferred.
	Priority int
	// MaxAutoTopUp caps any single automatic top-up transfer into this
	// source. Zero means the source must never be auto topped up.
	MaxAutoTopUp decimal.Decimal
	// RequireConfirmAbove forces user confirmation for amounts above the
	// threshold. Zero or negative disables the per-source threshold.
	RequireConfirmAbove decimal.Decimal
}

// Usable reports whether the source may participate in resolution at all.
// Unlinked sources must never fund or receive a top-up; unavailable sources
// are excluded even while linked.
func (s FundingSource) Usable() bool {
	return s.IsLinked && s.IsAvailable
}

// CanCover reports whether the cached balance covers the requested amount.
func (s FundingSource) CanCover(amount decimal.Decimal) bool {
	return s.Balance.GreaterThanOrEqual(amount)
}
