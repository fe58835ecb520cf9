package domain

import "github.com/shopspring/decimal"

// GuardrailConfig is the user-level policy constraining autonomous payments.
type GuardrailConfig struct {
	// MaxAutoTopUpAmount is the global ceiling on a single automatic
	// top-up. The stricter of this and the per-source cap wins.
	MaxAutoTopUpAmount decimal.Decimal
	// RequireConfirmationAbove forces confirmation for amounts above the
	// threshold. Zero or negative disables the global threshold.
	RequireConfirmationAbove decimal.Decimal
	// DailyAutoApproveCap bounds the cumulative amount that may be
	// auto-approved in one day. Exceeding it forces confirmation, it
	// never fails the payment.
	DailyAutoApproveCap decimal.Decimal
}

// DefaultGuardrails applies when a user has not configured limits yet.
func DefaultGuardrails() GuardrailConfig {
	return GuardrailConfig{
		MaxAutoTopUpAmount:       decimal.NewFromInt(200),
		RequireConfirmationAbove: decimal.NewFromInt(250),
		DailyAutoApproveCap:      decimal.NewFromInt(500),
	}
}

// UserPaymentState is the rolling daily auto-approval counter. It is a plain
// value. Callers own persistence and must reset it through the resolver's
// get-or-reset helper before consulting or mutating it.
type UserPaymentState struct {
	DailyAutoApproved decimal.Decimal
	// LastResetDate is the UTC calendar date (YYYY-MM-DD) the counter was
	// last reset.
	LastResetDate string
}

// FallbackPreference states what the resolver should do when the preferred
// rail cannot cover the amount on its own.
type FallbackPreference string

const (
	// FallbackAlwaysAsk permits a top-up plan but always marks it for
	// explicit confirmation.
	FallbackAlwaysAsk FallbackPreference = "always_ask"
	// FallbackAutoTopUpBank funds top-ups from the best-priority linked
	// bank source.
	FallbackAutoTopUpBank FallbackPreference = "auto_topup_bank"
	// FallbackNextPriority funds top-ups from the next candidate of any
	// type with sufficient balance.
	FallbackNextPriority FallbackPreference = "next_priority"
)
