package resolver

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hazman-azhar/kitapay/backend/internal/domain"
)

// GetOrResetDailyState returns the state unchanged when its counter was last
// reset on the current UTC calendar date, otherwise a fresh zeroed state
// stamped with today. Callers must pass state through here before consulting
// or mutating the daily counter.
func GetOrResetDailyState(state domain.UserPaymentState, now time.Time) domain.UserPaymentState {
	today := now.UTC().Format(time.DateOnly)
	if state.LastResetDate == today {
		return state
	}
	return domain.UserPaymentState{
		DailyAutoApproved: decimal.Zero,
		LastResetDate:     today,
	}
}

// RecordAutoApprovedPayment returns a new state with the amount added to the
// daily auto-approved counter. The input value is not mutated.
func RecordAutoApprovedPayment(state domain.UserPaymentState, amount decimal.Decimal) domain.UserPaymentState {
	state.DailyAutoApproved = state.DailyAutoApproved.Add(amount)
	return state
}
