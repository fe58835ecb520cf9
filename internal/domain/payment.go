package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentRequest describes one payment to resolve.
type PaymentRequest struct {
	Amount     decimal.Decimal
	Currency   string
	IntentID   string
	MerchantID string
	// MerchantRails lists rail names the payee accepts. Empty means the
	// payee accepts anything.
	MerchantRails []string
}

// StepAction distinguishes execution plan steps.
type StepAction string

const (
	StepTopUp StepAction = "top_up"
	StepPay   StepAction = "pay"
)

// Step is one entry of an ordered execution plan.
type Step struct {
	Action   StepAction
	SourceID string
	Amount   decimal.Decimal
}

// RiskLevel signals whether the caller must collect explicit confirmation
// before executing the plan.
type RiskLevel string

const (
	RiskLow  RiskLevel = "low"
	RiskHigh RiskLevel = "high"
)

// FailureKind classifies expected business failures. These are reported as
// structured results rather than errors so UI layers can render them.
type FailureKind string

const (
	FailureNone              FailureKind = ""
	FailureNoFundingSource   FailureKind = "no_funding_source"
	FailureNoCompatibleRail  FailureKind = "no_compatible_rail"
	FailureInsufficientFunds FailureKind = "insufficient_funds"
	FailureInvalidRequest    FailureKind = "invalid_request"
)

// PaymentResolution is the rule-based resolver's decision for one request.
// Produced fresh per call and never persisted by the engine.
type PaymentResolution struct {
	Success      bool
	Failure      FailureKind
	Steps        []Step
	ChosenRail   string
	FallbackRail string
	TopUpNeeded  bool
	TopUpAmount  decimal.Decimal
	RiskLevel    RiskLevel
	Explanation  string
}

// FormatAmount renders a monetary amount for user-facing explanations.
func FormatAmount(currency string, amount decimal.Decimal) string {
	symbol := strings.ToUpper(strings.TrimSpace(currency))
	if symbol == "MYR" || symbol == "" {
		symbol = "RM"
	}
	return symbol + " " + amount.StringFixed(2)
}
