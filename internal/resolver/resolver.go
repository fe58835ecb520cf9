// Package resolver implements the rule-based payment resolution engine: a
// pure, deterministic function from a payment request and a funding-source
// snapshot to an ordered execution plan. It performs no I/O and never
// mutates its inputs, so callers may invoke it freely from preview code.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hazman-azhar/kitapay/backend/internal/domain"
)

// Context carries everything the resolver needs beyond the request itself.
// Sources must be the caller's full current snapshot; stale data is the
// caller's responsibility.
type Context struct {
	Sources  []domain.FundingSource
	Config   domain.GuardrailConfig
	State    domain.UserPaymentState
	Fallback domain.FallbackPreference
}

// Resolve deterministically chooses one rail, or a top-up-then-pay sequence,
// for the request. Expected business outcomes (no source, incompatibility,
// insufficient funds) are reported as unsuccessful resolutions, never as
// panics or errors.
func Resolve(req domain.PaymentRequest, rc Context) domain.PaymentResolution {
	if req.Amount.Sign() <= 0 {
		return failed(domain.FailureInvalidRequest, "The payment amount must be greater than zero.")
	}

	usable := usableSources(rc.Sources)
	if len(usable) == 0 {
		return failed(domain.FailureNoFundingSource, "No funding source is linked and available. Link a wallet or bank account to continue.")
	}

	candidates := compatibleSources(usable, req.MerchantRails)
	if len(candidates) == 0 {
		return failed(domain.FailureNoCompatibleRail, "None of your linked payment methods are accepted for this payment.")
	}

	orderCandidates(candidates)

	for _, cand := range candidates {
		if !cand.CanCover(req.Amount) {
			continue
		}
		risk, note := assessRisk(req.Amount, cand, rc, false)
		return domain.PaymentResolution{
			Success:      true,
			ChosenRail:   cand.Name,
			FallbackRail: fallbackRail(candidates, cand.ID),
			RiskLevel:    risk,
			Steps: []domain.Step{
				{Action: domain.StepPay, SourceID: cand.ID, Amount: req.Amount},
			},
			Explanation: joinSentences(
				fmt.Sprintf("Using %s. The balance covers %s.", cand.Name, domain.FormatAmount(req.Currency, req.Amount)),
				note,
			),
		}
	}

	// No single candidate covers the amount, so plan a top-up into the
	// most preferred one.
	target := candidates[0]
	plan, reason := PlanTopUp(target, usable, req.Amount, req.Currency, rc.Config, rc.Fallback)
	if plan == nil {
		return failed(domain.FailureInsufficientFunds, reason)
	}

	risk, note := assessRisk(req.Amount, target, rc, true)
	return domain.PaymentResolution{
		Success:      true,
		ChosenRail:   target.Name,
		FallbackRail: fallbackRail(candidates, target.ID),
		TopUpNeeded:  true,
		TopUpAmount:  plan.Amount,
		RiskLevel:    risk,
		Steps: []domain.Step{
			{Action: domain.StepTopUp, SourceID: plan.SourceID, Amount: plan.Amount},
			{Action: domain.StepPay, SourceID: target.ID, Amount: req.Amount},
		},
		Explanation: joinSentences(
			fmt.Sprintf("Topping up %s into %s from %s, then paying %s via %s.",
				domain.FormatAmount(req.Currency, plan.Amount), target.Name, plan.SourceName,
				domain.FormatAmount(req.Currency, req.Amount), target.Name),
			note,
		),
	}
}

func failed(kind domain.FailureKind, explanation string) domain.PaymentResolution {
	return domain.PaymentResolution{
		Success:     false,
		Failure:     kind,
		RiskLevel:   domain.RiskHigh,
		TopUpAmount: decimal.Zero,
		Explanation: explanation,
	}
}

func usableSources(sources []domain.FundingSource) []domain.FundingSource {
	var out []domain.FundingSource
	for _, s := range sources {
		if s.Usable() {
			out = append(out, s)
		}
	}
	return out
}

// compatibleSources keeps sources the payee accepts. Universal rails pass
// regardless of the merchant list since they represent a generic
// bank-to-bank transfer.
func compatibleSources(sources []domain.FundingSource, merchantRails []string) []domain.FundingSource {
	if len(merchantRails) == 0 {
		return sources
	}
	accepted := make(map[string]struct{}, len(merchantRails))
	for _, name := range merchantRails {
		accepted[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	var out []domain.FundingSource
	for _, s := range sources {
		if _, ok := accepted[strings.ToLower(s.Name)]; ok || domain.IsUniversalRail(s.Name) {
			out = append(out, s)
		}
	}
	return out
}

// fallbackRail names the best-ranked candidate other than the chosen one, so
// a UI can offer a concrete alternative. Empty when the chosen rail is the
// only candidate.
func fallbackRail(candidates []domain.FundingSource, chosenID string) string {
	for _, c := range candidates {
		if c.ID != chosenID {
			return c.Name
		}
	}
	return ""
}

func orderCandidates(candidates []domain.FundingSource) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority < candidates[j].Priority
		}
		return candidates[i].Balance.GreaterThan(candidates[j].Balance)
	})
}

// assessRisk applies confirmation thresholds (the stricter of per-source and
// global), the daily auto-approval cap, and the always-ask fallback policy.
// Exceeding the daily cap forces confirmation rather than failing.
func assessRisk(amount decimal.Decimal, src domain.FundingSource, rc Context, topUp bool) (domain.RiskLevel, string) {
	if src.RequireConfirmAbove.Sign() > 0 && amount.GreaterThan(src.RequireConfirmAbove) {
		return domain.RiskHigh, fmt.Sprintf("This amount is above the confirmation limit you set for %s, so your approval is required.", src.Name)
	}
	if rc.Config.RequireConfirmationAbove.Sign() > 0 && amount.GreaterThan(rc.Config.RequireConfirmationAbove) {
		return domain.RiskHigh, "This amount is above your confirmation limit, so your approval is required."
	}
	if rc.Config.DailyAutoApproveCap.Sign() > 0 &&
		rc.State.DailyAutoApproved.Add(amount).GreaterThan(rc.Config.DailyAutoApproveCap) {
		return domain.RiskHigh, "Your daily auto-approval limit has been reached, so your approval is required."
	}
	if topUp && rc.Fallback == domain.FallbackAlwaysAsk {
		return domain.RiskHigh, "You chose to be asked before any top-up, so your approval is required."
	}
	return domain.RiskLow, ""
}

func joinSentences(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
