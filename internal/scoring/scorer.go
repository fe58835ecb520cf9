// Package scoring implements the smart resolver: an explainable, ranked view
// of every viable rail for a payment, scored across five weighted factors.
// Like the rule-based resolver it is pure; callers fetch sources, history,
// and connector health first and pass them in.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/hazman-azhar/kitapay/backend/internal/domain"
	"github.com/hazman-azhar/kitapay/backend/internal/resolver"
)

// Input is the full snapshot the scorer ranks against.
type Input struct {
	Amount   decimal.Decimal
	Currency string
	// IntentType labels the payment intent (pay_merchant, send_money,
	// pay_bill). It is carried for history lookups and explanations.
	IntentType string
	Sources    []domain.FundingSource
	// AcceptedRails merges the merchant's and recipient's accepted rail
	// names. Nil means acceptance is unspecified.
	AcceptedRails []string
	// PreferredRail is the recipient's preferred wallet, if stated.
	PreferredRail string
	// History maps rail name to the count of recent successful payments.
	History map[string]int
	// Health maps rail name to connector status.
	Health   map[string]domain.HealthStatus
	Config   domain.GuardrailConfig
	Fallback domain.FallbackPreference
}

type rankedCandidate struct {
	source domain.FundingSource
	scored domain.ScoredRail
}

// ScoreRails scores every linked source, ranks candidates by total score
// (ties broken by ascending priority), and computes any top-up the
// recommended rail requires using the same planner as the rule-based
// resolver. Zero compatible candidates is a normal unsuccessful result.
func ScoreRails(in Input) domain.SmartResolutionResult {
	if in.Amount.Sign() <= 0 {
		return domain.SmartResolutionResult{
			Success:     false,
			TopUpAmount: decimal.Zero,
			Explanation: "The payment amount must be greater than zero.",
		}
	}

	var ranked []rankedCandidate
	for _, src := range in.Sources {
		if !src.IsLinked {
			continue
		}
		scores := domain.FactorScores{
			Compatibility: compatibilityScore(src, in.AcceptedRails, in.PreferredRail),
			Balance:       balanceScore(src, in.Amount),
			Priority:      priorityScore(src.Priority),
			History:       historyScore(in.History[src.Name]),
			Health:        healthScore(src, in.Health),
		}
		total := WeightCompatibility*scores.Compatibility +
			WeightBalance*scores.Balance +
			WeightPriority*scores.Priority +
			WeightHistory*scores.History +
			WeightHealth*scores.Health
		ranked = append(ranked, rankedCandidate{
			source: src,
			scored: domain.ScoredRail{
				Name:            src.Name,
				FundingSourceID: src.ID,
				TotalScore:      total,
				Scores:          scores,
				Explanation:     explainCandidate(src, scores, in.Amount, in.Currency),
			},
		})
	}

	if len(ranked) == 0 {
		return domain.SmartResolutionResult{
			Success:     false,
			TopUpAmount: decimal.Zero,
			Explanation: "No funding source is linked. Link a wallet or bank account to continue.",
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].scored.TotalScore != ranked[j].scored.TotalScore {
			return ranked[i].scored.TotalScore > ranked[j].scored.TotalScore
		}
		return ranked[i].source.Priority < ranked[j].source.Priority
	})

	best := pickRecommendable(ranked)
	if best < 0 {
		return domain.SmartResolutionResult{
			Success:      false,
			Alternatives: scoredList(ranked),
			TopUpAmount:  decimal.Zero,
			Explanation:  "None of your linked payment methods are accepted for this payment.",
		}
	}

	recommended := ranked[best].scored
	result := domain.SmartResolutionResult{
		Success:         true,
		RecommendedRail: &recommended,
		TopUpAmount:     decimal.Zero,
		Explanation: fmt.Sprintf("Recommended %s with a score of %d out of 100.",
			recommended.Name, int(math.Round(recommended.TotalScore))),
	}
	for i, rc := range ranked {
		if i == best {
			continue
		}
		result.Alternatives = append(result.Alternatives, rc.scored)
	}

	target := ranked[best].source
	if !target.CanCover(in.Amount) {
		plan, reason := resolver.PlanTopUp(target, in.Sources, in.Amount, in.Currency, in.Config, in.Fallback)
		if plan != nil {
			result.RequiresTopUp = true
			result.TopUpAmount = plan.Amount
			result.TopUpSource = plan.SourceName
			result.Explanation += fmt.Sprintf(" A top-up of %s from %s is required first.",
				domain.FormatAmount(in.Currency, plan.Amount), plan.SourceName)
		} else {
			result.Explanation += " " + reason
		}
	}

	return result
}

// pickRecommendable returns the index of the best-ranked candidate that is
// actually executable: accepted by the payee and reachable through a live
// connector. Scored-but-incompatible rails stay visible as alternatives.
func pickRecommendable(ranked []rankedCandidate) int {
	for i, rc := range ranked {
		if rc.scored.Scores.Compatibility > 0 && rc.scored.Scores.Health > 0 {
			return i
		}
	}
	return -1
}

func scoredList(ranked []rankedCandidate) []domain.ScoredRail {
	out := make([]domain.ScoredRail, 0, len(ranked))
	for _, rc := range ranked {
		out = append(out, rc.scored)
	}
	return out
}

// explainCandidate builds a short deterministic sentence from the dominant
// factors. Same scores always produce the same wording.
func explainCandidate(src domain.FundingSource, scores domain.FactorScores, amount decimal.Decimal, currency string) string {
	var text string
	switch {
	case scores.Compatibility == 0:
		text = "Not accepted for this payment."
	case scores.Balance >= 100 && scores.Compatibility >= 100:
		text = "Accepted and fully funded."
	case scores.Balance >= 100:
		text = "Fully funded, though acceptance is unconfirmed."
	default:
		deficit := amount.Sub(src.Balance)
		text = fmt.Sprintf("Balance is short by %s.", domain.FormatAmount(currency, deficit))
	}
	if scores.Health == 0 {
		text += " The connector is currently unavailable."
	} else if scores.Health < 100 {
		text += " The connector is degraded."
	}
	if scores.History >= 50 {
		text += " You pay with this rail often."
	}
	return text
}
