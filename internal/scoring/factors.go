package scoring

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hazman-azhar/kitapay/backend/internal/domain"
)

// Factor weights. They must sum to 1 exactly; the scorer's tests pin this.
const (
	WeightCompatibility = 0.35
	WeightBalance       = 0.30
	WeightPriority      = 0.15
	WeightHistory       = 0.10
	WeightHealth        = 0.10
)

// compatibilityScore is 100 when the rail is in the accepted set (or is a
// universal bank-transfer rail), 0 when an accepted set exists and excludes
// it, and a neutral 50 when no acceptance information was supplied.
func compatibilityScore(src domain.FundingSource, accepted []string, preferred string) float64 {
	if domain.IsUniversalRail(src.Name) {
		return 100
	}
	if preferred != "" && strings.EqualFold(src.Name, preferred) {
		return 100
	}
	if len(accepted) == 0 {
		return 50
	}
	for _, name := range accepted {
		if strings.EqualFold(strings.TrimSpace(name), src.Name) {
			return 100
		}
	}
	return 0
}

// balanceScore is 100 for a fully funded source. Partially funded sources
// score proportionally to the covered share of the amount, scaled to at most
// 80 so they always rank below any fully funded source on this factor, and 0
// when the balance is zero. Monotonic in balance.
func balanceScore(src domain.FundingSource, amount decimal.Decimal) float64 {
	if src.CanCover(amount) {
		return 100
	}
	if src.Balance.Sign() <= 0 {
		return 0
	}
	ratio, _ := src.Balance.Div(amount).Float64()
	return math.Round(80 * ratio)
}

// priorityScore maps the stored preference rank onto 0-100: rank 1 scores
// 100 and each further rank costs 15 points, floored at 10 so a low-ranked
// but viable rail is never zeroed out by preference alone.
func priorityScore(priority int) float64 {
	if priority < 1 {
		priority = 1
	}
	score := 100 - float64(priority-1)*15
	if score < 10 {
		return 10
	}
	return score
}

// historyScore grows with the count of recent successful payments on the
// rail: 20 + 10 per payment, capped at 100. No history is a neutral 20
// rather than a penalty.
func historyScore(count int) float64 {
	if count < 0 {
		count = 0
	}
	score := 20 + float64(count)*10
	if score > 100 {
		return 100
	}
	return score
}

// healthScore reflects connector status. A source flagged unavailable in the
// snapshot scores 0 regardless of what the health registry reports.
func healthScore(src domain.FundingSource, statuses map[string]domain.HealthStatus) float64 {
	if !src.IsAvailable {
		return 0
	}
	switch statuses[src.Name] {
	case domain.HealthDegraded:
		return 40
	case domain.HealthUnavailable:
		return 0
	default:
		return 100
	}
}
