package resolver

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/hazman-azhar/kitapay/backend/internal/domain"
)

// TopUpPlan describes how a shortfall on a target source gets funded before
// the primary payment executes.
type TopUpPlan struct {
	SourceID   string
	SourceName string
	Amount     decimal.Decimal
}

// PlanTopUp computes a top-up covering target's shortfall against amount,
// constrained by the stricter of the per-source and global auto-top-up caps.
// Both the rule-based and smart resolvers share this arithmetic so their
// plans always agree. When no permissible plan exists the plan is nil and
// the reason is a complete, user-facing sentence naming the shortfall.
func PlanTopUp(target domain.FundingSource, sources []domain.FundingSource, amount decimal.Decimal, currency string, cfg domain.GuardrailConfig, pref domain.FallbackPreference) (*TopUpPlan, string) {
	deficit := amount.Sub(target.Balance)
	if deficit.Sign() <= 0 {
		return nil, fmt.Sprintf("%s already holds enough to cover %s.", target.Name, domain.FormatAmount(currency, amount))
	}

	limit := target.MaxAutoTopUp
	if cfg.MaxAutoTopUpAmount.LessThan(limit) {
		limit = cfg.MaxAutoTopUpAmount
	}
	if limit.Sign() <= 0 {
		return nil, fmt.Sprintf("Automatic top-ups into %s are not allowed by your limits.", target.Name)
	}
	if deficit.GreaterThan(limit) {
		return nil, fmt.Sprintf("%s is short by %s, which is above your auto top-up limit of %s.",
			target.Name, domain.FormatAmount(currency, deficit), domain.FormatAmount(currency, limit))
	}

	donor := pickDonor(target, sources, deficit, pref)
	if donor == nil {
		return nil, fmt.Sprintf("No other funding source holds the %s needed to top up %s.",
			domain.FormatAmount(currency, deficit), target.Name)
	}

	return &TopUpPlan{
		SourceID:   donor.ID,
		SourceName: donor.Name,
		Amount:     deficit,
	}, ""
}

// pickDonor selects the funding source the top-up draws from: the
// best-priority usable source, other than the target, whose balance covers
// the deficit. FallbackAutoTopUpBank restricts donors to bank sources.
func pickDonor(target domain.FundingSource, sources []domain.FundingSource, deficit decimal.Decimal, pref domain.FallbackPreference) *domain.FundingSource {
	var eligible []domain.FundingSource
	for _, s := range sources {
		if !s.Usable() || s.ID == target.ID {
			continue
		}
		if pref == domain.FallbackAutoTopUpBank && s.Type != domain.RailTypeBank {
			continue
		}
		if s.Balance.GreaterThanOrEqual(deficit) {
			eligible = append(eligible, s)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Priority != eligible[j].Priority {
			return eligible[i].Priority < eligible[j].Priority
		}
		return eligible[i].Balance.GreaterThan(eligible[j].Balance)
	})
	return &eligible[0]
}
