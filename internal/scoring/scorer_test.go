package scoring

import (
	"math"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hazman-azhar/kitapay/backend/internal/domain"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func source(id, name string, kind domain.RailType, balance int64, priority int) domain.FundingSource {
	return domain.FundingSource{
		ID:           id,
		UserID:       "USR-1",
		Type:         kind,
		Name:         name,
		Balance:      dec(balance),
		IsLinked:     true,
		IsAvailable:  true,
		Priority:     priority,
		MaxAutoTopUp: dec(100),
	}
}

func guardrails() domain.GuardrailConfig {
	return domain.GuardrailConfig{
		MaxAutoTopUpAmount:       dec(200),
		RequireConfirmationAbove: dec(250),
		DailyAutoApproveCap:      dec(500),
	}
}

const scoreTolerance = 1e-9

func TestWeightsSumToOne(t *testing.T) {
	sum := WeightCompatibility + WeightBalance + WeightPriority + WeightHistory + WeightHealth
	if math.Abs(sum-1.0) > scoreTolerance {
		t.Fatalf("weights sum to %v, want 1", sum)
	}
}

func TestScoreRails_FullyFundedBeatsPartial(t *testing.T) {
	in := Input{
		Amount:   dec(100),
		Currency: "MYR",
		Sources: []domain.FundingSource{
			source("FS-1", "TouchNGo", domain.RailTypeWallet, 10, 1),
			source("FS-2", "Maybank", domain.RailTypeBank, 500, 3),
		},
		AcceptedRails: []string{"TouchNGo", "Maybank"},
		Config:        guardrails(),
		Fallback:      domain.FallbackAutoTopUpBank,
	}

	result := ScoreRails(in)

	if !result.Success {
		t.Fatalf("expected success, got %s", result.Explanation)
	}
	if result.RecommendedRail == nil || result.RecommendedRail.Name != "Maybank" {
		t.Fatalf("expected the funded bank to be recommended, got %+v", result.RecommendedRail)
	}

	// compat 100, balance 100, priority 70, history 20, health 100.
	wantBank := 0.35*100 + 0.30*100 + 0.15*70 + 0.10*20 + 0.10*100
	if math.Abs(result.RecommendedRail.TotalScore-wantBank) > scoreTolerance {
		t.Errorf("bank score %v, want %v", result.RecommendedRail.TotalScore, wantBank)
	}
	if len(result.Alternatives) != 1 {
		t.Fatalf("expected 1 alternative, got %d", len(result.Alternatives))
	}
	// compat 100, balance round(80*10/100)=8, priority 100, history 20,
	// health 100.
	wantWallet := 0.35*100 + 0.30*8 + 0.15*100 + 0.10*20 + 0.10*100
	if math.Abs(result.Alternatives[0].TotalScore-wantWallet) > scoreTolerance {
		t.Errorf("wallet score %v, want %v", result.Alternatives[0].TotalScore, wantWallet)
	}
}

func TestScoreRails_HistoryChangesRanking(t *testing.T) {
	in := Input{
		Amount:   dec(50),
		Currency: "MYR",
		Sources: []domain.FundingSource{
			source("FS-1", "TouchNGo", domain.RailTypeWallet, 120, 1),
			source("FS-2", "GrabPay", domain.RailTypeWallet, 200, 2),
		},
		History:  map[string]int{"GrabPay": 5},
		Config:   guardrails(),
		Fallback: domain.FallbackAutoTopUpBank,
	}

	result := ScoreRails(in)

	if result.RecommendedRail == nil || result.RecommendedRail.Name != "GrabPay" {
		t.Fatalf("expected frequent use of GrabPay to outweigh priority, got %+v", result.RecommendedRail)
	}
}

func TestScoreRails_UnavailableConnectorNeverRecommended(t *testing.T) {
	in := Input{
		Amount:   dec(50),
		Currency: "MYR",
		Sources: []domain.FundingSource{
			source("FS-1", "TouchNGo", domain.RailTypeWallet, 500, 1),
			source("FS-2", "GrabPay", domain.RailTypeWallet, 500, 2),
		},
		AcceptedRails: []string{"TouchNGo", "GrabPay"},
		History:       map[string]int{"TouchNGo": 8},
		Health:        map[string]domain.HealthStatus{"TouchNGo": domain.HealthUnavailable},
		Config:        guardrails(),
		Fallback:      domain.FallbackAutoTopUpBank,
	}

	result := ScoreRails(in)

	if !result.Success {
		t.Fatalf("expected success, got %s", result.Explanation)
	}
	if result.RecommendedRail.Name != "GrabPay" {
		t.Errorf("a rail with a dead connector must not be recommended, got %s", result.RecommendedRail.Name)
	}
	if result.RecommendedRail.Scores.Health != 100 {
		t.Errorf("expected a healthy recommendation, got health %v", result.RecommendedRail.Scores.Health)
	}
}

func TestScoreRails_AllIncompatible(t *testing.T) {
	in := Input{
		Amount:   dec(50),
		Currency: "MYR",
		Sources: []domain.FundingSource{
			source("FS-1", "TouchNGo", domain.RailTypeWallet, 500, 1),
			source("FS-2", "GrabPay", domain.RailTypeWallet, 500, 2),
		},
		AcceptedRails: []string{"Visa"},
		Config:        guardrails(),
		Fallback:      domain.FallbackAutoTopUpBank,
	}

	result := ScoreRails(in)

	if result.Success {
		t.Fatal("expected failure when no linked rail is accepted")
	}
	if len(result.Alternatives) != 2 {
		t.Errorf("incompatible rails should stay visible, got %d alternatives", len(result.Alternatives))
	}
}

func TestScoreRails_TopUpOnRecommendedRail(t *testing.T) {
	in := Input{
		Amount:   dec(50),
		Currency: "MYR",
		Sources: []domain.FundingSource{
			source("FS-1", "TouchNGo", domain.RailTypeWallet, 20, 1),
			source("FS-2", "Maybank", domain.RailTypeBank, 500, 2),
		},
		AcceptedRails: []string{"TouchNGo"},
		Config:        guardrails(),
		Fallback:      domain.FallbackAutoTopUpBank,
	}

	result := ScoreRails(in)

	if result.RecommendedRail == nil || result.RecommendedRail.Name != "TouchNGo" {
		t.Fatalf("expected the only accepted rail to be recommended, got %+v", result.RecommendedRail)
	}
	if !result.RequiresTopUp {
		t.Fatal("expected a top-up on the underfunded recommendation")
	}
	if !result.TopUpAmount.Equal(dec(30)) {
		t.Errorf("expected top-up of 30, got %s", result.TopUpAmount)
	}
	if result.TopUpSource != "Maybank" {
		t.Errorf("expected the bank as donor, got %s", result.TopUpSource)
	}
}

func TestScoreRails_SkipsUnlinked(t *testing.T) {
	unlinked := source("FS-1", "TouchNGo", domain.RailTypeWallet, 500, 1)
	unlinked.IsLinked = false

	in := Input{
		Amount:   dec(50),
		Currency: "MYR",
		Sources:  []domain.FundingSource{unlinked, source("FS-2", "GrabPay", domain.RailTypeWallet, 500, 2)},
		Config:   guardrails(),
		Fallback: domain.FallbackAutoTopUpBank,
	}

	result := ScoreRails(in)

	if result.RecommendedRail == nil || result.RecommendedRail.Name != "GrabPay" {
		t.Fatalf("unlinked sources must not be scored, got %+v", result.RecommendedRail)
	}
	if len(result.Alternatives) != 0 {
		t.Errorf("unlinked sources must not appear as alternatives, got %d", len(result.Alternatives))
	}
}

func TestScoreRails_InvalidAmount(t *testing.T) {
	result := ScoreRails(Input{Amount: decimal.Zero, Currency: "MYR"})
	if result.Success {
		t.Fatal("expected failure for a zero amount")
	}
}

func TestScoreRails_ScoresWithinBounds(t *testing.T) {
	in := Input{
		Amount:   dec(75),
		Currency: "MYR",
		Sources: []domain.FundingSource{
			source("FS-1", "TouchNGo", domain.RailTypeWallet, 30, 1),
			source("FS-2", "GrabPay", domain.RailTypeWallet, 0, 5),
			source("FS-3", "DuitNow", domain.RailTypeBank, 1000, 9),
		},
		AcceptedRails: []string{"TouchNGo"},
		History:       map[string]int{"TouchNGo": 42},
		Config:        guardrails(),
		Fallback:      domain.FallbackAutoTopUpBank,
	}

	result := ScoreRails(in)

	all := append([]domain.ScoredRail{}, result.Alternatives...)
	if result.RecommendedRail != nil {
		all = append(all, *result.RecommendedRail)
	}
	for _, sr := range all {
		if sr.TotalScore < 0 || sr.TotalScore > 100 {
			t.Errorf("%s total %v out of range", sr.Name, sr.TotalScore)
		}
		for name, v := range map[string]float64{
			"compatibility": sr.Scores.Compatibility,
			"balance":       sr.Scores.Balance,
			"priority":      sr.Scores.Priority,
			"history":       sr.Scores.History,
			"health":        sr.Scores.Health,
		} {
			if v < 0 || v > 100 {
				t.Errorf("%s %s factor %v out of range", sr.Name, name, v)
			}
		}
	}
}

func TestScoreRails_Deterministic(t *testing.T) {
	in := Input{
		Amount:   dec(60),
		Currency: "MYR",
		Sources: []domain.FundingSource{
			source("FS-1", "TouchNGo", domain.RailTypeWallet, 30, 1),
			source("FS-2", "GrabPay", domain.RailTypeWallet, 80, 2),
			source("FS-3", "Maybank", domain.RailTypeBank, 900, 3),
		},
		AcceptedRails: []string{"TouchNGo", "GrabPay"},
		History:       map[string]int{"GrabPay": 3},
		Health:        map[string]domain.HealthStatus{"TouchNGo": domain.HealthDegraded},
		Config:        guardrails(),
		Fallback:      domain.FallbackAutoTopUpBank,
	}

	first := ScoreRails(in)
	for i := 0; i < 5; i++ {
		if got := ScoreRails(in); !reflect.DeepEqual(first, got) {
			t.Fatalf("scoring differed on call %d", i)
		}
	}
}

func TestBalanceScore_Monotonic(t *testing.T) {
	amount := dec(100)
	prev := -1.0
	for bal := int64(0); bal <= 120; bal += 10 {
		src := source("FS-1", "TouchNGo", domain.RailTypeWallet, bal, 1)
		got := balanceScore(src, amount)
		if got < prev {
			t.Fatalf("balance score decreased at balance %d: %v < %v", bal, got, prev)
		}
		prev = got
	}
	full := source("FS-1", "TouchNGo", domain.RailTypeWallet, 100, 1)
	if got := balanceScore(full, amount); got != 100 {
		t.Errorf("exact cover should score 100, got %v", got)
	}
	partial := source("FS-1", "TouchNGo", domain.RailTypeWallet, 99, 1)
	if got := balanceScore(partial, amount); got > 80 {
		t.Errorf("partial cover must not exceed 80, got %v", got)
	}
}

func TestPriorityScore(t *testing.T) {
	cases := []struct {
		priority int
		want     float64
	}{
		{1, 100},
		{2, 85},
		{3, 70},
		{7, 10},
		{12, 10},
		{0, 100},
	}
	for _, tc := range cases {
		if got := priorityScore(tc.priority); got != tc.want {
			t.Errorf("priority %d: got %v, want %v", tc.priority, got, tc.want)
		}
	}
}

func TestHistoryScore(t *testing.T) {
	cases := []struct {
		count int
		want  float64
	}{
		{0, 20},
		{1, 30},
		{3, 50},
		{8, 100},
		{42, 100},
		{-1, 20},
	}
	for _, tc := range cases {
		if got := historyScore(tc.count); got != tc.want {
			t.Errorf("count %d: got %v, want %v", tc.count, got, tc.want)
		}
	}
}

func TestCompatibilityScore(t *testing.T) {
	tng := source("FS-1", "TouchNGo", domain.RailTypeWallet, 0, 1)
	duitnow := source("FS-2", "DuitNow", domain.RailTypeBank, 0, 2)

	if got := compatibilityScore(tng, []string{"TouchNGo"}, ""); got != 100 {
		t.Errorf("accepted rail: got %v, want 100", got)
	}
	if got := compatibilityScore(tng, []string{"Visa"}, ""); got != 0 {
		t.Errorf("excluded rail: got %v, want 0", got)
	}
	if got := compatibilityScore(tng, nil, ""); got != 50 {
		t.Errorf("unspecified acceptance: got %v, want 50", got)
	}
	if got := compatibilityScore(tng, []string{"Visa"}, "touchngo"); got != 100 {
		t.Errorf("preferred rail should match case-insensitively: got %v, want 100", got)
	}
	if got := compatibilityScore(duitnow, []string{"Visa"}, ""); got != 100 {
		t.Errorf("universal rail: got %v, want 100", got)
	}
}
