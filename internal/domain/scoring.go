package domain

import "github.com/shopspring/decimal"

// HealthStatus is the connector health reported for a rail.
type HealthStatus string

const (
	HealthHealthy     HealthStatus = "healthy"
	HealthDegraded    HealthStatus = "degraded"
	HealthUnavailable HealthStatus = "unavailable"
)

// FactorScores is the per-factor breakdown backing a ScoredRail. Each factor
// is normalized to the 0-100 range.
type FactorScores struct {
	Compatibility float64
	Balance       float64
	Priority      float64
	History       float64
	Health        float64
}

// ScoredRail is one ranked candidate produced by the smart resolver.
// TotalScore is kept at full precision for ranking; display layers round it.
type ScoredRail struct {
	Name            string
	FundingSourceID string
	TotalScore      float64
	Scores          FactorScores
	Explanation     string
}

// SmartResolutionResult wraps the smart resolver's ranked view of all
// viable rails plus any top-up the recommended rail would require.
type SmartResolutionResult struct {
	Success         bool
	RecommendedRail *ScoredRail
	Alternatives    []ScoredRail
	RequiresTopUp   bool
	TopUpAmount     decimal.Decimal
	TopUpSource     string
	Explanation     string
}
