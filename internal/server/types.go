package server

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/hazman-azhar/kitapay/backend/internal/domain"
)

// Inbound payloads.

type resolveRequest struct {
	UserID        string          `json:"userId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	IntentID      string          `json:"intentId"`
	MerchantID    string          `json:"merchantId"`
	MerchantRails []string        `json:"merchantRails"`
}

type smartResolveRequest struct {
	UserID                   string          `json:"userId"`
	Amount                   decimal.Decimal `json:"amount"`
	Currency                 string          `json:"currency"`
	IntentType               string          `json:"intentType"`
	MerchantRails            []string        `json:"merchantRails"`
	RecipientWallets         []string        `json:"recipientWallets"`
	RecipientPreferredWallet string          `json:"recipientPreferredWallet"`
}

type completePaymentRequest struct {
	UserID       string          `json:"userId"`
	Rail         string          `json:"rail"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	IntentType   string          `json:"intentType"`
	AutoApproved bool            `json:"autoApproved"`
}

// Outbound payloads. Monetary values are rendered as fixed two-decimal
// strings so clients never re-round them.

type stepResponse struct {
	Action   string `json:"action"`
	SourceID string `json:"sourceId"`
	Amount   string `json:"amount"`
}

type resolutionResponse struct {
	Success      bool           `json:"success"`
	Failure      string         `json:"failure,omitempty"`
	Steps        []stepResponse `json:"steps"`
	ChosenRail   string         `json:"chosenRail,omitempty"`
	FallbackRail string         `json:"fallbackRail,omitempty"`
	TopUpNeeded  bool           `json:"topupNeeded"`
	TopUpAmount  string         `json:"topupAmount"`
	RiskLevel    string         `json:"riskLevel"`
	Explanation  string         `json:"explanation"`
}

type factorScoresResponse struct {
	Compatibility float64 `json:"compatibility"`
	Balance       float64 `json:"balance"`
	Priority      float64 `json:"priority"`
	History       float64 `json:"history"`
	Health        float64 `json:"health"`
}

type scoredRailResponse struct {
	Name            string               `json:"name"`
	FundingSourceID string               `json:"fundingSourceId"`
	TotalScore      float64              `json:"totalScore"`
	Scores          factorScoresResponse `json:"scores"`
	Explanation     string               `json:"explanation"`
}

type smartResolutionResponse struct {
	Success         bool                 `json:"success"`
	RecommendedRail *scoredRailResponse  `json:"recommendedRail,omitempty"`
	Alternatives    []scoredRailResponse `json:"alternatives"`
	RequiresTopUp   bool                 `json:"requiresTopUp"`
	TopUpAmount     string               `json:"topUpAmount"`
	TopUpSource     string               `json:"topUpSource,omitempty"`
	Explanation     string               `json:"explanation"`
}

type fundingSourceResponse struct {
	ID                  string `json:"id"`
	Type                string `json:"type"`
	Name                string `json:"name"`
	Balance             string `json:"balance"`
	IsLinked            bool   `json:"isLinked"`
	IsAvailable         bool   `json:"isAvailable"`
	Priority            int    `json:"priority"`
	MaxAutoTopUp        string `json:"maxAutoTopUp"`
	RequireConfirmAbove string `json:"requireConfirmAbove"`
}

type userStateResponse struct {
	DailyAutoApproved string `json:"dailyAutoApproved"`
	LastResetDate     string `json:"lastResetDate"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toResolutionResponse(res domain.PaymentResolution) resolutionResponse {
	out := resolutionResponse{
		Success:      res.Success,
		Failure:      string(res.Failure),
		Steps:        []stepResponse{},
		ChosenRail:   res.ChosenRail,
		FallbackRail: res.FallbackRail,
		TopUpNeeded:  res.TopUpNeeded,
		TopUpAmount:  res.TopUpAmount.StringFixed(2),
		RiskLevel:    string(res.RiskLevel),
		Explanation:  res.Explanation,
	}
	for _, step := range res.Steps {
		out.Steps = append(out.Steps, stepResponse{
			Action:   string(step.Action),
			SourceID: step.SourceID,
			Amount:   step.Amount.StringFixed(2),
		})
	}
	return out
}

func toSmartResolutionResponse(res domain.SmartResolutionResult) smartResolutionResponse {
	out := smartResolutionResponse{
		Success:       res.Success,
		Alternatives:  []scoredRailResponse{},
		RequiresTopUp: res.RequiresTopUp,
		TopUpAmount:   res.TopUpAmount.StringFixed(2),
		TopUpSource:   res.TopUpSource,
		Explanation:   res.Explanation,
	}
	if res.RecommendedRail != nil {
		rec := toScoredRailResponse(*res.RecommendedRail)
		out.RecommendedRail = &rec
	}
	for _, alt := range res.Alternatives {
		out.Alternatives = append(out.Alternatives, toScoredRailResponse(alt))
	}
	return out
}

func toScoredRailResponse(sr domain.ScoredRail) scoredRailResponse {
	return scoredRailResponse{
		Name:            sr.Name,
		FundingSourceID: sr.FundingSourceID,
		TotalScore:      roundScore(sr.TotalScore),
		Scores: factorScoresResponse{
			Compatibility: sr.Scores.Compatibility,
			Balance:       sr.Scores.Balance,
			Priority:      sr.Scores.Priority,
			History:       sr.Scores.History,
			Health:        sr.Scores.Health,
		},
		Explanation: sr.Explanation,
	}
}

func toFundingSourceResponse(src domain.FundingSource) fundingSourceResponse {
	return fundingSourceResponse{
		ID:                  src.ID,
		Type:                string(src.Type),
		Name:                src.Name,
		Balance:             src.Balance.StringFixed(2),
		IsLinked:            src.IsLinked,
		IsAvailable:         src.IsAvailable,
		Priority:            src.Priority,
		MaxAutoTopUp:        src.MaxAutoTopUp.StringFixed(2),
		RequireConfirmAbove: src.RequireConfirmAbove.StringFixed(2),
	}
}

// roundScore rounds display scores to one decimal place; ranking upstream
// stays at full precision.
func roundScore(score float64) float64 {
	return math.Round(score*10) / 10
}
