package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hazman-azhar/kitapay/backend/internal/service"
)

// Handlers exposes HTTP handlers for the REST API.
type Handlers struct {
	logger   *slog.Logger
	payments *service.PaymentService
}

// NewHandlers constructs a Handlers instance.
func NewHandlers(logger *slog.Logger, payments *service.PaymentService) *Handlers {
	return &Handlers{
		logger:   logger,
		payments: payments,
	}
}

func (h *Handlers) handleResolve(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(http.MethodPost, "/resolve"))
	defer timer.ObserveDuration()

	var payload resolveRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), http.MethodPost, "/resolve")
		return
	}
	if payload.UserID == "" {
		h.respondError(w, http.StatusBadRequest, "userId is required", http.MethodPost, "/resolve")
		return
	}

	res, err := h.payments.Resolve(r.Context(), service.ResolveParams{
		UserID:        payload.UserID,
		Amount:        payload.Amount,
		Currency:      payload.Currency,
		IntentID:      payload.IntentID,
		MerchantID:    payload.MerchantID,
		MerchantRails: payload.MerchantRails,
	})
	if err != nil {
		h.logger.Error("failed to resolve payment", "error", err, "userId", payload.UserID)
		h.respondError(w, http.StatusInternalServerError, "failed to resolve payment", http.MethodPost, "/resolve")
		return
	}

	resolutionsTotal.WithLabelValues("rule", outcomeLabel(res.Success, string(res.Failure))).Inc()
	h.respondJSON(w, http.StatusOK, toResolutionResponse(res), http.MethodPost, "/resolve")
}

func (h *Handlers) handleSmartResolve(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(http.MethodPost, "/smart-resolve"))
	defer timer.ObserveDuration()

	var payload smartResolveRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), http.MethodPost, "/smart-resolve")
		return
	}
	if payload.UserID == "" {
		h.respondError(w, http.StatusBadRequest, "userId is required", http.MethodPost, "/smart-resolve")
		return
	}

	res, err := h.payments.SmartResolve(r.Context(), service.SmartResolveParams{
		UserID:                   payload.UserID,
		Amount:                   payload.Amount,
		Currency:                 payload.Currency,
		IntentType:               payload.IntentType,
		MerchantRails:            payload.MerchantRails,
		RecipientWallets:         payload.RecipientWallets,
		RecipientPreferredWallet: payload.RecipientPreferredWallet,
	})
	if err != nil {
		h.logger.Error("failed to smart-resolve payment", "error", err, "userId", payload.UserID)
		h.respondError(w, http.StatusInternalServerError, "failed to resolve payment", http.MethodPost, "/smart-resolve")
		return
	}

	resolutionsTotal.WithLabelValues("smart", outcomeLabel(res.Success, "rejected")).Inc()
	h.respondJSON(w, http.StatusOK, toSmartResolutionResponse(res), http.MethodPost, "/smart-resolve")
}

func (h *Handlers) handleSources(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(http.MethodGet, "/users/{id}/sources"))
	defer timer.ObserveDuration()

	userID := mux.Vars(r)["id"]
	if userID == "" {
		h.respondError(w, http.StatusBadRequest, "user ID is required", http.MethodGet, "/users/{id}/sources")
		return
	}

	sources, err := h.payments.Sources(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to fetch funding sources", "error", err, "userId", userID)
		h.respondError(w, http.StatusInternalServerError, "failed to fetch funding sources", http.MethodGet, "/users/{id}/sources")
		return
	}

	out := make([]fundingSourceResponse, 0, len(sources))
	for _, src := range sources {
		out = append(out, toFundingSourceResponse(src))
	}
	h.respondJSON(w, http.StatusOK, out, http.MethodGet, "/users/{id}/sources")
}

func (h *Handlers) handleCompletePayment(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(http.MethodPost, "/payments/complete"))
	defer timer.ObserveDuration()

	var payload completePaymentRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), http.MethodPost, "/payments/complete")
		return
	}
	if payload.UserID == "" {
		h.respondError(w, http.StatusBadRequest, "userId is required", http.MethodPost, "/payments/complete")
		return
	}
	if payload.Amount.Sign() <= 0 {
		h.respondError(w, http.StatusUnprocessableEntity, "amount must be positive", http.MethodPost, "/payments/complete")
		return
	}

	state, err := h.payments.CompletePayment(r.Context(), service.CompletedPayment{
		UserID:       payload.UserID,
		Rail:         payload.Rail,
		Amount:       payload.Amount,
		Currency:     payload.Currency,
		IntentType:   payload.IntentType,
		AutoApproved: payload.AutoApproved,
	})
	if err != nil {
		h.logger.Error("failed to record completed payment", "error", err, "userId", payload.UserID)
		h.respondError(w, http.StatusInternalServerError, "failed to record payment", http.MethodPost, "/payments/complete")
		return
	}

	h.respondJSON(w, http.StatusOK, userStateResponse{
		DailyAutoApproved: state.DailyAutoApproved.StringFixed(2),
		LastResetDate:     state.LastResetDate,
	}, http.MethodPost, "/payments/complete")
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload any, method, endpoint string) {
	httpRequestsTotal.WithLabelValues(method, endpoint, fmt.Sprintf("%d", status)).Inc()
	respondJSON(w, status, payload)
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, msg, method, endpoint string) {
	h.respondJSON(w, status, errorResponse{Error: msg}, method, endpoint)
}

func outcomeLabel(success bool, failure string) string {
	if success {
		return "success"
	}
	if failure == "" {
		return "rejected"
	}
	return failure
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
