package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hazman-azhar/kitapay/backend/internal/domain"
	"github.com/hazman-azhar/kitapay/backend/internal/health"
	"github.com/hazman-azhar/kitapay/backend/internal/history"
	"github.com/hazman-azhar/kitapay/backend/internal/store"
)

const testUser = "USR-1"

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func seedStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	m := store.NewMemoryStore()
	m.AddSource(domain.FundingSource{
		ID: "FS-1", UserID: testUser, Type: domain.RailTypeWallet, Name: "TouchNGo",
		Balance: dec(120), IsLinked: true, IsAvailable: true, Priority: 1, MaxAutoTopUp: dec(100),
	})
	m.AddSource(domain.FundingSource{
		ID: "FS-2", UserID: testUser, Type: domain.RailTypeWallet, Name: "GrabPay",
		Balance: dec(200), IsLinked: true, IsAvailable: true, Priority: 2, MaxAutoTopUp: dec(100),
	})
	m.AddSource(domain.FundingSource{
		ID: "FS-3", UserID: testUser, Type: domain.RailTypeBank, Name: "Maybank",
		Balance: dec(2500), IsLinked: true, IsAvailable: true, Priority: 3,
	})
	m.SetGuardrails(testUser, domain.GuardrailConfig{
		MaxAutoTopUpAmount:       dec(200),
		RequireConfirmationAbove: dec(250),
		DailyAutoApproveCap:      dec(500),
	}, domain.FallbackAutoTopUpBank)
	return m
}

func newTestService(t *testing.T, fs *store.MemoryStore, hist *history.MemoryStore, at time.Time) *PaymentService {
	t.Helper()
	svc := NewPaymentService(fs, hist, health.NewRegistry(), 30*24*time.Hour)
	svc.WithClock(func() time.Time { return at })
	return svc
}

func TestPaymentServiceResolve(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, seedStore(t), history.NewMemoryStore(), now)

	res, err := svc.Resolve(context.Background(), ResolveParams{
		UserID:   testUser,
		Amount:   dec(30),
		Currency: "MYR",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %q: %s", res.Failure, res.Explanation)
	}
	if res.ChosenRail != "TouchNGo" {
		t.Errorf("expected TouchNGo, got %s", res.ChosenRail)
	}
	if res.RiskLevel != domain.RiskLow {
		t.Errorf("expected low risk, got %s", res.RiskLevel)
	}
}

func TestPaymentServiceResolve_RequiresUserID(t *testing.T) {
	svc := newTestService(t, seedStore(t), history.NewMemoryStore(), time.Now())
	if _, err := svc.Resolve(context.Background(), ResolveParams{Amount: dec(30)}); err == nil {
		t.Fatal("expected an error for a missing user ID")
	}
}

func TestPaymentServiceResolve_DailyStateResets(t *testing.T) {
	fs := seedStore(t)
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, fs, history.NewMemoryStore(), now)

	// Yesterday's counter sits just under the cap; a new day wipes it.
	stale := domain.UserPaymentState{DailyAutoApproved: dec(480), LastResetDate: "2026-08-29"}
	if err := fs.SaveUserState(context.Background(), testUser, stale); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	res, err := svc.Resolve(context.Background(), ResolveParams{UserID: testUser, Amount: dec(30), Currency: "MYR"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.RiskLevel != domain.RiskLow {
		t.Errorf("stale counter should reset, got risk %s", res.RiskLevel)
	}

	today := domain.UserPaymentState{DailyAutoApproved: dec(480), LastResetDate: "2026-08-30"}
	if err := fs.SaveUserState(context.Background(), testUser, today); err != nil {
		t.Fatalf("seed state: %v", err)
	}
	res, err = svc.Resolve(context.Background(), ResolveParams{UserID: testUser, Amount: dec(30), Currency: "MYR"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.RiskLevel != domain.RiskHigh {
		t.Errorf("today's counter near the cap should force confirmation, got %s", res.RiskLevel)
	}
}

func TestPaymentServiceSmartResolve_HistoryWithinLookback(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	hist := history.NewMemoryStore()

	// Five recent GrabPay payments inside the lookback window.
	for i := 0; i < 5; i++ {
		rec := history.PaymentRecord{
			ID: "PMT-recent", UserID: testUser, Rail: "GrabPay",
			Amount: dec(20), Currency: "MYR", Status: history.StatusSucceeded,
			Timestamp: now.Add(-time.Duration(i+1) * 24 * time.Hour),
		}
		if err := hist.RecordPayment(context.Background(), rec); err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}
	// Heavy TouchNGo usage, but too long ago to count.
	for i := 0; i < 10; i++ {
		rec := history.PaymentRecord{
			ID: "PMT-old", UserID: testUser, Rail: "TouchNGo",
			Amount: dec(20), Currency: "MYR", Status: history.StatusSucceeded,
			Timestamp: now.Add(-60 * 24 * time.Hour),
		}
		if err := hist.RecordPayment(context.Background(), rec); err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}

	svc := newTestService(t, seedStore(t), hist, now)
	result, err := svc.SmartResolve(context.Background(), SmartResolveParams{
		UserID:        testUser,
		Amount:        dec(50),
		Currency:      "MYR",
		IntentType:    "pay_merchant",
		MerchantRails: []string{"TouchNGo", "GrabPay"},
	})
	if err != nil {
		t.Fatalf("smart resolve: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %s", result.Explanation)
	}
	if result.RecommendedRail.Name != "GrabPay" {
		t.Errorf("recent history should outrank stale history, got %s", result.RecommendedRail.Name)
	}
	if result.RecommendedRail.Scores.History != 70 {
		t.Errorf("expected history score 70 for five recent payments, got %v", result.RecommendedRail.Scores.History)
	}
}

func TestPaymentServiceCompletePayment(t *testing.T) {
	fs := seedStore(t)
	hist := history.NewMemoryStore()
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	svc := NewPaymentService(fs, hist, health.NewRegistry(), 0)
	svc.WithClock(func() time.Time { return now })

	state, err := svc.CompletePayment(context.Background(), CompletedPayment{
		UserID: testUser, Rail: "TouchNGo", Amount: dec(30), Currency: "MYR",
		IntentType: "pay_merchant", AutoApproved: true,
	})
	if err != nil {
		t.Fatalf("complete payment: %v", err)
	}
	if !state.DailyAutoApproved.Equal(dec(30)) {
		t.Errorf("expected counter 30, got %s", state.DailyAutoApproved)
	}
	if state.LastResetDate != "2026-08-30" {
		t.Errorf("expected today's reset stamp, got %s", state.LastResetDate)
	}

	recs := hist.Records()
	if len(recs) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(recs))
	}
	if recs[0].Rail != "TouchNGo" || recs[0].Status != history.StatusSucceeded {
		t.Errorf("unexpected record: %+v", recs[0])
	}
	if !recs[0].Timestamp.Equal(now) {
		t.Errorf("record should carry the service clock, got %s", recs[0].Timestamp)
	}
	if recs[0].ID == "" {
		t.Error("record should be assigned an ID")
	}

	// A confirmed payment leaves the auto-approval counter alone.
	state, err = svc.CompletePayment(context.Background(), CompletedPayment{
		UserID: testUser, Rail: "Maybank", Amount: dec(400), Currency: "MYR",
		IntentType: "pay_merchant", AutoApproved: false,
	})
	if err != nil {
		t.Fatalf("complete payment: %v", err)
	}
	if !state.DailyAutoApproved.Equal(dec(30)) {
		t.Errorf("confirmed payments must not bump the counter, got %s", state.DailyAutoApproved)
	}

	// The next day starts from zero.
	now = time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	state, err = svc.CompletePayment(context.Background(), CompletedPayment{
		UserID: testUser, Rail: "TouchNGo", Amount: dec(40), Currency: "MYR",
		IntentType: "pay_bill", AutoApproved: true,
	})
	if err != nil {
		t.Fatalf("complete payment: %v", err)
	}
	if !state.DailyAutoApproved.Equal(dec(40)) {
		t.Errorf("expected a fresh counter of 40, got %s", state.DailyAutoApproved)
	}
}

func TestPaymentServiceCompletePayment_RejectsBadInput(t *testing.T) {
	svc := newTestService(t, seedStore(t), history.NewMemoryStore(), time.Now())

	if _, err := svc.CompletePayment(context.Background(), CompletedPayment{
		Rail: "TouchNGo", Amount: dec(30),
	}); err == nil {
		t.Error("expected an error for a missing user ID")
	}
	if _, err := svc.CompletePayment(context.Background(), CompletedPayment{
		UserID: testUser, Rail: "TouchNGo", Amount: decimal.Zero,
	}); err == nil {
		t.Error("expected an error for a non-positive amount")
	}
}

func TestPaymentServiceSources(t *testing.T) {
	svc := newTestService(t, seedStore(t), history.NewMemoryStore(), time.Now())

	sources, err := svc.Sources(context.Background(), testUser)
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	if len(sources) != 3 {
		t.Errorf("expected 3 sources, got %d", len(sources))
	}
	if _, err := svc.Sources(context.Background(), ""); err == nil {
		t.Error("expected an error for a missing user ID")
	}
}
