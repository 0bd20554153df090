package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/gkouam/soulbondai-sub004/internal/domain"
)

func newGateFixture() (*GateService, *fakeSubscriptionRepo, *fakeProfileRepo, *fakeCounterStore) {
	subs := newFakeSubscriptionRepo()
	profiles := newFakeProfileRepo()
	counters := newFakeCounterStore()
	svc := NewGateService(zap.NewNop(), subs, profiles, counters)
	return svc, subs, profiles, counters
}

func TestCheckFeatureByTier(t *testing.T) {
	tests := []struct {
		name      string
		tier      domain.SubscriptionTier
		featureID string
		allowed   bool
		required  domain.SubscriptionTier
	}{
		{"free has no voice", domain.TierFree, domain.FeatureVoiceMessages, false, domain.TierBasic},
		{"basic has voice", domain.TierBasic, domain.FeatureVoiceMessages, true, ""},
		{"basic lacks photos", domain.TierBasic, domain.FeaturePhotoSharing, false, domain.TierPremium},
		{"premium lacks video", domain.TierPremium, domain.FeatureVideoCalls, false, domain.TierUltimate},
		{"ultimate has everything", domain.TierUltimate, domain.FeatureVideoCalls, true, ""},
		{"lifetime gates like ultimate", domain.TierLifetime, domain.FeaturePriorityResponse, true, ""},
		{"unknown feature locked everywhere", domain.TierUltimate, "time_travel", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, subs, _, _ := newGateFixture()
			subs.setTier("user-1", tt.tier)

			got, err := svc.CheckFeature(context.Background(), "user-1", tt.featureID)
			if err != nil {
				t.Fatalf("CheckFeature: %v", err)
			}
			if got.Allowed != tt.allowed {
				t.Fatalf("allowed = %v, want %v", got.Allowed, tt.allowed)
			}
			if got.RequiredPlan != tt.required {
				t.Fatalf("required plan = %q, want %q", got.RequiredPlan, tt.required)
			}
		})
	}
}

// El acceso es funcion pura del plan: el trust jamas abre una feature.
func TestCheckFeatureIgnoresTrust(t *testing.T) {
	svc, subs, profiles, _ := newGateFixture()
	ctx := context.Background()
	subs.setTier("user-1", domain.TierFree)
	profiles.profiles["user-1"] = domain.Profile{UserID: "user-1", TrustLevel: 100}

	got, err := svc.CheckFeature(ctx, "user-1", domain.FeatureVoiceMessages)
	if err != nil {
		t.Fatalf("CheckFeature: %v", err)
	}
	if got.Allowed {
		t.Fatalf("max trust on free plan must stay locked")
	}
}

func TestCheckFeatureFailsClosed(t *testing.T) {
	svc, subs, _, _ := newGateFixture()
	subs.err = errStoreDown

	got, err := svc.CheckFeature(context.Background(), "user-1", domain.FeatureVoiceMessages)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if got.Allowed {
		t.Fatalf("store failure must deny access")
	}
}

func TestCheckAndConsumeQuotaExhaustion(t *testing.T) {
	svc, subs, _, _ := newGateFixture()
	ctx := context.Background()
	subs.setTier("user-1", domain.TierFree)
	limit := domain.ConfigForTier(domain.TierFree).DailyMessageLimit

	for i := 1; i <= limit; i++ {
		res, err := svc.CheckAndConsumeQuota(ctx, "user-1")
		if err != nil {
			t.Fatalf("consume %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("consume %d of %d unexpectedly denied", i, limit)
		}
		if res.Remaining != limit-i {
			t.Fatalf("consume %d: remaining = %d, want %d", i, res.Remaining, limit-i)
		}
	}

	res, err := svc.CheckAndConsumeQuota(ctx, "user-1")
	if err != nil {
		t.Fatalf("over-limit consume: %v", err)
	}
	if res.Allowed || res.Remaining != 0 {
		t.Fatalf("over limit: got %+v, want denied with remaining 0", res)
	}
}

func TestCheckAndConsumeQuotaDayRollover(t *testing.T) {
	svc, subs, _, counters := newGateFixture()
	ctx := context.Background()
	subs.setTier("user-1", domain.TierFree)
	limit := domain.ConfigForTier(domain.TierFree).DailyMessageLimit

	for i := 0; i < limit; i++ {
		if _, err := svc.CheckAndConsumeQuota(ctx, "user-1"); err != nil {
			t.Fatalf("consume: %v", err)
		}
	}
	if res, _ := svc.CheckAndConsumeQuota(ctx, "user-1"); res.Allowed {
		t.Fatalf("expected exhausted quota before rollover")
	}

	// El TTL de la clave vence a medianoche UTC.
	counters.expireAll()

	res, err := svc.CheckAndConsumeQuota(ctx, "user-1")
	if err != nil {
		t.Fatalf("post-rollover consume: %v", err)
	}
	if !res.Allowed || res.Remaining != limit-1 {
		t.Fatalf("post-rollover: got %+v, want allowed with remaining %d", res, limit-1)
	}
}

// Regresion: el limite diario de basic es 200, no 50.
func TestBasicTierDailyLimit(t *testing.T) {
	if got := domain.ConfigForTier(domain.TierBasic).DailyMessageLimit; got != 200 {
		t.Fatalf("basic daily limit = %d, want 200", got)
	}

	svc, subs, _, _ := newGateFixture()
	ctx := context.Background()
	subs.setTier("user-1", domain.TierBasic)

	for i := 0; i < 51; i++ {
		res, err := svc.CheckAndConsumeQuota(ctx, "user-1")
		if err != nil {
			t.Fatalf("consume %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("basic plan denied at message %d", i+1)
		}
	}
}

// El total de por vida se incrementa en el store, no con leer-modificar-
// escribir: N consumos deben dejar exactamente N mensajes contados.
func TestQuotaConsumptionCountsLifetimeExactly(t *testing.T) {
	svc, subs, profiles, _ := newGateFixture()
	ctx := context.Background()
	subs.setTier("user-1", domain.TierFree)
	profiles.profiles["user-1"] = domain.Profile{UserID: "user-1"}

	const sends = 5
	for i := 0; i < sends; i++ {
		if _, err := svc.CheckAndConsumeQuota(ctx, "user-1"); err != nil {
			t.Fatalf("consume %d: %v", i+1, err)
		}
	}

	p := profiles.profiles["user-1"]
	if p.MessageCount != sends {
		t.Fatalf("lifetime message count = %d, want %d", p.MessageCount, sends)
	}
	if p.MessagesUsedToday != sends {
		t.Fatalf("messages used today = %d, want %d", p.MessagesUsedToday, sends)
	}
}

func TestCheckAndConsumeQuotaFailsClosed(t *testing.T) {
	svc, subs, _, counters := newGateFixture()
	ctx := context.Background()
	subs.setTier("user-1", domain.TierFree)
	counters.err = errStoreDown

	_, err := svc.CheckAndConsumeQuota(ctx, "user-1")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestRefundQuota(t *testing.T) {
	svc, subs, _, _ := newGateFixture()
	ctx := context.Background()
	subs.setTier("user-1", domain.TierFree)
	limit := domain.ConfigForTier(domain.TierFree).DailyMessageLimit

	if _, err := svc.CheckAndConsumeQuota(ctx, "user-1"); err != nil {
		t.Fatalf("consume: %v", err)
	}
	svc.RefundQuota(ctx, "user-1")

	used, remaining, err := svc.QuotaStatus(ctx, "user-1")
	if err != nil {
		t.Fatalf("QuotaStatus: %v", err)
	}
	if used != 0 || remaining != limit {
		t.Fatalf("after refund: used=%d remaining=%d, want 0/%d", used, remaining, limit)
	}

	// El refund nunca baja de cero.
	svc.RefundQuota(ctx, "user-1")
	used, _, err = svc.QuotaStatus(ctx, "user-1")
	if err != nil {
		t.Fatalf("QuotaStatus: %v", err)
	}
	if used != 0 {
		t.Fatalf("refund below zero: used=%d, want 0", used)
	}
}

func TestQuotaStatusDoesNotConsume(t *testing.T) {
	svc, subs, _, _ := newGateFixture()
	ctx := context.Background()
	subs.setTier("user-1", domain.TierFree)
	limit := domain.ConfigForTier(domain.TierFree).DailyMessageLimit

	for i := 0; i < 3; i++ {
		if _, _, err := svc.QuotaStatus(ctx, "user-1"); err != nil {
			t.Fatalf("QuotaStatus: %v", err)
		}
	}
	used, remaining, err := svc.QuotaStatus(ctx, "user-1")
	if err != nil {
		t.Fatalf("QuotaStatus: %v", err)
	}
	if used != 0 || remaining != limit {
		t.Fatalf("status reads must not consume: used=%d remaining=%d", used, remaining)
	}
}
