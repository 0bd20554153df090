package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gkouam/soulbondai-sub004/internal/counter"
	"github.com/gkouam/soulbondai-sub004/internal/domain"
	"github.com/gkouam/soulbondai-sub004/internal/repository"
)

// GateService resuelve acceso a features y cupos diarios. El plan se lee
// fresco de la fuente de verdad en cada chequeo; nunca se cachea entre
// requests, asi un cambio de plan aplica en el siguiente mensaje. TrustLevel
// no participa en ninguna de estas decisiones.
//
// Ante un store caido, el gate falla cerrado (deniega): proteger la
// monetizacion pesa mas que la disponibilidad de un mensaje.
type GateService struct {
	logger        *zap.Logger
	subscriptions repository.SubscriptionRepository
	profiles      repository.ProfileRepository
	counters      counter.Store
}

func NewGateService(
	logger *zap.Logger,
	subscriptions repository.SubscriptionRepository,
	profiles repository.ProfileRepository,
	counters counter.Store,
) *GateService {
	return &GateService{
		logger:        logger,
		subscriptions: subscriptions,
		profiles:      profiles,
		counters:      counters,
	}
}

// AccessResult es la respuesta de un chequeo de feature.
type AccessResult struct {
	Allowed      bool                    `json:"allowed"`
	Reason       string                  `json:"reason,omitempty"`
	RequiredPlan domain.SubscriptionTier `json:"required_plan,omitempty"`
}

// QuotaResult es la respuesta de un chequeo de cupo.
type QuotaResult struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
}

// CheckFeature responde si el plan vigente incluye la feature.
func (s *GateService) CheckFeature(ctx context.Context, userID, featureID string) (AccessResult, error) {
	tier, err := s.subscriptions.GetTier(ctx, userID)
	if err != nil {
		s.logger.Error("tier lookup failed, denying", zap.String("user_id", userID), zap.Error(err))
		return AccessResult{Allowed: false, Reason: "subscription unavailable"}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	cfg := domain.ConfigForTier(tier)
	if cfg.Features[featureID] {
		return AccessResult{Allowed: true}, nil
	}
	return AccessResult{
		Allowed:      false,
		Reason:       "feature not included in current plan",
		RequiredPlan: domain.RequiredPlanFor(featureID),
	}, nil
}

// CheckAndConsumeQuota incrementa el contador diario del usuario y compara
// contra el limite del plan en un solo paso atomico del lado del store: dos
// envios simultaneos no pueden consumir el mismo cupo restante. El corte
// diario es medianoche UTC, via TTL de la clave.
func (s *GateService) CheckAndConsumeQuota(ctx context.Context, userID string) (QuotaResult, error) {
	tier, err := s.subscriptions.GetTier(ctx, userID)
	if err != nil {
		return QuotaResult{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	limit := domain.ConfigForTier(tier).DailyMessageLimit

	now := time.Now().UTC()
	used, err := s.counters.IncrWithCeiling(ctx, quotaKey(userID, now), int64(limit), untilNextMidnightUTC(now))
	if err != nil {
		s.logger.Error("quota counter failed, denying", zap.String("user_id", userID), zap.Error(err))
		return QuotaResult{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if used < 0 {
		return QuotaResult{Allowed: false, Remaining: 0}, nil
	}

	s.mirrorUsage(ctx, userID, int(used), now)
	return QuotaResult{Allowed: true, Remaining: limit - int(used)}, nil
}

// RefundQuota devuelve un cupo consumido cuando el envio fallo despues del
// chequeo (por ejemplo, request cancelado o proveedor caido).
func (s *GateService) RefundQuota(ctx context.Context, userID string) {
	now := time.Now().UTC()
	if _, err := s.counters.DecrFloor(ctx, quotaKey(userID, now)); err != nil {
		s.logger.Error("quota refund failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// QuotaStatus devuelve el cupo usado y restante sin consumir.
func (s *GateService) QuotaStatus(ctx context.Context, userID string) (used, remaining int, err error) {
	tier, err := s.subscriptions.GetTier(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	limit := domain.ConfigForTier(tier).DailyMessageLimit

	now := time.Now().UTC()
	val, err := s.counters.Get(ctx, quotaKey(userID, now))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	used = int(val)
	remaining = limit - used
	if remaining < 0 {
		remaining = 0
	}
	return used, remaining, nil
}

// mirrorUsage refleja el uso en el perfil para lectura (rollover perezoso del
// dia UTC). Es best effort: el contador compartido manda. El total de por vida
// lo incrementa el propio store, sin leer-modificar-escribir aca.
func (s *GateService) mirrorUsage(ctx context.Context, userID string, usedToday int, now time.Time) {
	if err := s.profiles.UpdateUsage(ctx, userID, usedToday, utcDate(now)); err != nil {
		s.logger.Warn("usage mirror failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func quotaKey(userID string, now time.Time) string {
	return "quota:msgs:" + userID + ":" + now.UTC().Format("20060102")
}

// untilNextMidnightUTC calcula el TTL hasta el proximo corte diario.
func untilNextMidnightUTC(now time.Time) time.Duration {
	next := utcDate(now).Add(24 * time.Hour)
	return next.Sub(now.UTC())
}
