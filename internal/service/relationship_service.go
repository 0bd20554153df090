package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/gkouam/soulbondai-sub004/internal/domain"
	"github.com/gkouam/soulbondai-sub004/internal/repository"
)

// RelationshipService mantiene el nivel de confianza, deriva stages y
// administra el historial de hitos. Es el unico camino valido para mutar
// trust_level.
type RelationshipService struct {
	logger   *zap.Logger
	profiles repository.ProfileRepository
	events   repository.EventRepository
}

func NewRelationshipService(logger *zap.Logger, profiles repository.ProfileRepository, events repository.EventRepository) *RelationshipService {
	return &RelationshipService{
		logger:   logger,
		profiles: profiles,
		events:   events,
	}
}

// GetOrCreateProfile lee el perfil del usuario, creandolo en cero si es la
// primera interaccion. Leer nunca falla por perfil faltante.
func (s *RelationshipService) GetOrCreateProfile(ctx context.Context, userID string) (domain.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	now := time.Now().UTC()
	profile = domain.Profile{
		UserID:           userID,
		TrustLevel:       0,
		LastMessageReset: utcDate(now),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return domain.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	s.logger.Info("profile provisioned", zap.String("user_id", userID))
	return profile, nil
}

// ApplyTrustDelta suma delta (puede ser negativo) al trust del usuario,
// clampa a [0,100], persiste y agrega el evento de progresion. La escritura
// se reintenta ante fallos transitorios para no perder el cambio.
func (s *RelationshipService) ApplyTrustDelta(ctx context.Context, userID string, delta float64, reason string) (float64, error) {
	profile, err := s.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return 0, err
	}

	updated := clampTrust(profile.TrustLevel + delta)
	if err := retryTransient(ctx, func() error {
		return s.profiles.UpdateTrust(ctx, userID, updated)
	}); err != nil {
		return profile.TrustLevel, fmt.Errorf("update trust: %w", err)
	}

	event := domain.ProgressionEvent{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        domain.EventTrustChange,
		Description: reason,
		TrustDelta:  delta,
		CreatedAt:   time.Now().UTC(),
	}
	if err := retryTransient(ctx, func() error {
		return s.events.Append(ctx, event)
	}); err != nil {
		// El trust ya quedo persistido; el log de progresion no puede
		// revertirlo, solo reportar.
		s.logger.Error("append trust event failed", zap.String("user_id", userID), zap.Error(err))
	}

	return updated, nil
}

// CheckMilestones revisa hitos disponibles y registra los recien logrados.
// Disponible: trust >= trustRequired. Logrado: existe el evento de logro en el
// historial. Re-chequear un hito ya logrado no duplica el evento.
func (s *RelationshipService) CheckMilestones(ctx context.Context, userID string) ([]domain.MilestoneStatus, error) {
	profile, err := s.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var statuses []domain.MilestoneStatus
	for _, m := range allMilestones() {
		status := domain.MilestoneStatus{Milestone: m}
		status.Available = profile.TrustLevel >= m.TrustRequired

		achieved, err := s.events.HasMilestone(ctx, userID, m.ID)
		if err != nil {
			return nil, fmt.Errorf("check milestone %s: %w", m.ID, err)
		}
		status.Achieved = achieved

		if status.Available && !achieved {
			event := domain.ProgressionEvent{
				ID:          uuid.NewString(),
				UserID:      userID,
				Type:        domain.EventMilestoneAchieved,
				Description: m.Name,
				MilestoneID: m.ID,
				CreatedAt:   time.Now().UTC(),
			}
			if err := retryTransient(ctx, func() error {
				return s.events.Append(ctx, event)
			}); err != nil {
				return nil, fmt.Errorf("record milestone %s: %w", m.ID, err)
			}
			status.Achieved = true
			s.logger.Info("milestone achieved",
				zap.String("user_id", userID),
				zap.String("milestone", m.ID),
			)
		}

		statuses = append(statuses, status)
	}
	return statuses, nil
}

// GetStageInfo resume stage actual, siguiente, progreso y estado de hitos.
func (s *RelationshipService) GetStageInfo(ctx context.Context, userID string) (domain.StageInfo, error) {
	profile, err := s.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return domain.StageInfo{}, err
	}

	current := StageForTrust(profile.TrustLevel)
	info := domain.StageInfo{
		CurrentStage: current,
		NextStage:    NextStageAfter(current),
		Progress:     StageProgress(profile.TrustLevel),
		TrustLevel:   profile.TrustLevel,
	}

	for _, m := range allMilestones() {
		achieved, err := s.events.HasMilestone(ctx, userID, m.ID)
		if err != nil {
			return domain.StageInfo{}, fmt.Errorf("milestone status %s: %w", m.ID, err)
		}
		info.Milestones = append(info.Milestones, domain.MilestoneStatus{
			Milestone: m,
			Available: profile.TrustLevel >= m.TrustRequired,
			Achieved:  achieved,
		})
	}
	return info, nil
}

func clampTrust(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// utcDate trunca un instante a la fecha UTC.
func utcDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
