package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/gkouam/soulbondai-sub004/internal/domain"
	"github.com/gkouam/soulbondai-sub004/internal/repository"
)

// MemoryService aplica la politica de retencion a los turnos puntuados y
// ejecuta el sweep periodico de vencidos.
type MemoryService struct {
	logger        *zap.Logger
	memories      repository.MemoryRepository
	subscriptions repository.SubscriptionRepository
}

func NewMemoryService(logger *zap.Logger, memories repository.MemoryRepository, subscriptions repository.SubscriptionRepository) *MemoryService {
	return &MemoryService{
		logger:        logger,
		memories:      memories,
		subscriptions: subscriptions,
	}
}

// ExpiryFor resuelve el vencimiento de una memoria segun plan y puntaje.
// Puntaje >= 8 (incluye todo turno con flag de crisis) nunca vence, sin
// importar el plan: los momentos emocionalmente pivotales no se pierden por
// una ventana de retencion corta. Retencion -1 tambien es permanente.
func ExpiryFor(score float64, tier domain.SubscriptionTier, now time.Time) *time.Time {
	if score >= permanentMemoryScore {
		return nil
	}
	days := domain.ConfigForTier(tier).MemoryRetentionDays
	if days == domain.PermanentRetention {
		return nil
	}
	expires := now.UTC().Add(time.Duration(days) * 24 * time.Hour)
	return &expires
}

// RecordTurn puntua el intercambio y persiste una memoria solo si supera el
// umbral minimo de creacion. Turnos por debajo no se guardan como memoria
// aunque si puedan mover el trust. El embedding, si el pipeline de analisis
// lo provee, se guarda para recall por similitud.
func (s *MemoryService) RecordTurn(ctx context.Context, userID string, exchange domain.Exchange, embedding *pgvector.Vector) (domain.Significance, error) {
	sig := ScoreTurn(exchange)

	tier, err := s.subscriptions.GetTier(ctx, userID)
	if err != nil {
		return sig, fmt.Errorf("get tier: %w", err)
	}
	sig.ExpiresAt = ExpiryFor(sig.Score, tier, time.Now())

	if sig.Score < minMemoryScore {
		return sig, nil
	}

	memory := domain.Memory{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   exchange.UserMessage,
		Category:  sig.Category,
		Score:     sig.Score,
		Type:      sig.Type,
		Keywords:  sig.Keywords,
		Embedding: embedding,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: sig.ExpiresAt,
	}
	if err := retryTransient(ctx, func() error {
		return s.memories.Create(ctx, memory)
	}); err != nil {
		return sig, fmt.Errorf("create memory: %w", err)
	}

	s.logger.Info("memory recorded",
		zap.String("user_id", userID),
		zap.Float64("score", sig.Score),
		zap.String("type", sig.Type),
		zap.String("category", sig.Category),
	)
	return sig, nil
}

// Recall devuelve las memorias mas cercanas al embedding de consulta, o las
// mas recientes cuando no hay embedding.
func (s *MemoryService) Recall(ctx context.Context, userID string, queryEmbedding *pgvector.Vector, k int) ([]domain.Memory, error) {
	if queryEmbedding != nil {
		return s.memories.Search(ctx, userID, *queryEmbedding, k)
	}
	return s.memories.ListByUser(ctx, userID, k)
}

// SweepResult reporta el resultado de una pasada de retencion.
type SweepResult struct {
	UsersSwept  int
	Deleted     int
	FailedUsers int
}

// SweepExpired recorre todos los usuarios con memorias y borra las vencidas.
// Un fallo en un usuario se loguea y no aborta el resto de la pasada.
func (s *MemoryService) SweepExpired(ctx context.Context, now time.Time) (SweepResult, error) {
	userIDs, err := s.memories.ListUserIDs(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list users: %w", err)
	}

	var result SweepResult
	for _, userID := range userIDs {
		deleted, err := s.sweepUser(ctx, userID, now)
		if err != nil {
			result.FailedUsers++
			s.logger.Error("sweep failed for user",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		result.UsersSwept++
		result.Deleted += deleted
	}

	s.logger.Info("retention sweep finished",
		zap.Int("users", result.UsersSwept),
		zap.Int("deleted", result.Deleted),
		zap.Int("failed_users", result.FailedUsers),
	)
	return result, nil
}

func (s *MemoryService) sweepUser(ctx context.Context, userID string, now time.Time) (int, error) {
	expired, err := s.memories.ListExpired(ctx, userID, now)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, m := range expired {
		if err := s.memories.Delete(ctx, m.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
