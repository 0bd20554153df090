package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gkouam/soulbondai-sub004/internal/domain"
)

// SubscriptionRepository es la fuente de verdad del plan vigente. GetTier se
// lee fresco en cada chequeo de gate/cupo: el webhook de pagos escribe aca y
// el cambio aplica en el siguiente request sin invalidar caches.
type SubscriptionRepository interface {
	GetTier(ctx context.Context, userID string) (domain.SubscriptionTier, error)
	Upsert(ctx context.Context, sub domain.Subscription) error
}

type PgSubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSubscriptionRepository(pool *pgxpool.Pool) *PgSubscriptionRepository {
	return &PgSubscriptionRepository{pool: pool}
}

func (r *PgSubscriptionRepository) GetTier(ctx context.Context, userID string) (domain.SubscriptionTier, error) {
	const query = `
		SELECT tier
		FROM subscriptions
		WHERE user_id = $1
	`
	var tier domain.SubscriptionTier
	err := r.pool.QueryRow(ctx, query, userID).Scan(&tier)
	if errors.Is(err, pgx.ErrNoRows) {
		// Sin fila de suscripcion el usuario es free.
		return domain.TierFree, nil
	}
	if err != nil {
		return "", err
	}
	return domain.NormalizeTier(tier), nil
}

func (r *PgSubscriptionRepository) Upsert(ctx context.Context, sub domain.Subscription) error {
	const query = `
		INSERT INTO subscriptions (user_id, tier, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET tier = EXCLUDED.tier, updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query, sub.UserID, sub.Tier, sub.UpdatedAt)
	return err
}
