package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gkouam/soulbondai-sub004/internal/domain"
)

// ProfileRepository persiste el estado de relacion por usuario. UpdateTrust es
// la unica via de escritura de trust_level; el resto de campos tienen sus
// propios updates parciales para no pisarse entre requests concurrentes.
type ProfileRepository interface {
	Create(ctx context.Context, profile domain.Profile) error
	GetByUserID(ctx context.Context, userID string) (domain.Profile, error)
	UpdateTrust(ctx context.Context, userID string, trustLevel float64) error
	UpdateArchetype(ctx context.Context, userID string, archetype domain.Archetype) error
	UpdateUsage(ctx context.Context, userID string, usedToday int, resetDate time.Time) error
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) Create(ctx context.Context, profile domain.Profile) error {
	const query = `
		INSERT INTO profiles (user_id, trust_level, message_count, messages_used_today, last_message_reset, archetype, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query,
		profile.UserID,
		profile.TrustLevel,
		profile.MessageCount,
		profile.MessagesUsedToday,
		profile.LastMessageReset,
		profile.Archetype,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return err
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	const query = `
		SELECT user_id, trust_level, message_count, messages_used_today, last_message_reset, archetype, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	var p domain.Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.TrustLevel,
		&p.MessageCount,
		&p.MessagesUsedToday,
		&p.LastMessageReset,
		&p.Archetype,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, err
	}
	return p, err
}

func (r *PgProfileRepository) UpdateTrust(ctx context.Context, userID string, trustLevel float64) error {
	const query = `
		UPDATE profiles
		SET trust_level = $2, updated_at = now()
		WHERE user_id = $1
	`
	_, err := r.pool.Exec(ctx, query, userID, trustLevel)
	return err
}

func (r *PgProfileRepository) UpdateArchetype(ctx context.Context, userID string, archetype domain.Archetype) error {
	const query = `
		UPDATE profiles
		SET archetype = $2, updated_at = now()
		WHERE user_id = $1
	`
	_, err := r.pool.Exec(ctx, query, userID, archetype)
	return err
}

// UpdateUsage refleja el cupo consumido del dia y suma uno al contador de
// mensajes de por vida. El incremento vive en el SQL para que dos requests
// concurrentes del mismo usuario no se pisen el total.
func (r *PgProfileRepository) UpdateUsage(ctx context.Context, userID string, usedToday int, resetDate time.Time) error {
	const query = `
		UPDATE profiles
		SET messages_used_today = $2, message_count = message_count + 1, last_message_reset = $3, updated_at = now()
		WHERE user_id = $1
	`
	_, err := r.pool.Exec(ctx, query, userID, usedToday, resetDate)
	return err
}
