package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gkouam/soulbondai-sub004/internal/domain"
)

// EventRepository es el log append-only de progresion. Las entradas nunca se
// mutan ni se borran.
type EventRepository interface {
	Append(ctx context.Context, event domain.ProgressionEvent) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.ProgressionEvent, error)
	HasMilestone(ctx context.Context, userID, milestoneID string) (bool, error)
}

type PgEventRepository struct {
	pool *pgxpool.Pool
}

func NewPgEventRepository(pool *pgxpool.Pool) *PgEventRepository {
	return &PgEventRepository{pool: pool}
}

func (r *PgEventRepository) Append(ctx context.Context, event domain.ProgressionEvent) error {
	const query = `
		INSERT INTO progression_events (id, user_id, type, description, milestone_id, trust_delta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var milestoneID interface{}
	if event.MilestoneID != "" {
		milestoneID = event.MilestoneID
	}
	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.UserID,
		event.Type,
		event.Description,
		milestoneID,
		event.TrustDelta,
		event.CreatedAt,
	)
	return err
}

func (r *PgEventRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ProgressionEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, user_id, type, description, COALESCE(milestone_id, ''), trust_delta, created_at
		FROM progression_events
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.ProgressionEvent
	for rows.Next() {
		var e domain.ProgressionEvent
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Type,
			&e.Description,
			&e.MilestoneID,
			&e.TrustDelta,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *PgEventRepository) HasMilestone(ctx context.Context, userID, milestoneID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM progression_events
			WHERE user_id = $1 AND type = $2 AND milestone_id = $3
		)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, domain.EventMilestoneAchieved, milestoneID).Scan(&exists)
	return exists, err
}
