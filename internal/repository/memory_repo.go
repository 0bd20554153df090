package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/gkouam/soulbondai-sub004/internal/domain"
)

// MemoryRepository persiste recuerdos de largo plazo. Los recuerdos no se
// mutan: se crean, se leen y el sweep borra los vencidos.
type MemoryRepository interface {
	Create(ctx context.Context, memory domain.Memory) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Memory, error)
	ListExpired(ctx context.Context, userID string, now time.Time) ([]domain.Memory, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	Search(ctx context.Context, userID string, queryEmbedding pgvector.Vector, k int) ([]domain.Memory, error)
	Delete(ctx context.Context, id string) error
}

type PgMemoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgMemoryRepository(pool *pgxpool.Pool) *PgMemoryRepository {
	return &PgMemoryRepository{pool: pool}
}

const memoryColumns = `id, user_id, content, category, score, type, keywords, embedding, created_at, expires_at`

func (r *PgMemoryRepository) Create(ctx context.Context, memory domain.Memory) error {
	const query = `
		INSERT INTO memories (` + memoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	var embedding interface{}
	if memory.Embedding != nil {
		embedding = *memory.Embedding
	}
	_, err := r.pool.Exec(ctx, query,
		memory.ID,
		memory.UserID,
		memory.Content,
		memory.Category,
		memory.Score,
		memory.Type,
		memory.Keywords,
		embedding,
		memory.CreatedAt,
		memory.ExpiresAt,
	)
	return err
}

func (r *PgMemoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Memory, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
		SELECT ` + memoryColumns + `
		FROM memories
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemories(rows)
}

func (r *PgMemoryRepository) ListExpired(ctx context.Context, userID string, now time.Time) ([]domain.Memory, error) {
	const query = `
		SELECT ` + memoryColumns + `
		FROM memories
		WHERE user_id = $1 AND expires_at IS NOT NULL AND expires_at <= $2
	`
	rows, err := r.pool.Query(ctx, query, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemories(rows)
}

func (r *PgMemoryRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT user_id FROM memories`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgMemoryRepository) Search(ctx context.Context, userID string, queryEmbedding pgvector.Vector, k int) ([]domain.Memory, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT ` + memoryColumns + `
		FROM memories
		WHERE user_id = $1 AND embedding IS NOT NULL
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, userID, queryEmbedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemories(rows)
}

func (r *PgMemoryRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM memories WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func scanMemories(rows pgxRows) ([]domain.Memory, error) {
	var memories []domain.Memory
	for rows.Next() {
		var m domain.Memory
		var embedding *pgvector.Vector
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Content,
			&m.Category,
			&m.Score,
			&m.Type,
			&m.Keywords,
			&embedding,
			&m.CreatedAt,
			&m.ExpiresAt,
		); err != nil {
			return nil, err
		}
		m.Embedding = embedding
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return memories, nil
}

// pgxRows es la interfaz minima para escanear filas de pgx.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
