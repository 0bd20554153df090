package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

const (
	MemoryTypeEpisodic = "episodic"
	MemoryTypeSemantic = "semantic"
)

// Memory es un recuerdo de largo plazo del companion. ExpiresAt nil significa
// permanente; el sweep de retencion borra los vencidos.
type Memory struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Content   string           `json:"content"`
	Category  string           `json:"category"`
	Score     float64          `json:"score"` // significancia 0..10
	Type      string           `json:"type"`  // episodic | semantic
	Keywords  []string         `json:"keywords"`
	Embedding *pgvector.Vector `json:"-"` // lo provee el pipeline de analisis externo
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}

// Sentiment es el analisis emocional de un turno, producido por un colaborador
// externo y consumido tal cual por el motor de significancia.
type Sentiment struct {
	PrimaryEmotion     string  `json:"primary_emotion"`
	EmotionalIntensity float64 `json:"emotional_intensity"` // 0..10
	CrisisSeverity     float64 `json:"crisis_severity"`     // 0..10
}

// Exchange es un intercambio conversacional listo para puntuar.
type Exchange struct {
	UserMessage         string    `json:"user_message"`
	CompanionResponse   string    `json:"companion_response"`
	Sentiment           Sentiment `json:"sentiment"`
	RecentHistoryLength int       `json:"recent_history_length"`
	TrustLevel          float64   `json:"trust_level"`
	MessageCount        int       `json:"message_count"`
}

// Significance es el resultado de puntuar un intercambio.
type Significance struct {
	Score     float64    `json:"score"` // 0..10
	Type      string     `json:"type"`
	Category  string     `json:"category"`
	Keywords  []string   `json:"keywords"`
	Reasons   []string   `json:"reasons"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
