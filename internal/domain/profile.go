package domain

import "time"

// Profile guarda el estado de la relacion usuario-companion. Se crea de forma
// perezosa en la primera interaccion y lo mutan el rate limiter y cada turno
// puntuado. TrustLevel solo cambia via RelationshipService.ApplyTrustDelta.
type Profile struct {
	UserID            string    `json:"user_id"`
	TrustLevel        float64   `json:"trust_level"` // 0..100
	MessageCount      int       `json:"message_count"`
	MessagesUsedToday int       `json:"messages_used_today"`
	LastMessageReset  time.Time `json:"last_message_reset"` // fecha UTC del ultimo rollover
	Archetype         Archetype `json:"archetype,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
