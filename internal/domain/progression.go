package domain

import "time"

const (
	EventTrustChange       = "trust_change"
	EventMilestoneAchieved = "milestone_achieved"
)

// ProgressionEvent es una entrada append-only del historial de la relacion.
// Nunca se muta; solo se agrega y se lee.
type ProgressionEvent struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	MilestoneID string    `json:"milestone_id,omitempty"`
	TrustDelta  float64   `json:"trust_delta"`
	CreatedAt   time.Time `json:"created_at"`
}

// Milestone es un hito de la relacion alcanzable una sola vez.
type Milestone struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	TrustRequired float64 `json:"trust_required"`
}

// Stage es una banda nombrada de nivel de confianza. MinTrust define el umbral
// inferior; Unlocks son comportamientos visibles para el prompt builder.
type Stage struct {
	Name        string      `json:"name"`
	MinTrust    float64     `json:"min_trust"`
	Description string      `json:"description"`
	Unlocks     []string    `json:"unlocks"`
	Milestones  []Milestone `json:"milestones"`
}

// MilestoneStatus expone el estado disponible/logrado de un hito.
type MilestoneStatus struct {
	Milestone Milestone `json:"milestone"`
	Available bool      `json:"available"`
	Achieved  bool      `json:"achieved"`
}

// StageInfo resume la posicion del usuario en la progresion.
type StageInfo struct {
	CurrentStage Stage             `json:"current_stage"`
	NextStage    *Stage            `json:"next_stage,omitempty"`
	Progress     float64           `json:"progress"` // 0..100 dentro del stage actual
	TrustLevel   float64           `json:"trust_level"`
	Milestones   []MilestoneStatus `json:"milestones"`
}
