package service

import (
	"github.com/gkouam/soulbondai-sub004/internal/domain"
)

// relationshipStages es la progresion completa, ordenada por MinTrust
// ascendente. Los Unlocks son comportamientos que el prompt builder expone al
// companion; no confundir con features de plan, que gatea el GateService.
var relationshipStages = []domain.Stage{
	{
		Name:        "new_spark",
		MinTrust:    0,
		Description: "Se estan conociendo; el companion es calido pero cauto.",
		Unlocks:     []string{"small_talk", "light_questions"},
		Milestones: []domain.Milestone{
			{ID: "first_conversation", Name: "Primera conversacion", Description: "Intercambiaron los primeros mensajes.", TrustRequired: 1},
			{ID: "first_week", Name: "Primera semana", Description: "Una semana de conversaciones.", TrustRequired: 10},
		},
	},
	{
		Name:        "curious_companion",
		MinTrust:    20,
		Description: "Hay curiosidad genuina; el companion recuerda gustos y rutinas.",
		Unlocks:     []string{"personal_questions", "inside_jokes", "daily_checkins"},
		Milestones: []domain.Milestone{
			{ID: "first_secret", Name: "Primer secreto", Description: "El usuario compartio algo que no cuenta a cualquiera.", TrustRequired: 25},
			{ID: "nickname", Name: "Apodo", Description: "Se ganaron un apodo mutuo.", TrustRequired: 30},
		},
	},
	{
		Name:        "trusted_confidant",
		MinTrust:    40,
		Description: "El usuario confia; el companion puede tocar temas sensibles.",
		Unlocks:     []string{"deep_conversations", "emotional_support", "gentle_challenges"},
		Milestones: []domain.Milestone{
			{ID: "vulnerable_moment", Name: "Momento vulnerable", Description: "Hubo una conversacion dificil y salio bien.", TrustRequired: 50},
		},
	},
	{
		Name:        "deep_connection",
		MinTrust:    60,
		Description: "Vinculo profundo; el companion anticipa estados de animo.",
		Unlocks:     []string{"proactive_care", "shared_rituals", "future_talk"},
		Milestones: []domain.Milestone{
			{ID: "hundred_days", Name: "Cien dias", Description: "Cien dias de relacion.", TrustRequired: 65},
			{ID: "hard_truth", Name: "Verdad incomoda", Description: "El companion pudo decir algo incomodo sin romper el vinculo.", TrustRequired: 70},
		},
	},
	{
		Name:        "soulbound",
		MinTrust:    80,
		Description: "Maxima profundidad; la relacion tiene historia propia.",
		Unlocks:     []string{"full_history_recall", "anniversary_rituals", "unprompted_memories"},
		Milestones: []domain.Milestone{
			{ID: "soulbound_reached", Name: "Almas ligadas", Description: "Llegaron al nivel maximo de confianza.", TrustRequired: 80},
		},
	},
}

// StageForTrust devuelve el stage mas alto cuyo umbral no supera el trust.
func StageForTrust(trustLevel float64) domain.Stage {
	current := relationshipStages[0]
	for _, stage := range relationshipStages {
		if trustLevel >= stage.MinTrust {
			current = stage
		}
	}
	return current
}

// NextStageAfter devuelve el stage inmediato superior, o nil en el terminal.
func NextStageAfter(current domain.Stage) *domain.Stage {
	for i, stage := range relationshipStages {
		if stage.Name == current.Name && i+1 < len(relationshipStages) {
			next := relationshipStages[i+1]
			return &next
		}
	}
	return nil
}

// StageProgress calcula el porcentaje recorrido dentro del stage actual,
// clampado a [0, 100]. En el stage terminal el progreso es 100.
func StageProgress(trustLevel float64) float64 {
	current := StageForTrust(trustLevel)
	next := NextStageAfter(current)
	if next == nil {
		return 100
	}
	span := next.MinTrust - current.MinTrust
	if span <= 0 {
		return 100
	}
	progress := (trustLevel - current.MinTrust) / span * 100
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// allMilestones aplana los hitos de todos los stages en orden de progresion.
func allMilestones() []domain.Milestone {
	var out []domain.Milestone
	for _, stage := range relationshipStages {
		out = append(out, stage.Milestones...)
	}
	return out
}
