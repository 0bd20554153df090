package service

import (
	"github.com/gkouam/soulbondai-sub004/internal/domain"
)

// archetypeRule es una entrada de la tabla de decision: una conjuncion de
// umbrales sobre ejes y/o estilo de apego. Las reglas se evaluan en orden y
// gana la primera que matchea; los empates se resuelven solo por orden, nunca
// por magnitud de puntaje.
type archetypeRule struct {
	archetype domain.Archetype
	matches   func(s domain.DimensionScores) bool
}

// archetypeRules es la tabla ordenada. Las reglas mas especificas van antes
// que las generales; la ultima no tiene condiciones y garantiza totalidad.
var archetypeRules = []archetypeRule{
	{
		archetype: domain.ArchetypeAnxiousRomantic,
		matches: func(s domain.DimensionScores) bool {
			return s.AttachmentStyle == domain.AttachmentAnxious && s.ThinkingFeeling > 0
		},
	},
	{
		archetype: domain.ArchetypeGuardedIntellectual,
		matches: func(s domain.DimensionScores) bool {
			return s.AttachmentStyle == domain.AttachmentAvoidant && s.ThinkingFeeling < 0
		},
	},
	{
		archetype: domain.ArchetypeWarmEmpath,
		matches: func(s domain.DimensionScores) bool {
			return s.AttachmentStyle == domain.AttachmentSecure &&
				s.IntroversionExtraversion > 0 && s.ThinkingFeeling > 0
		},
	},
	{
		archetype: domain.ArchetypeDeepThinker,
		matches: func(s domain.DimensionScores) bool {
			return s.IntroversionExtraversion < 0 && s.IntuitiveSensing > 0 && s.ThinkingFeeling < 0
		},
	},
	{
		archetype: domain.ArchetypePassionateCreative,
		matches: func(s domain.DimensionScores) bool {
			return s.ThinkingFeeling > 0 && s.FantasyPreference >= 7 && s.StableNeurotic < 0
		},
	},
	{
		archetype: domain.ArchetypePlayfulExplorer,
		matches: func(s domain.DimensionScores) bool {
			return s.IntroversionExtraversion > 0 && s.JudgingPerceiving < 0
		},
	},
	{
		// Default terminal: siempre matchea.
		archetype: domain.ArchetypeSecureConnector,
		matches:   func(domain.DimensionScores) bool { return true },
	},
}

// ClassifyArchetype resuelve el arquetipo desde el vector dimensional.
// Funcion pura y total: nunca devuelve vacio ni desconocido.
func ClassifyArchetype(scores domain.DimensionScores) domain.Archetype {
	for _, rule := range archetypeRules {
		if rule.matches(scores) {
			return rule.archetype
		}
	}
	// Inalcanzable: la ultima regla no tiene condiciones.
	return domain.ArchetypeSecureConnector
}
