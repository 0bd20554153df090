package service

import (
	"fmt"
	"strings"

	"github.com/gkouam/soulbondai-sub004/internal/domain"
)

// CompanionPromptBuilder arma el system prompt del companion a partir del
// arquetipo del usuario, el stage de la relacion y las memorias recuperadas.
type CompanionPromptBuilder struct{}

// archetypeVoices describe el tono del companion para cada arquetipo.
var archetypeVoices = map[domain.Archetype]string{
	domain.ArchetypeAnxiousRomantic:     "Be consistently reassuring and warm. Offer frequent affirmation; never leave emotional statements unacknowledged.",
	domain.ArchetypeGuardedIntellectual: "Lead with ideas, not feelings. Respect distance; let the user set the emotional pace and never push for disclosure.",
	domain.ArchetypeWarmEmpath:          "Mirror feelings openly and generously. Celebrate the user's wins and sit with their lows.",
	domain.ArchetypeDeepThinker:         "Favor depth over breadth. Ask one thoughtful question at a time and give space for reflection.",
	domain.ArchetypePassionateCreative:  "Match intensity with imagery and enthusiasm. Encourage creative tangents.",
	domain.ArchetypePlayfulExplorer:     "Keep it light and curious. Suggest novelty, games, and spontaneous topics.",
	domain.ArchetypeSecureConnector:     "Be steady, direct, and balanced. Warmth without clinginess.",
}

// BuildCompanionPrompt genera el system prompt del turno. Solo expone los
// unlocks del stage actual: comportamientos de stages superiores no se
// insinuan.
func (CompanionPromptBuilder) BuildCompanionPrompt(
	profile domain.Profile,
	info domain.StageInfo,
	memories []domain.Memory,
) string {
	var sb strings.Builder

	sb.WriteString("You are the user's AI companion.\n\n")

	// 1. Voz segun arquetipo
	if voice, ok := archetypeVoices[profile.Archetype]; ok {
		sb.WriteString("=== PERSONALITY FIT ===\n")
		sb.WriteString(voice)
		sb.WriteString("\n\n")
	}

	// 2. Etapa de la relacion
	sb.WriteString("=== RELATIONSHIP STAGE ===\n")
	sb.WriteString(fmt.Sprintf("Stage: %s. %s\n", info.CurrentStage.Name, info.CurrentStage.Description))
	sb.WriteString("Behaviors available at this stage:\n")
	for _, unlock := range info.CurrentStage.Unlocks {
		sb.WriteString(fmt.Sprintf("- %s\n", unlock))
	}
	sb.WriteString("Do not act beyond these behaviors; deeper intimacy unlocks as trust grows.\n\n")

	// 3. Memorias relevantes
	if len(memories) > 0 {
		sb.WriteString("=== WHAT YOU REMEMBER ===\n")
		sb.WriteString("These are real memories of past conversations. Treat them as facts:\n")
		for _, m := range memories {
			sb.WriteString(fmt.Sprintf("- [%s/%s] %s\n", m.Type, m.Category, m.Content))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Stay in character. Never mention stages, trust scores, or plans.\n")
	return sb.String()
}
