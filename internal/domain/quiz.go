package domain

// AttachmentStyle clasifica el estilo de apego derivado del quiz.
type AttachmentStyle string

const (
	AttachmentSecure   AttachmentStyle = "secure"
	AttachmentAnxious  AttachmentStyle = "anxious"
	AttachmentAvoidant AttachmentStyle = "avoidant"
)

// Archetype es el arquetipo de personalidad asignado al usuario.
type Archetype string

const (
	ArchetypeAnxiousRomantic     Archetype = "anxious_romantic"
	ArchetypeGuardedIntellectual Archetype = "guarded_intellectual"
	ArchetypeWarmEmpath          Archetype = "warm_empath"
	ArchetypeDeepThinker         Archetype = "deep_thinker"
	ArchetypePassionateCreative  Archetype = "passionate_creative"
	ArchetypePlayfulExplorer     Archetype = "playful_explorer"
	ArchetypeSecureConnector     Archetype = "secure_connector"
)

// Archetypes enumera el conjunto cerrado de arquetipos validos.
var Archetypes = []Archetype{
	ArchetypeAnxiousRomantic,
	ArchetypeGuardedIntellectual,
	ArchetypeWarmEmpath,
	ArchetypeDeepThinker,
	ArchetypePassionateCreative,
	ArchetypePlayfulExplorer,
	ArchetypeSecureConnector,
}

// TraitAnswer es una respuesta del quiz: cada rasgo mencionado aporta un peso
// con signo (tipicamente -2..+2). Inmutable una vez enviada.
type TraitAnswer struct {
	QuestionID string         `json:"question_id"`
	Weights    map[string]int `json:"weights"`
}

// DimensionScores es el vector de puntajes calculado una sola vez desde todas
// las respuestas. Los ejes son sumas crudas sin normalizar; los escalares
// derivados van de 0 a 10.
type DimensionScores struct {
	IntroversionExtraversion int `json:"introversion_extraversion"`
	ThinkingFeeling          int `json:"thinking_feeling"`
	IntuitiveSensing         int `json:"intuitive_sensing"`
	JudgingPerceiving        int `json:"judging_perceiving"`
	StableNeurotic           int `json:"stable_neurotic"`
	SecureInsecure           int `json:"secure_insecure"`
	IndependentDependent     int `json:"independent_dependent"`

	EmotionalDepth        float64 `json:"emotional_depth"`
	CommunicationOpenness float64 `json:"communication_openness"`
	IntimacyComfort       float64 `json:"intimacy_comfort"`
	SupportNeeds          float64 `json:"support_needs"`
	FantasyPreference     float64 `json:"fantasy_preference"`

	AttachmentStyle AttachmentStyle `json:"attachment_style"`
}
