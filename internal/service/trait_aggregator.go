package service

import (
	"github.com/gkouam/soulbondai-sub004/internal/domain"
)

// axisRef indica a que eje aporta un rasgo y con que signo.
type axisRef struct {
	axis string
	sign int
}

const (
	axisIntroExtra    = "introversion_extraversion"
	axisThinkFeel     = "thinking_feeling"
	axisIntuitSense   = "intuitive_sensing"
	axisJudgePerceive = "judging_perceiving"
	axisStableNeuro   = "stable_neurotic"
	axisSecureInsec   = "secure_insecure"
	axisIndepDep      = "independent_dependent"
)

// traitAxisMap mapea cada nombre de rasgo a exactamente un eje con su
// convencion de signo. Rasgos desconocidos no aportan nada.
var traitAxisMap = map[string]axisRef{
	"introversion": {axisIntroExtra, -1},
	"extraversion": {axisIntroExtra, +1},
	"thinking":     {axisThinkFeel, -1},
	"feeling":      {axisThinkFeel, +1},
	"sensing":      {axisIntuitSense, -1},
	"intuitive":    {axisIntuitSense, +1},
	"perceiving":   {axisJudgePerceive, -1},
	"judging":      {axisJudgePerceive, +1},
	"neurotic":     {axisStableNeuro, -1},
	"stable":       {axisStableNeuro, +1},
	"insecure":     {axisSecureInsec, -1},
	"secure":       {axisSecureInsec, +1},
	"independent":  {axisIndepDep, -1},
	"dependent":    {axisIndepDep, +1},
}

// Umbrales del estilo de apego, calibrados contra sumas crudas.
const (
	attachmentInsecureThreshold = -2
	attachmentDependentHigh     = 2
	attachmentIndependentHigh   = -2
)

// AggregateTraits reduce las respuestas del quiz al vector dimensional.
// Suma cruda por eje, sin normalizar por cantidad de respuestas: los umbrales
// de clasificacion rio abajo estan calibrados contra estas sumas. Cero
// respuestas produce un vector en cero con apego secure.
func AggregateTraits(answers []domain.TraitAnswer) domain.DimensionScores {
	axes := map[string]int{}
	for _, answer := range answers {
		for trait, weight := range answer.Weights {
			ref, ok := traitAxisMap[trait]
			if !ok {
				continue
			}
			axes[ref.axis] += ref.sign * weight
		}
	}

	scores := domain.DimensionScores{
		IntroversionExtraversion: axes[axisIntroExtra],
		ThinkingFeeling:          axes[axisThinkFeel],
		IntuitiveSensing:         axes[axisIntuitSense],
		JudgingPerceiving:        axes[axisJudgePerceive],
		StableNeurotic:           axes[axisStableNeuro],
		SecureInsecure:           axes[axisSecureInsec],
		IndependentDependent:     axes[axisIndepDep],
	}

	scores.EmotionalDepth = clampScalar(5 + float64(scores.ThinkingFeeling)*0.5 - float64(scores.StableNeurotic)*0.25)
	scores.CommunicationOpenness = clampScalar(5 + float64(scores.IntroversionExtraversion)*0.5 + float64(scores.SecureInsecure)*0.25)
	scores.IntimacyComfort = clampScalar(5 + float64(scores.SecureInsecure)*0.5 + float64(scores.ThinkingFeeling)*0.25)
	scores.SupportNeeds = clampScalar(5 + float64(scores.IndependentDependent)*0.5 - float64(scores.StableNeurotic)*0.25)
	scores.FantasyPreference = clampScalar(5 + float64(scores.IntuitiveSensing)*0.5 - float64(scores.JudgingPerceiving)*0.25)

	scores.AttachmentStyle = deriveAttachmentStyle(scores.SecureInsecure, scores.IndependentDependent)
	return scores
}

// deriveAttachmentStyle aplica la regla fija sobre los ejes de seguridad y
// dependencia. Inseguro + dependiente alto => anxious; inseguro +
// independiente alto => avoidant; el resto => secure.
func deriveAttachmentStyle(secureInsecure, independentDependent int) domain.AttachmentStyle {
	if secureInsecure >= attachmentInsecureThreshold {
		return domain.AttachmentSecure
	}
	if independentDependent >= attachmentDependentHigh {
		return domain.AttachmentAnxious
	}
	if independentDependent <= attachmentIndependentHigh {
		return domain.AttachmentAvoidant
	}
	return domain.AttachmentAnxious
}

func clampScalar(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
