package service

import (
	"testing"

	"github.com/gkouam/soulbondai-sub004/internal/domain"
)

func TestAggregateTraitsZeroAnswers(t *testing.T) {
	scores := AggregateTraits(nil)

	if scores.IntroversionExtraversion != 0 || scores.ThinkingFeeling != 0 ||
		scores.IntuitiveSensing != 0 || scores.JudgingPerceiving != 0 ||
		scores.StableNeurotic != 0 || scores.SecureInsecure != 0 ||
		scores.IndependentDependent != 0 {
		t.Fatalf("expected all axes at zero, got %+v", scores)
	}
	if scores.AttachmentStyle != domain.AttachmentSecure {
		t.Fatalf("expected secure attachment for zero vector, got %q", scores.AttachmentStyle)
	}
}

func TestAggregateTraitsRawSummation(t *testing.T) {
	answers := []domain.TraitAnswer{
		{QuestionID: "q1", Weights: map[string]int{"introversion": 2, "feeling": 1}},
		{QuestionID: "q2", Weights: map[string]int{"introversion": 1, "thinking": 2}},
		{QuestionID: "q3", Weights: map[string]int{"extraversion": 1, "insecure": 3}},
	}

	scores := AggregateTraits(answers)

	if got, want := scores.IntroversionExtraversion, -2; got != want {
		t.Fatalf("introversion/extraversion = %d, want %d", got, want)
	}
	if got, want := scores.ThinkingFeeling, -1; got != want {
		t.Fatalf("thinking/feeling = %d, want %d", got, want)
	}
	if got, want := scores.SecureInsecure, -3; got != want {
		t.Fatalf("secure/insecure = %d, want %d", got, want)
	}
}

func TestAggregateTraitsIgnoresUnknownTraits(t *testing.T) {
	answers := []domain.TraitAnswer{
		{QuestionID: "q1", Weights: map[string]int{"charisma": 5, "luck": 3, "feeling": 1}},
	}

	scores := AggregateTraits(answers)

	if got, want := scores.ThinkingFeeling, 1; got != want {
		t.Fatalf("thinking/feeling = %d, want %d", got, want)
	}
	if scores.IntroversionExtraversion != 0 || scores.SecureInsecure != 0 {
		t.Fatalf("unknown traits must not move any axis, got %+v", scores)
	}
}

func TestDeriveAttachmentStyle(t *testing.T) {
	tests := []struct {
		name           string
		secureInsecure int
		indepDep       int
		want           domain.AttachmentStyle
	}{
		{"secure positive", 3, 0, domain.AttachmentSecure},
		{"secure at threshold", -2, 5, domain.AttachmentSecure},
		{"insecure dependent", -3, 2, domain.AttachmentAnxious},
		{"insecure independent", -3, -2, domain.AttachmentAvoidant},
		{"insecure midband", -3, 0, domain.AttachmentAnxious},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveAttachmentStyle(tt.secureInsecure, tt.indepDep)
			if got != tt.want {
				t.Fatalf("deriveAttachmentStyle(%d, %d) = %q, want %q",
					tt.secureInsecure, tt.indepDep, got, tt.want)
			}
		})
	}
}

func TestDerivedScalarsClamped(t *testing.T) {
	answers := []domain.TraitAnswer{
		{QuestionID: "q1", Weights: map[string]int{"feeling": 30}},
		{QuestionID: "q2", Weights: map[string]int{"neurotic": 30}},
	}

	scores := AggregateTraits(answers)

	for name, v := range map[string]float64{
		"emotional_depth":        scores.EmotionalDepth,
		"communication_openness": scores.CommunicationOpenness,
		"intimacy_comfort":       scores.IntimacyComfort,
		"support_needs":          scores.SupportNeeds,
		"fantasy_preference":     scores.FantasyPreference,
	} {
		if v < 0 || v > 10 {
			t.Fatalf("%s = %v, out of [0,10]", name, v)
		}
	}
}
