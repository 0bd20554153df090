package service

import (
	"strings"
	"unicode"

	"github.com/gkouam/soulbondai-sub004/internal/domain"
)

// Politica de puntuacion: pesos aditivos, luego clamp a [0,10].
const (
	intensityWeight       = 0.5
	crisisSeverityConcern = 6.0
	crisisBonus           = 4.0
	memoryRequestBonus    = 2.0
	biographicalBonus     = 1.5
	vulnerabilityBonus    = 2.0
	noveltyBonus          = 0.5
	noveltyHistoryMax     = 10
	minMemoryScore        = 3.0
	permanentMemoryScore  = 8.0
	maxKeywords           = 5
)

// Frases de pedido explicito de memoria.
var memoryRequestSignals = []string{
	"remember that",
	"remember this",
	"don't forget",
	"dont forget",
	"keep in mind",
	"never forget",
}

// Patrones de revelacion biografica en primera persona.
var biographicalSignals = []string{
	"my name is",
	"i'm called",
	"i am called",
	"i work as",
	"i work at",
	"my job is",
	"i live in",
	"i'm from",
	"i am from",
	"i was born",
	"my birthday is",
	"i grew up",
	"my sister",
	"my brother",
	"my mother",
	"my father",
	"my mom",
	"my dad",
}

// Declaraciones de vulnerabilidad o confianza.
var vulnerabilitySignals = []string{
	"i've never told anyone",
	"i have never told anyone",
	"never told anyone",
	"i trust you",
	"you mean so much to me",
	"you're the only one",
	"you are the only one",
	"i feel safe with you",
	"this is hard to say",
	"i'm scared to admit",
}

// Anclas de memoria episodica: evento, fecha o momento narrado en primera
// persona. Sin ancla, el recuerdo es semantico (hecho/preferencia general).
var episodicSignals = []string{
	"yesterday",
	"today",
	"last night",
	"last week",
	"last month",
	"this morning",
	"when i was",
	"the day i",
	"the first time",
	"we went",
	"i went",
	"it happened",
	"i remember when",
	"that time",
	"on my birthday",
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// keywordCategories mapea keywords a categorias tematicas. Gana la categoria
// con mas matches; el empate lo resuelve el primer match visto.
var keywordCategories = map[string][]string{
	"joy":         {"happy", "joy", "excited", "wonderful", "amazing", "great", "laugh", "fun", "celebrate"},
	"sadness":     {"sad", "cry", "crying", "miss", "lonely", "grief", "lost", "hurt", "depressed"},
	"love":        {"love", "heart", "romantic", "kiss", "adore", "cherish", "darling", "soulmate"},
	"anxiety":     {"anxious", "worried", "nervous", "panic", "scared", "afraid", "stress", "overwhelmed"},
	"work":        {"work", "job", "boss", "career", "office", "promotion", "interview", "coworker", "salary"},
	"family":      {"family", "mother", "father", "mom", "dad", "sister", "brother", "parents", "grandmother", "grandfather"},
	"aspirations": {"dream", "goal", "hope", "future", "plan", "wish", "ambition", "someday"},
	"health":      {"doctor", "sick", "health", "hospital", "therapy", "medication", "sleep", "tired"},
}

const defaultCategory = "general"

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "if": {},
	"of": {}, "to": {}, "in": {}, "on": {}, "at": {}, "by": {}, "for": {},
	"with": {}, "about": {}, "as": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "am": {}, "do": {}, "does": {}, "did": {}, "have": {},
	"has": {}, "had": {}, "i": {}, "you": {}, "he": {}, "she": {}, "it": {},
	"we": {}, "they": {}, "me": {}, "my": {}, "your": {}, "so": {}, "that": {},
	"this": {}, "these": {}, "those": {}, "not": {}, "no": {}, "just": {},
	"really": {}, "very": {}, "im": {}, "its": {}, "dont": {}, "cant": {},
	"will": {}, "would": {}, "can": {}, "could": {}, "what": {}, "when": {},
	"how": {}, "all": {}, "like": {}, "get": {}, "got": {}, "much": {},
}

// ScoreTurn puntua la significancia de un intercambio conversacional.
// Funcion pura: input malformado se trata como cero/default, nunca falla.
// ExpiresAt queda nil aca; la retencion por plan la decide MemoryService.
func ScoreTurn(exchange domain.Exchange) domain.Significance {
	text := strings.ToLower(exchange.UserMessage)
	var score float64
	var reasons []string

	intensity := exchange.Sentiment.EmotionalIntensity
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 10 {
		intensity = 10
	}
	if intensity > 0 {
		score += intensity * intensityWeight
		reasons = append(reasons, "emotional_intensity")
	}

	crisis := exchange.Sentiment.CrisisSeverity >= crisisSeverityConcern
	if crisis {
		score += crisisBonus
		reasons = append(reasons, "crisis_disclosure")
	}

	if containsAnySignal(text, memoryRequestSignals) {
		score += memoryRequestBonus
		reasons = append(reasons, "memory_request")
	}

	if containsAnySignal(text, biographicalSignals) {
		score += biographicalBonus
		reasons = append(reasons, "biographical_disclosure")
	}

	if containsAnySignal(text, vulnerabilitySignals) {
		score += vulnerabilityBonus
		reasons = append(reasons, "vulnerability")
	}

	// Novedad: al inicio de la relacion cada revelacion pesa un poco mas.
	if exchange.RecentHistoryLength >= 0 && exchange.RecentHistoryLength < noveltyHistoryMax {
		score += noveltyBonus
		reasons = append(reasons, "novelty")
	}

	if score > 10 {
		score = 10
	}
	if score < 0 {
		score = 0
	}

	// Las revelaciones de crisis son siempre de alta significancia, sin
	// importar la intensidad emocional ni el plan del usuario: el puntaje
	// nunca baja del umbral permanente.
	if crisis && score < permanentMemoryScore {
		score = permanentMemoryScore
	}

	// Las keywords salen del intercambio completo: lo que la companion
	// refleja de vuelta tambien ancla el recuerdo.
	keywords := ExtractKeywords(exchange.UserMessage+" "+exchange.CompanionResponse, maxKeywords)

	return domain.Significance{
		Score:    score,
		Type:     classifyMemoryType(text),
		Category: categorizeKeywords(keywords),
		Keywords: keywords,
		Reasons:  reasons,
	}
}

func classifyMemoryType(textLower string) string {
	if containsAnySignal(textLower, episodicSignals) {
		return domain.MemoryTypeEpisodic
	}
	return domain.MemoryTypeSemantic
}

// ExtractKeywords tokeniza, filtra stopwords, dedupea preservando el orden de
// primera aparicion y corta en max.
func ExtractKeywords(text string, max int) []string {
	if max <= 0 {
		max = maxKeywords
	}
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	seen := map[string]struct{}{}
	var keywords []string
	for _, tok := range tokens {
		if len(tok) < 3 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
		if len(keywords) == max {
			break
		}
	}
	return keywords
}

// categorizeKeywords matchea keywords contra la tabla fija y devuelve la
// categoria con mayor frecuencia, o "general" si no hay matches.
func categorizeKeywords(keywords []string) string {
	counts := map[string]int{}
	firstSeen := map[string]int{}

	for i, kw := range keywords {
		for category, words := range keywordCategories {
			for _, w := range words {
				if kw == w {
					counts[category]++
					if _, ok := firstSeen[category]; !ok {
						firstSeen[category] = i
					}
					break
				}
			}
		}
	}

	best := defaultCategory
	bestCount := 0
	bestFirst := len(keywords)
	for category, count := range counts {
		if count > bestCount || (count == bestCount && firstSeen[category] < bestFirst) {
			best = category
			bestCount = count
			bestFirst = firstSeen[category]
		}
	}
	return best
}

func containsAnySignal(s string, signals []string) bool {
	for _, signal := range signals {
		if strings.Contains(s, signal) {
			return true
		}
	}
	return false
}
