package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/gkouam/soulbondai-sub004/internal/domain"
	"github.com/gkouam/soulbondai-sub004/internal/llm"
	"github.com/gkouam/soulbondai-sub004/internal/repository"
)

// EngagementService es el pegamento de orquestacion del request path:
// gate -> puntuar -> trust -> persistir -> responder.
type EngagementService struct {
	logger        *zap.Logger
	gate          *GateService
	memories      *MemoryService
	relationship  *RelationshipService
	messages      repository.MessageRepository
	promptBuilder CompanionPromptBuilder
	llmClient     llm.Client
}

func NewEngagementService(
	logger *zap.Logger,
	gate *GateService,
	memories *MemoryService,
	relationship *RelationshipService,
	messages repository.MessageRepository,
	promptBuilder CompanionPromptBuilder,
	llmClient llm.Client,
) *EngagementService {
	return &EngagementService{
		logger:        logger,
		gate:          gate,
		memories:      memories,
		relationship:  relationship,
		messages:      messages,
		promptBuilder: promptBuilder,
		llmClient:     llmClient,
	}
}

// TurnInput es un mensaje entrante ya analizado por el pipeline externo.
type TurnInput struct {
	Text      string
	Sentiment domain.Sentiment
	Embedding *pgvector.Vector
}

// TurnResult es la respuesta completa de un turno procesado.
type TurnResult struct {
	Reply        string              `json:"reply"`
	Significance domain.Significance `json:"significance"`
	StageInfo    domain.StageInfo    `json:"stage_info"`
	Remaining    int                 `json:"remaining"`
}

// recentHistoryWindow acota el historial que alimenta novedad y contexto.
const recentHistoryWindow = 20

// HandleMessage procesa un mensaje entrante de punta a punta. El cupo se
// consume primero; si el proveedor falla despues, el cupo se devuelve para
// que el usuario no pierda un mensaje por un envio fallido.
func (s *EngagementService) HandleMessage(ctx context.Context, userID string, input TurnInput) (TurnResult, error) {
	if input.Text == "" {
		return TurnResult{}, fmt.Errorf("%w: empty message", ErrValidation)
	}

	quota, err := s.gate.CheckAndConsumeQuota(ctx, userID)
	if err != nil {
		return TurnResult{}, err
	}
	if !quota.Allowed {
		return TurnResult{Remaining: 0}, ErrQuotaExceeded
	}

	profile, err := s.relationship.GetOrCreateProfile(ctx, userID)
	if err != nil {
		s.gate.RefundQuota(ctx, userID)
		return TurnResult{}, err
	}

	history, err := s.messages.ListRecent(ctx, userID, recentHistoryWindow)
	if err != nil {
		s.logger.Warn("history lookup failed", zap.String("user_id", userID), zap.Error(err))
	}

	exchange := domain.Exchange{
		UserMessage:         input.Text,
		Sentiment:           input.Sentiment,
		RecentHistoryLength: len(history),
		TrustLevel:          profile.TrustLevel,
		MessageCount:        profile.MessageCount,
	}

	sig, err := s.memories.RecordTurn(ctx, userID, exchange, input.Embedding)
	if err != nil {
		// Perder una memoria no corta el turno; el trust y la respuesta
		// siguen su curso.
		s.logger.Error("record turn failed", zap.String("user_id", userID), zap.Error(err))
	}

	if _, err := s.relationship.ApplyTrustDelta(ctx, userID, trustDeltaFor(sig), trustReasonFor(sig)); err != nil {
		s.logger.Error("trust update failed", zap.String("user_id", userID), zap.Error(err))
	}

	if _, err := s.relationship.CheckMilestones(ctx, userID); err != nil {
		s.logger.Error("milestone check failed", zap.String("user_id", userID), zap.Error(err))
	}

	info, err := s.relationship.GetStageInfo(ctx, userID)
	if err != nil {
		s.gate.RefundQuota(ctx, userID)
		return TurnResult{}, err
	}

	recalled, err := s.memories.Recall(ctx, userID, input.Embedding, 5)
	if err != nil {
		s.logger.Warn("memory recall failed", zap.String("user_id", userID), zap.Error(err))
	}

	prompt := s.promptBuilder.BuildCompanionPrompt(profile, info, recalled)
	reply, err := s.llmClient.Generate(ctx, prompt, chatHistory(history, input.Text))
	if err != nil {
		s.gate.RefundQuota(ctx, userID)
		return TurnResult{}, fmt.Errorf("generate reply: %w", err)
	}

	s.logTurn(ctx, userID, input.Text, reply)

	return TurnResult{
		Reply:        reply,
		Significance: sig,
		StageInfo:    info,
		Remaining:    quota.Remaining,
	}, nil
}

// SubmitQuiz agrega las respuestas, clasifica y guarda el arquetipo en el
// perfil. Un retake recalcula y reemplaza.
func (s *EngagementService) SubmitQuiz(ctx context.Context, userID string, answers []domain.TraitAnswer) (domain.Archetype, domain.DimensionScores, error) {
	for _, a := range answers {
		if a.QuestionID == "" {
			return "", domain.DimensionScores{}, fmt.Errorf("%w: answer without question id", ErrValidation)
		}
	}

	scores := AggregateTraits(answers)
	archetype := ClassifyArchetype(scores)

	if _, err := s.relationship.GetOrCreateProfile(ctx, userID); err != nil {
		return "", domain.DimensionScores{}, err
	}
	if err := retryTransient(ctx, func() error {
		return s.relationship.profiles.UpdateArchetype(ctx, userID, archetype)
	}); err != nil {
		return "", domain.DimensionScores{}, fmt.Errorf("store archetype: %w", err)
	}

	s.logger.Info("archetype assigned",
		zap.String("user_id", userID),
		zap.String("archetype", string(archetype)),
	)
	return archetype, scores, nil
}

// trustDeltaFor deriva el delta de confianza del turno: piso por interactuar,
// bonus proporcional a la significancia y cuidado extra en crisis.
func trustDeltaFor(sig domain.Significance) float64 {
	delta := 0.1
	if sig.Score >= minMemoryScore {
		delta += sig.Score * 0.2
	}
	for _, reason := range sig.Reasons {
		if reason == "crisis_disclosure" {
			delta += 1.0
			break
		}
	}
	return delta
}

func trustReasonFor(sig domain.Significance) string {
	if len(sig.Reasons) == 0 {
		return "conversation"
	}
	return "conversation: " + sig.Reasons[0]
}

// chatHistory convierte el log persistido (orden descendente) en el historial
// cronologico que consume el proveedor, con el mensaje actual al final.
func chatHistory(recent []domain.Message, currentText string) []llm.ChatMessage {
	out := make([]llm.ChatMessage, 0, len(recent)+1)
	for i := len(recent) - 1; i >= 0; i-- {
		role := "user"
		if recent[i].Role == domain.RoleCompanion {
			role = "assistant"
		}
		out = append(out, llm.ChatMessage{Role: role, Content: recent[i].Content})
	}
	out = append(out, llm.ChatMessage{Role: "user", Content: currentText})
	return out
}

func (s *EngagementService) logTurn(ctx context.Context, userID, userText, reply string) {
	now := time.Now().UTC()
	userMsg := domain.Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   userText,
		Role:      domain.RoleUser,
		CreatedAt: now,
	}
	companionMsg := domain.Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   reply,
		Role:      domain.RoleCompanion,
		CreatedAt: now.Add(time.Millisecond),
	}
	for _, msg := range []domain.Message{userMsg, companionMsg} {
		msg := msg
		if err := retryTransient(ctx, func() error {
			return s.messages.Create(ctx, msg)
		}); err != nil {
			s.logger.Error("message log failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
}
