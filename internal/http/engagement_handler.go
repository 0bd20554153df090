package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/gkouam/soulbondai-sub004/internal/domain"
	"github.com/gkouam/soulbondai-sub004/internal/service"
)

// EngagementHandler expone el motor de engagement por HTTP.
type EngagementHandler struct {
	logger       *zap.Logger
	engagement   *service.EngagementService
	relationship *service.RelationshipService
	gate         *service.GateService
	memories     *service.MemoryService
}

func NewEngagementHandler(
	logger *zap.Logger,
	engagement *service.EngagementService,
	relationship *service.RelationshipService,
	gate *service.GateService,
	memories *service.MemoryService,
) *EngagementHandler {
	return &EngagementHandler{
		logger:       logger,
		engagement:   engagement,
		relationship: relationship,
		gate:         gate,
		memories:     memories,
	}
}

// SubmitQuiz maneja POST /quiz.
func (h *EngagementHandler) SubmitQuiz(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	var req struct {
		Answers []domain.TraitAnswer `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	archetype, scores, err := h.engagement.SubmitQuiz(c.Request.Context(), claims.UserID, req.Answers)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid answers"})
			return
		}
		h.logger.Error("quiz submit failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not classify"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"archetype": archetype, "scores": scores})
}

// PostMessage maneja POST /message.
func (h *EngagementHandler) PostMessage(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	var req struct {
		Content   string           `json:"content" binding:"required"`
		Sentiment domain.Sentiment `json:"sentiment"`
		Embedding []float32        `json:"embedding"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	input := service.TurnInput{Text: req.Content, Sentiment: req.Sentiment}
	if len(req.Embedding) > 0 {
		vec := pgvector.NewVector(req.Embedding)
		input.Embedding = &vec
	}

	result, err := h.engagement.HandleMessage(c.Request.Context(), claims.UserID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuotaExceeded):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "daily message limit reached", "remaining": 0})
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		case errors.Is(err, service.ErrStoreUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		default:
			h.logger.Error("message handling failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process message"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRelationship maneja GET /relationship.
func (h *EngagementHandler) GetRelationship(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	info, err := h.relationship.GetStageInfo(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("stage info failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load relationship"})
		return
	}

	c.JSON(http.StatusOK, info)
}

// CheckFeature maneja GET /features/:id.
func (h *EngagementHandler) CheckFeature(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	result, err := h.gate.CheckFeature(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		return
	}
	if !result.Allowed {
		c.JSON(http.StatusForbidden, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetQuota maneja GET /quota.
func (h *EngagementHandler) GetQuota(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	used, remaining, err := h.gate.QuotaStatus(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"used": used, "remaining": remaining})
}

// ListMemories maneja GET /memories.
func (h *EngagementHandler) ListMemories(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	memories, err := h.memories.Recall(c.Request.Context(), claims.UserID, nil, 20)
	if err != nil {
		h.logger.Error("memory list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load memories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"memories": memories})
}
