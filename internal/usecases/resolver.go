package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"resilient-wa-agent/internal/entities"
	"resilient-wa-agent/internal/infrastructure"
	"resilient-wa-agent/internal/interfaces"
	"resilient-wa-agent/internal/repository"
)

// Resolver turns an inbound message text into a reply via a three-tier
// fallback chain: matched template -> generative backend -> fallback
// template. It never returns an error; every input produces some reply.
type Resolver struct {
	registry     *repository.TemplateRegistry
	ai           interfaces.AIClient // nil when no backend is configured
	aiTimeout    time.Duration
	systemPrompt string
	stats        *infrastructure.Stats
	logger       *zap.Logger
}

func NewResolver(registry *repository.TemplateRegistry, ai interfaces.AIClient, aiTimeout time.Duration, stats *infrastructure.Stats, logger *zap.Logger) *Resolver {
	return &Resolver{
		registry:     registry,
		ai:           ai,
		aiTimeout:    aiTimeout,
		systemPrompt: buildSystemPrompt(registry.Knowledge()),
		stats:        stats,
		logger:       logger,
	}
}

// Resolve produces the reply for one message text. Generative-backend
// failures are absorbed here: they are logged and the fallback template
// is returned instead.
func (r *Resolver) Resolve(ctx context.Context, text string) entities.ResolvedResponse {
	if rule := Classify(text, r.registry.Rules()); rule != nil {
		r.logger.Debug("matched template", zap.String("category", rule.Category))
		r.stats.CountReply(entities.SourceTemplate)
		return entities.ResolvedResponse{
			Text:     rule.Response,
			Source:   entities.SourceTemplate,
			Category: rule.Category,
		}
	}

	if r.ai != nil {
		aiCtx, cancel := context.WithTimeout(ctx, r.aiTimeout)
		defer cancel()

		reply, err := r.ai.GenerateReply(aiCtx, r.systemPrompt, text)
		if err == nil && strings.TrimSpace(reply) != "" {
			r.stats.CountReply(entities.SourceGenerative)
			return entities.ResolvedResponse{
				Text:   reply,
				Source: entities.SourceGenerative,
			}
		}
		if err != nil {
			r.logger.Warn("generative backend unavailable, using fallback template", zap.Error(err))
		}
	}

	fb := r.registry.Fallback()
	r.stats.CountReply(entities.SourceFallback)
	return entities.ResolvedResponse{
		Text:     fb.Response,
		Source:   entities.SourceFallback,
		Category: fb.Category,
	}
}

// buildSystemPrompt composes the fixed organization context sent to the
// generative backend alongside the raw user text.
func buildSystemPrompt(kb entities.KnowledgeBase) string {
	return fmt.Sprintf(`You are an AI assistant for Resilient Equity Green Tech Foundation, a Zambian youth-led non-profit organization.

Organization Info:
%s

Contact: %s | %s

Respond helpfully and professionally to inquiries. Keep responses concise but informative. Always include contact information when appropriate.
Use emojis sparingly but appropriately. Focus on our mission of technology for social good, environmental sustainability, and youth empowerment.`,
		kb.Mission, kb.Contact.Email, kb.Contact.Website)
}
