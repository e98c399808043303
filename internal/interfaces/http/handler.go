package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resilient-wa-agent/internal/entities"
	"resilient-wa-agent/internal/infrastructure"
	"resilient-wa-agent/internal/interfaces"
	"resilient-wa-agent/internal/repository"
	"resilient-wa-agent/internal/usecases"
)

// Handler serves the webhook protocol plus the health/stats/dashboard
// surface. It holds no per-request state; every delivery is one-shot.
type Handler struct {
	resolver      *usecases.Resolver
	messenger     interfaces.Messenger
	notifier      interfaces.Notifier
	registry      *repository.TemplateRegistry
	stats         *infrastructure.Stats
	verifyToken   string
	phoneNumberID string
	logger        *zap.Logger
}

func NewHandler(resolver *usecases.Resolver, messenger interfaces.Messenger, notifier interfaces.Notifier, registry *repository.TemplateRegistry, stats *infrastructure.Stats, verifyToken, phoneNumberID string, logger *zap.Logger) *Handler {
	return &Handler{
		resolver:      resolver,
		messenger:     messenger,
		notifier:      notifier,
		registry:      registry,
		stats:         stats,
		verifyToken:   verifyToken,
		phoneNumberID: phoneNumberID,
		logger:        logger,
	}
}

func SetupRoutes(r *gin.Engine, h *Handler, logger *zap.Logger) {
	r.Use(RequestID())
	r.Use(RequestLogger(logger))
	r.Use(gin.Recovery())
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(1 << 20)) // 1MB max request size

	r.GET("/webhook", h.VerifyWebhook)
	r.POST("/webhook", h.HandleWebhook)
	r.GET("/health", h.Health)
	r.GET("/stats", h.GetStats)
	r.GET("/", h.Dashboard)
}

// Webhook delivery payload, mirroring the Cloud API nesting:
// entry[].changes[].value.messages[].
type webhookPayload struct {
	Entry []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	Changes []webhookChange `json:"changes"`
}

type webhookChange struct {
	Field string       `json:"field"`
	Value webhookValue `json:"value"`
}

type webhookValue struct {
	Messages []webhookMessage `json:"messages"`
}

type webhookMessage struct {
	From string `json:"from"`
	ID   string `json:"id"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

// VerifyWebhook answers the Cloud API subscription handshake: echo the
// challenge when the mode and token match, 403 otherwise.
func (h *Handler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		h.logger.Info("webhook verified")
		c.String(http.StatusOK, challenge)
		return
	}

	h.logger.Warn("webhook verification failed", zap.String("mode", mode))
	c.String(http.StatusForbidden, "Verification failed")
}

// HandleWebhook processes one delivery batch. Payloads missing the
// expected nesting simply yield zero messages; a failure on one message
// is logged and counted but does not abort the rest of the batch.
func (h *Handler) HandleWebhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Error("undecodable webhook body", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, m := range change.Value.Messages {
				h.processMessage(c, entities.Message{
					ID:   m.ID,
					From: m.From,
					Text: m.Text.Body,
				})
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) processMessage(c *gin.Context, msg entities.Message) {
	h.stats.CountReceived()
	msg.Text = TruncateString(SanitizeString(msg.Text), MaxMessageLength)

	h.logger.Info("processing message",
		zap.String("request_id", GetRequestID(c)),
		zap.String("from", msg.From),
		zap.String("message_id", msg.ID),
	)

	ctx := c.Request.Context()
	resolved := h.resolver.Resolve(ctx, msg.Text)

	if err := h.messenger.SendMessage(ctx, msg.From, resolved.Text); err != nil {
		// The webhook answer is already framed independently of send
		// outcome; surface the failure through logs, stats and ops alerts.
		h.stats.CountSendFailure()
		h.logger.Error("send failed",
			zap.String("to", msg.From),
			zap.String("source", resolved.Source),
			zap.Error(err),
		)
		if nerr := h.notifier.Notify(ctx, fmt.Sprintf("⚠️ WhatsApp send to %s failed: %v", msg.From, err)); nerr != nil {
			h.logger.Warn("ops alert failed", zap.Error(nerr))
		}
		return
	}

	h.logger.Info("reply sent",
		zap.String("to", msg.From),
		zap.String("source", resolved.Source),
		zap.String("category", resolved.Category),
	)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats.Snapshot())
}
