package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resilient-wa-agent/internal/config"
	"resilient-wa-agent/internal/infrastructure"
	"resilient-wa-agent/internal/interfaces"
	api "resilient-wa-agent/internal/interfaces/http"
	"resilient-wa-agent/internal/repository"
	"resilient-wa-agent/internal/usecases"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	registry, err := repository.LoadTemplates(cfg.TemplatesPath)
	if err != nil {
		logger.Fatal("load templates", zap.Error(err))
	}
	logger.Info("template registry loaded",
		zap.Int("rules", registry.Count()),
		zap.String("fallback", registry.Fallback().Category),
	)

	stats := infrastructure.NewStats()

	var ai interfaces.AIClient
	if cfg.OpenAIAPIKey != "" {
		ai = infrastructure.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
		logger.Info("generative fallback enabled", zap.String("model", cfg.OpenAIModel))
	} else {
		logger.Warn("OPENAI_API_KEY not set, generative replies disabled")
	}

	messenger := infrastructure.NewWhatsAppBusinessClient(cfg.WhatsAppToken, cfg.WhatsAppPhoneNumberID, logger)
	notifier := infrastructure.NewTelegramNotifier(cfg.TelegramAlertToken, cfg.TelegramAlertChatID, logger)

	resolver := usecases.NewResolver(registry, ai, cfg.OpenAITimeout, stats, logger)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	h := api.NewHandler(resolver, messenger, notifier, registry, stats, cfg.VerifyToken, cfg.WhatsAppPhoneNumberID, logger)
	api.SetupRoutes(r, h, logger)

	srv := &nethttp.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting Resilient Equity WhatsApp AI Agent",
			zap.String("dashboard", fmt.Sprintf("http://localhost:%d", cfg.Port)),
			zap.String("webhook", fmt.Sprintf("http://localhost:%d/webhook", cfg.Port)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	if err := notifier.Notify(ctx, "🌱 WhatsApp AI Agent started"); err != nil {
		logger.Warn("startup alert failed", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
