package chat

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/worldloom/worldloom/internal/config"
	"github.com/worldloom/worldloom/pkg/llm/gemini"
	"github.com/worldloom/worldloom/pkg/logger"
)

// Module provides chat functionality
var Module = fx.Module("chat",
	fx.Provide(
		NewLLMClient,
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)

// NewLLMClient creates a Gemini chat client if configured
func NewLLMClient(cfg *config.Config, log *slog.Logger) Completer {
	scopedLog := log.With(logger.Scope("chat.llm"))

	if !cfg.LLM.IsEnabled() {
		scopedLog.Warn("LLM client disabled or not configured")
		return nil
	}

	client, err := gemini.NewClient(context.Background(), gemini.Config{
		APIKey:          cfg.LLM.GoogleAPIKey,
		Model:           cfg.LLM.Model,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		Temperature:     cfg.LLM.Temperature,
	}, gemini.WithLogger(scopedLog))
	if err != nil {
		// start without an LLM rather than failing the whole server
		scopedLog.Error("failed to create LLM client", slog.String("error", err.Error()))
		return nil
	}

	scopedLog.Info("LLM client initialized", slog.String("model", cfg.LLM.Model))
	return client
}
