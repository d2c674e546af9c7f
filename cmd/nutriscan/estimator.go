package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/nutriscan/internal/config"
	"github.com/vbonduro/nutriscan/internal/estimator"
	"github.com/vbonduro/nutriscan/internal/estimator/claude"
	"github.com/vbonduro/nutriscan/internal/estimator/gemini"
	"github.com/vbonduro/nutriscan/internal/estimator/ollama"
)

func newEstimator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*estimator.Client, error) {
	var model estimator.Model
	switch cfg.EstimatorBackend {
	case config.BackendClaude:
		logger.Info("using Claude estimator backend", "model", cfg.ClaudeModel)
		model = claude.New(cfg.ClaudeAPIKey, cfg.ClaudeModel)
	case config.BackendOllama:
		logger.Info("using Ollama estimator backend", "host", cfg.OllamaHost, "model", cfg.OllamaModel)
		model = ollama.New(cfg.OllamaHost, cfg.OllamaModel)
	case config.BackendGemini:
		logger.Info("using Gemini estimator backend", "model", cfg.GeminiModel)
		m, err := gemini.New(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		model = m
	default:
		return nil, fmt.Errorf("unknown estimator backend %q", cfg.EstimatorBackend)
	}
	return estimator.New(model, cfg.EstimatorLanguage, logger), nil
}
