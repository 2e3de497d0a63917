// Package app assembles runtime components from a config.Config.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teslashibe/pathsense/internal/config"
	"github.com/teslashibe/pathsense/pkg/inference"
	"github.com/teslashibe/pathsense/pkg/obstacle"
	"github.com/teslashibe/pathsense/pkg/speech"
	"github.com/teslashibe/pathsense/pkg/tts"
)

// NewProvider builds the vision provider named by cfg.Provider.
func NewProvider(cfg config.Config, logger *slog.Logger) (inference.Provider, error) {
	opts := []inference.Option{
		inference.WithAPIKey(cfg.APIKey),
		inference.WithModel(cfg.Model),
		inference.WithTimeout(cfg.Timeout),
		inference.WithLogger(logger),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, inference.WithBaseURL(cfg.BaseURL))
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		return inference.NewGemini(opts...)
	case config.ProviderOpenAI:
		return inference.NewClient(opts...)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// Preflight asks provider for a health check when cfg.Check is set.
func Preflight(ctx context.Context, cfg config.Config, provider inference.Provider, logger *slog.Logger) error {
	if !cfg.Check {
		return nil
	}
	if err := provider.Health(ctx); err != nil {
		return fmt.Errorf("%s health check: %w", cfg.Provider, err)
	}
	logger.Info("provider reachable", "provider", cfg.Provider, "model", cfg.Model)
	return nil
}

// NewDetector wraps provider in an obstacle detector using cfg's settings.
func NewDetector(cfg config.Config, provider inference.Provider, logger *slog.Logger) *obstacle.Detector {
	return obstacle.New(provider,
		obstacle.WithJPEGQuality(cfg.JPEGQuality),
		obstacle.WithModel(cfg.Model),
		obstacle.WithLogger(logger),
	)
}

// SpeechFactory returns the engine factory for cfg.Speech.
func SpeechFactory(cfg config.Config, logger *slog.Logger) speech.EngineFactory {
	switch cfg.Speech {
	case config.SpeechNone:
		return func() (speech.Engine, error) {
			return nil, speech.ErrDisabled
		}
	case config.SpeechOpenAI:
		return func() (speech.Engine, error) {
			key := cfg.SpeechAPIKey
			if key == "" {
				return nil, fmt.Errorf("%w: set OPENAI_API_KEY for cloud speech", tts.ErrNoAPIKey)
			}
			provider, err := tts.NewOpenAI(
				tts.WithAPIKey(key),
				tts.WithVoice(cfg.Voice),
				tts.WithRate(cfg.SpeechRate),
				tts.WithTimeout(cfg.Timeout),
				tts.WithLogger(logger),
			)
			if err != nil {
				return nil, err
			}
			if cfg.Check {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
				err := provider.Health(ctx)
				cancel()
				if err != nil {
					provider.Close()
					return nil, fmt.Errorf("speech health check: %w", err)
				}
			}
			engine, err := speech.NewCloud(provider)
			if err != nil {
				provider.Close()
				return nil, err
			}
			return engine, nil
		}
	default:
		return func() (speech.Engine, error) {
			return speech.NewLocal(cfg.SpeechRate, cfg.Voice)
		}
	}
}
