package ai

import (
	"context"
	"fmt"

	"github.com/urbanosolucoes/licitahub/internal/ai/gemini"
	"github.com/urbanosolucoes/licitahub/internal/ai/mock"
	"github.com/urbanosolucoes/licitahub/internal/config"
	"github.com/urbanosolucoes/licitahub/pkg/models"
)

// NewProvider constructs the appropriate AI provider based on config.
// Called once at server startup.
func NewProvider(ctx context.Context, cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewProvider(ctx, cfg.Gemini)
	case "mock":
		return mock.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of gemini, mock", cfg.Provider)
	}
}
