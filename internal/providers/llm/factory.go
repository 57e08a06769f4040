package llm

import (
	"context"
	"fmt"

	"github.com/jjaspenextech/nextech-shannon-api/internal/config"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

// NewProvider creates the Azure OpenAI provider from configuration.
func NewProvider(ctx context.Context, cfg *config.AzureOpenAIConfig) (*AzureOpenAI, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("azure openai url is not configured")
	}

	provider := NewAzureOpenAI(AzureOpenAIConfig{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		APIVersion: cfg.APIVersion,
		MaxTokens:  cfg.MaxTokens,
	})

	log.FromCtx(ctx).Info().
		Str("model", cfg.Model).
		Str("api_version", cfg.APIVersion).
		Msg("starting llm provider")

	return provider, nil
}
