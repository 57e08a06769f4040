package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

// AzureOpenAIConfig.MaxTokens is both the completion max_tokens and the
// budget the prompt history is trimmed to.
type AzureOpenAIConfig struct {
	BaseURL    string `env:"AZURE_OPENAI_URL,required,notEmpty"`
	APIKey     string `env:"AZURE_OPENAI_KEY,required,notEmpty" secret:"true"`
	Model      string `env:"AZURE_OPENAI_MODEL" envDefault:"gpt-4o"`
	APIVersion string `env:"AZURE_OPENAI_API_VERSION" envDefault:"2024-02-15-preview"`
	MaxTokens  int    `env:"LLM_MAX_TOKENS" envDefault:"8000"`
}

func NewAzureOpenAIConfig(ctx context.Context) *AzureOpenAIConfig {
	c := &AzureOpenAIConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Azure OpenAI config")
	}
	return c
}
