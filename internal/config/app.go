package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"SHANNON_RUNTIME_PATH" envDefault:".shannon"`

	// HTTP
	Addr        string   `env:"SHANNON_ADDR" envDefault:":8000"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// Context management; the token budget is AzureOpenAIConfig.MaxTokens.
	TokenCounter string `env:"TOKEN_COUNTER" envDefault:"chars"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "shannon.db")
}

func (c AppConfig) GetBlobPath() string {
	return filepath.Join(c.RuntimePath, "blobs", "contexts")
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}
