package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

type AuthConfig struct {
	SecretKey     string        `env:"SECRET_KEY,required,notEmpty" secret:"true"`
	TokenDuration time.Duration `env:"TOKEN_DURATION" envDefault:"1h"`
}

func NewAuthConfig(ctx context.Context) *AuthConfig {
	c := &AuthConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Auth config")
	}
	return c
}
