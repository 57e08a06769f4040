package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

// JiraConfig is optional; APIKey is the fallback for users who have not
// stored their own token.
type JiraConfig struct {
	BaseURL string `env:"JIRA_BASE_URL" envDefault:"https://nextech.atlassian.net"`
	APIKey  string `env:"JIRA_API_KEY" secret:"true"`
}

func NewJiraConfig(ctx context.Context) *JiraConfig {
	c := &JiraConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Jira config")
	}
	return c
}
