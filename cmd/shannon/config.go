package main

import (
	"fmt"

	"github.com/jjaspenextech/nextech-shannon-api/internal/config"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/env"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:          "config",
	Short:        "Print the effective configuration in .env format (secrets omitted)",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx); err != nil {
			return err
		}

		sections := []struct {
			name string
			cfg  any
		}{
			{"app", config.NewAppConfig(ctx)},
			{"azure openai", config.NewAzureOpenAIConfig(ctx)},
			{"auth", config.NewAuthConfig(ctx)},
			{"jira", config.NewJiraConfig(ctx)},
		}

		out := cmd.OutOrStdout()
		for _, s := range sections {
			content, err := env.MarshalEnv(s.cfg)
			if err != nil {
				return fmt.Errorf("marshal %s config: %w", s.name, err)
			}
			fmt.Fprintf(out, "# %s\n%s\n", s.name, content)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
