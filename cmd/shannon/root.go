package main

import (
	"context"
	"os"

	"github.com/jjaspenextech/nextech-shannon-api/internal/config"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
	"github.com/spf13/cobra"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "shannon",
	Short: "Shannon: chat backend for Azure OpenAI",
	Long:  `Shannon serves conversations, projects and LLM chat over HTTP.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
