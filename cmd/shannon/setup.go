package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jjaspenextech/nextech-shannon-api/internal/config"
	"github.com/jjaspenextech/nextech-shannon-api/internal/providers/jira"
	"github.com/jjaspenextech/nextech-shannon-api/internal/providers/llm"
	"github.com/jjaspenextech/nextech-shannon-api/internal/providers/web"
	"github.com/jjaspenextech/nextech-shannon-api/internal/service/auth"
	"github.com/jjaspenextech/nextech-shannon-api/internal/service/chat"
	"github.com/jjaspenextech/nextech-shannon-api/internal/service/workspace"
	"github.com/jjaspenextech/nextech-shannon-api/internal/storage/blob"
	"github.com/jjaspenextech/nextech-shannon-api/internal/storage/sqlite"
	httptransport "github.com/jjaspenextech/nextech-shannon-api/internal/transport/http"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/srv"
	"github.com/joho/godotenv"
)

const localEnvFile = ".local.env"

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	authCfg := config.NewAuthConfig(ctx)
	azureCfg := config.NewAzureOpenAIConfig(ctx)
	jiraCfg := config.NewJiraConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	blobs, err := blob.NewFSStore(appCfg.GetBlobPath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize blob store")
	}

	// 3. Chat
	chatSvc, err := buildChatService(ctx, appCfg, azureCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize chat service")
	}

	// 4. Domain services
	authSvc := auth.NewService(sqlite.NewUsersRepo(db), authCfg)
	ws := workspace.NewService(workspace.Stores{
		Conversations: sqlite.NewConversationsRepo(db),
		Messages:      sqlite.NewMessagesRepo(db),
		Contexts:      sqlite.NewContextsRepo(db),
		Projects:      sqlite.NewProjectsRepo(db),
		Blobs:         blobs,
	})

	// 5. Transport
	server := httptransport.NewServer(httptransport.Options{
		Addr:        appCfg.Addr,
		CORSOrigins: appCfg.CORSOrigins,
		JiraToken:   jiraCfg.APIKey,
		Info: map[string]string{
			"model":         azureCfg.Model,
			"api_version":   azureCfg.APIVersion,
			"max_tokens":    strconv.Itoa(azureCfg.MaxTokens),
			"token_counter": appCfg.TokenCounter,
		},
	}, httptransport.Deps{
		Auth:      authSvc,
		Workspace: ws,
		Chat:      chatSvc,
		Scraper:   web.NewScraper(),
		Jira:      jira.NewClient(jiraCfg.BaseURL, nil),
	})
	services = append(services, server)

	return services
}

// newChatService builds only what a one-shot query needs.
func newChatService(ctx context.Context) (*chat.Service, error) {
	return buildChatService(ctx, config.NewAppConfig(ctx), config.NewAzureOpenAIConfig(ctx))
}

func buildChatService(ctx context.Context, appCfg *config.AppConfig, azureCfg *config.AzureOpenAIConfig) (*chat.Service, error) {
	provider, err := llm.NewProvider(ctx, azureCfg)
	if err != nil {
		return nil, err
	}
	counter, err := chat.NewTokenCounter(appCfg.TokenCounter)
	if err != nil {
		return nil, err
	}
	return chat.NewService(provider, chat.NewAssembler(azureCfg.MaxTokens, counter)), nil
}

// initEnv loads .local.env from the working directory, then .env from
// the runtime directory. Variables already set in the environment win.
func initEnv(ctx context.Context) error {
	for _, envFile := range []string{localEnvFile, filepath.Join(config.GetRuntimePath(), ".env")} {
		if err := loadEnvFile(ctx, envFile); err != nil {
			return err
		}
	}
	return nil
}

func loadEnvFile(ctx context.Context, envFile string) error {
	logger := log.FromCtx(ctx)

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
