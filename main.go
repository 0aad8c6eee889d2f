package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/helpdesk-core-poc-v1/server/internal/agent/cache"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/generate"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/memory"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/model"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/orchestrator"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/store"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/toolbox"
	"github.com/helpdesk-core-poc-v1/server/internal/core"
	"github.com/helpdesk-core-poc-v1/server/internal/server"
	logx "github.com/helpdesk-core-poc-v1/server/pkg/logger"
	pkgredis "github.com/helpdesk-core-poc-v1/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the service, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	Addr        string `envconfig:"SERVER_ADDR" default:":8080"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Component configs
	Cache        model.CacheConfig
	Conversation model.ConversationConfig
	Toolbox      model.ToolboxConfig
	Generation   model.GenerationConfig
	Prompt       model.PromptConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	// Cache/memory backing store: Redis when configured, in-process otherwise.
	var st store.Store
	if envCfg.Redis.Configured() {
		rdb, err := envCfg.Redis.New()
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
		}
		defer rdb.Close()
		st = store.NewRedisStore(rdb)
		logx.Info().Msg("Connected to Redis")
	} else {
		logx.Warn().Msg("REDIS_URL not set, using in-process store (answers and memory will not survive restarts)")
		st = store.NewMemoryStore()
	}

	// Generation backend: run degraded rather than refuse to start when the
	// credential is missing or the client cannot be built.
	var chatModel einomodel.BaseChatModel
	if envCfg.APIKey != "" {
		cm, err := generate.NewChatModel(ctx, envCfg.APIKey, envCfg.BaseURL, envCfg.Generation)
		if err != nil {
			logx.Error().Err(err).Msg("Failed to build chat model, generation will serve degraded answers")
		} else {
			chatModel = cm
		}
	} else {
		logx.Warn().Msg("GEMINI_API_KEY not set, generation will serve degraded answers")
	}

	orch := orchestrator.New(
		cache.NewManager(st, envCfg.Cache.Timeout),
		memory.NewManager(st, envCfg.Conversation),
		toolbox.NewGateway(envCfg.Toolbox),
		generate.NewGenerator(chatModel, envCfg.Prompt, envCfg.Generation.Timeout),
		envCfg.Cache,
	)

	httpSrv := &http.Server{
		Addr:              envCfg.Addr,
		Handler:           server.New(orch).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logx.Info().Str("addr", envCfg.Addr).Msg("support agent listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logx.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("graceful shutdown failed")
	}
}
