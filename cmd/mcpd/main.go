package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"mcpd/internal/config"
	"mcpd/internal/dispatch"
	"mcpd/internal/fssvc"
	"mcpd/internal/gitsvc"
	"mcpd/internal/httpapi"
	"mcpd/internal/llmproxy"
	"mcpd/internal/promproxy"
	"mcpd/internal/registry"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	// Optional .env for local development; a missing file is fine.
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// Flags with environment variable defaults
	addr := flag.String("addr", envOr("MCPD_ADDR", ":8000"), "HTTP listen address, e.g. :8000")
	configPath := flag.String("config", os.Getenv("MCPD_CONFIG"), "Optional config file (.yaml/.json/.toml)")
	fsRoot := flag.String("fs-root", envOr("MCPD_FS_ROOT", "."), "Directory filesystem operations are confined to")
	promURL := flag.String("prometheus-url", envOr("PROMETHEUS_URL", "http://localhost:9090"), "Prometheus base URL")
	flag.Parse()

	var cfg config.Config
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
		}
	}

	// Flags and environment fill anything the file left unset.
	if cfg.Addr == "" {
		cfg.Addr = *addr
	}
	if cfg.FilesystemRoot == "" {
		cfg.FilesystemRoot = *fsRoot
	}
	if cfg.PrometheusURL == "" {
		cfg.PrometheusURL = *promURL
	}
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.OpenAIChatModel == "" {
		cfg.OpenAIChatModel = envOr("OPENAI_CHAT_MODEL", "gpt-4o-mini")
	}
	if cfg.OpenAICompletionModel == "" {
		cfg.OpenAICompletionModel = envOr("OPENAI_COMPLETION_MODEL", "gpt-3.5-turbo-instruct")
	}
	if cfg.AzureOpenAIAPIKey == "" {
		cfg.AzureOpenAIAPIKey = os.Getenv("AZURE_OPENAI_API_KEY")
	}
	if cfg.AzureOpenAIEndpoint == "" {
		cfg.AzureOpenAIEndpoint = os.Getenv("AZURE_OPENAI_ENDPOINT")
	}
	if cfg.AzureOpenAIAPIVersion == "" {
		cfg.AzureOpenAIAPIVersion = envOr("AZURE_OPENAI_API_VERSION", "2024-02-01")
	}
	if cfg.AzureDeploymentName == "" {
		cfg.AzureDeploymentName = os.Getenv("AZURE_DEPLOYMENT_NAME")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = envOr("MCPD_LOG_LEVEL", "info")
	}

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(lvl)
	}
	httpapi.SetLogger(logger)
	if cfg.MaxBodyBytes > 0 {
		httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	}
	if cfg.CORSEnabled {
		httpapi.SetCORSOptions(true, cfg.CORSAllowedOrigins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders)
	}

	llmCfg := llmproxy.Config{
		APIKey:          cfg.OpenAIAPIKey,
		ChatModel:       cfg.OpenAIChatModel,
		CompletionModel: cfg.OpenAICompletionModel,
		AzureAPIKey:     cfg.AzureOpenAIAPIKey,
		AzureEndpoint:   cfg.AzureOpenAIEndpoint,
		AzureAPIVersion: cfg.AzureOpenAIAPIVersion,
		AzureDeployment: cfg.AzureDeploymentName,
	}

	reg := registry.New()
	for _, desc := range registry.DefaultCatalog(cfg.OpenAIChatModel, cfg.OpenAICompletionModel) {
		if err := reg.Register(desc); err != nil {
			logger.Fatal().Err(err).Str("model", desc.ID).Msg("failed to register model")
		}
	}

	fs, err := fssvc.New(cfg.FilesystemRoot)
	if err != nil {
		logger.Fatal().Err(err).Str("root", cfg.FilesystemRoot).Msg("failed to open filesystem root")
	}

	handlerTimeout := time.Duration(cfg.HandlerTimeoutSec) * time.Second
	d := dispatch.New(dispatch.Config{
		Registry:       reg,
		LLM:            llmproxy.New(llmCfg),
		Git:            gitsvc.New(),
		Fs:             fs,
		Prom:           promproxy.New(cfg.PrometheusURL, handlerTimeout),
		NetworkTimeout: handlerTimeout,
		Logger:         logger,
	})

	baseCtx, baseCancel := context.WithCancel(context.Background())
	defer baseCancel()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(d)}

	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("fs_root", cfg.FilesystemRoot).
			Str("prometheus_url", cfg.PrometheusURL).
			Int("models", len(reg.List())).
			Msg("mcpd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	baseCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}
