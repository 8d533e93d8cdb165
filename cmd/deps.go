package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/recruitdesk/internal/ai"
	"github.com/spigell/recruitdesk/internal/ai/gemini"
	"github.com/spigell/recruitdesk/internal/logger"
	"github.com/spigell/recruitdesk/internal/metrics"
	"github.com/spigell/recruitdesk/internal/recruit"
	"github.com/spigell/recruitdesk/internal/secrets"
	"github.com/spigell/recruitdesk/internal/store"
	"github.com/spigell/recruitdesk/internal/workflow"
)

const tokenEnv = envPrefix + "_API_TOKEN"

// deps is what every command starts from.
type deps struct {
	config  *Config
	logger  *zap.Logger
	metrics *metrics.Manager
	backend *recruit.Backend
}

// setup builds the logger, config and backend client. Startup problems are fatal.
func setup() *deps {
	logger, err := logger.New(logger.Options{
		JSON:    viper.GetBool("json"),
		Debug:   viper.GetBool("debug"),
		Version: version,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	token, err := resolveToken(config.API)
	if err != nil {
		logger.Fatal(
			"loading api token",
			zap.Error(err),
			zap.String("hint", "set "+tokenEnv+" or the 'api.token-file' key in the configuration file"),
		)
	}

	m := metrics.NewManager(metricsOptions(config.Metrics)...)

	return &deps{
		config:  config,
		logger:  logger,
		metrics: m,
		backend: newBackend(config.API, token, logger, m),
	}
}

func metricsOptions(cfg *MetricsConfig) []metrics.Option {
	if cfg == nil {
		return nil
	}
	return []metrics.Option{
		metrics.WithNamespace(cfg.Namespace),
		metrics.WithBuckets(cfg.Buckets),
	}
}

func newBackend(cfg *APIConfig, token string, logger *zap.Logger, m *metrics.Manager) *recruit.Backend {
	backend := recruit.New(logger.Named("api"), cfg.BaseURL, token)
	backend.Paths = cfg.Paths.Merge(recruit.DefaultPaths())
	backend.Metrics = m

	backend.UserAgent = userAgent()
	if cfg.UserAgent != "" {
		backend.UserAgent = cfg.UserAgent
	}
	if cfg.Timeout > 0 {
		backend.HTTPClient.Timeout = cfg.Timeout
	}

	return backend
}

// resolveToken returns an empty token when none is configured; the backend may sit
// behind a gateway that authenticates for it.
func resolveToken(cfg *APIConfig) (string, error) {
	src := secrets.Source{
		Name:  "api token",
		Value: cfg.Token,
		Env:   tokenEnv,
		File:  cfg.TokenFile,
	}

	if strings.TrimSpace(src.Value) == "" && strings.TrimSpace(src.File) == "" && !envSet(src.Env) {
		return "", nil
	}

	return secrets.Load(src)
}

func (d *deps) newSession(opts ...workflow.SessionOption) *workflow.Session {
	opts = append([]workflow.SessionOption{workflow.WithMetrics(d.metrics)}, opts...)
	return workflow.NewSession(d.backend, d.logger.Named("workflow"), opts...)
}

// openStore opens the configured session store. An empty path keeps the session in
// memory only.
func (d *deps) openStore(ctx context.Context) (store.Store, func(), error) {
	path := ""
	if d.config.Session != nil {
		path = strings.TrimSpace(d.config.Session.Store)
	}

	if path == "" {
		return store.NewMemory(), func() {}, nil
	}

	db, err := store.OpenSQLite(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	return db, func() {
		if err := db.Close(); err != nil {
			d.logger.Warn("closing session store", zap.Error(err))
		}
	}, nil
}

// serveMetrics exposes the registry on metrics.addr until ctx ends.
func (d *deps) serveMetrics(ctx context.Context) {
	if d.config.Metrics == nil || d.config.Metrics.Addr == "" {
		return
	}

	srv := &http.Server{
		Addr:              d.config.Metrics.Addr,
		Handler:           d.metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		d.logger.Info("serving metrics", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

func (d *deps) newQuestioner(ctx context.Context) (ai.Questioner, error) {
	cfg := d.config.AI
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("ai is disabled (set ai.enabled in the configuration file)")
	}
	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	questionerLogger := d.logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewQuestioner(generator, questionerLogger, cfg.Gemini.MaxLogLength), nil
}

// redacted returns a copy of the config safe to log.
func redacted(config *Config) *Config {
	out := *config
	if config.API != nil {
		api := *config.API
		if api.Token != "" {
			api.Token = "***"
		}
		out.API = &api
	}
	if config.AI != nil && config.AI.Gemini != nil {
		aiCfg := *config.AI
		g := *config.AI.Gemini
		if g.APIKey != "" {
			g.APIKey = "***"
		}
		aiCfg.Gemini = &g
		out.AI = &aiCfg
	}
	return &out
}

func envSet(name string) bool {
	if name == "" {
		return false
	}
	value, ok := os.LookupEnv(name)
	return ok && strings.TrimSpace(value) != ""
}
