// Package setup bootstraps the pipeline dependencies in order, so each
// component receives what it needs through constructor injection.
package setup

import (
	"github.com/orbital-sh/stargazer/internal/cache"
	"github.com/orbital-sh/stargazer/internal/github"
	"github.com/orbital-sh/stargazer/internal/setup/config"
	"go.uber.org/zap"
)

// App bundles the core dependencies needed by the pipeline worker.
type App struct {
	Config *config.Config // Pipeline configuration
	Logger *zap.Logger    // Main application logger
	Cache  *cache.Store   // Durable fetch cache
	GitHub *github.Client // Upstream API client
}

// InitializeApp loads configuration and wires the shared dependencies.
// The token precondition is enforced inside config loading, before any
// cache or network activity.
func InitializeApp(configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := NewLogger(&cfg.Log)

	store := cache.Load(cfg.Cache.Path, cfg.Cache.TTL(), logger)
	client := github.NewClient(cfg, logger)

	return &App{
		Config: cfg,
		Logger: logger,
		Cache:  store,
		GitHub: client,
	}, nil
}

// Cleanup flushes loggers before exit.
func (a *App) Cleanup() {
	_ = a.Logger.Sync()
}
