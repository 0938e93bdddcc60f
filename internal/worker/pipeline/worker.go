// Package pipeline contains the orchestrating worker that runs the
// stargazer intelligence job end to end.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/orbital-sh/stargazer/internal/aggregator"
	"github.com/orbital-sh/stargazer/internal/cache"
	"github.com/orbital-sh/stargazer/internal/fetcher"
	"github.com/orbital-sh/stargazer/internal/intel"
	"github.com/orbital-sh/stargazer/internal/progress"
	"github.com/orbital-sh/stargazer/internal/resolver"
	"github.com/orbital-sh/stargazer/internal/scoring"
	"github.com/orbital-sh/stargazer/internal/setup"
	"github.com/orbital-sh/stargazer/internal/setup/config"
	"github.com/orbital-sh/stargazer/pkg/utils"
	"go.uber.org/zap"
)

// Worker sequences the pipeline steps and owns persistence timing. The
// artifact is written only after aggregation completes in full.
type Worker struct {
	cfg        *config.Config
	cache      *cache.Store
	stargazers *fetcher.StargazerFetcher
	users      *fetcher.UserFetcher
	bar        *progress.Bar
	clock      func() time.Time
	logger     *zap.Logger
}

// Option configures a Worker.
type Option func(*Worker)

// WithClock overrides the time source used for the artifact's generation
// timestamp.
func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		w.clock = clock
	}
}

// New creates a pipeline worker from the initialized app.
func New(app *setup.App, bar *progress.Bar, opts ...Option) *Worker {
	worker := &Worker{
		cfg:        app.Config,
		cache:      app.Cache,
		stargazers: fetcher.NewStargazerFetcher(app.GitHub, app.Cache, app.Config, app.Logger),
		users:      fetcher.NewUserFetcher(app.GitHub, app.Cache, app.Config, app.Logger),
		bar:        bar,
		clock:      time.Now,
		logger:     app.Logger.Named("pipeline"),
	}

	for _, opt := range opts {
		opt(worker)
	}

	return worker
}

// Run executes one full pipeline pass.
func (w *Worker) Run(ctx context.Context) error {
	runID := uuid.New().String()
	logger := w.logger.With(zap.String("runID", runID))

	logger.Info("Starting stargazer intelligence run",
		zap.Strings("repos", w.cfg.Repos))

	// Step 1: Fetch the stargazer list of each configured repository (10%)
	w.bar.SetStep("Fetching repository stargazers", 10)

	stargazers := w.stargazers.FetchAll(ctx, w.cfg.Repos)

	// Step 2: Merge per-repo lists into the unique identity set (30%)
	w.bar.SetStep("Resolving identities", 30)

	logins, starredRepos := resolver.Resolve(w.cfg.Repos, stargazers)
	logger.Info("Resolved unique stargazers", zap.Int("count", len(logins)))

	// Step 3: Enrich every unique login in batches (40%)
	w.bar.SetStep("Enriching users", 40)

	profiles, stats := w.users.FetchAll(ctx, logins)
	logger.Info("Enriched users",
		zap.Int("fetched", stats.Fetched),
		zap.Int("cacheHits", stats.CacheHits),
		zap.Int("skipped", stats.Skipped))

	// Step 4: Score and filter down to legends (70%)
	w.bar.SetStep("Scoring stargazers", 70)

	legends := make([]intel.Legend, 0)

	for login, profile := range profiles {
		if legend, ok := scoring.Evaluate(profile, starredRepos[login]); ok {
			legends = append(legends, legend)
		}
	}

	logger.Info("Filtered legends", zap.Int("count", len(legends)))

	// Step 5: Aggregate global and per-repo statistics (80%)
	w.bar.SetStep("Aggregating intelligence", 80)

	intelligence := aggregator.Build(legends, w.cfg.Repos, stargazers, runID, w.clock().UTC())

	// Step 6: Persist the artifact, then flush the cache (90%)
	w.bar.SetStep("Writing artifact", 90)

	if err := w.writeArtifact(intelligence); err != nil {
		return err
	}

	if err := w.cache.Save(); err != nil {
		logger.Warn("Failed to flush cache at end of run", zap.Error(err))
	}

	w.bar.SetStep("Completed", 100)

	logger.Info("Run completed",
		zap.Int("uniqueStargazers", intelligence.TotalUniqueStargazers),
		zap.Int("legends", len(legends)),
		zap.Int("combinedReach", intelligence.CombinedReach))

	return nil
}

// writeArtifact persists the intelligence document atomically. There is no
// partial-write path; a failed aggregation never reaches this point.
func (w *Worker) writeArtifact(intelligence *intel.Intelligence) error {
	data, err := sonic.MarshalIndent(intelligence, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal intelligence artifact: %w", err)
	}

	if err := utils.WriteFileAtomic(w.cfg.Output.Path, data); err != nil {
		return fmt.Errorf("failed to write intelligence artifact: %w", err)
	}

	w.logger.Info("Wrote intelligence artifact", zap.String("path", w.cfg.Output.Path))

	return nil
}
