// Package fetcher retrieves stargazer lists and enriched user profiles
// from the GitHub API, reading and writing through the shared cache store.
package fetcher

import (
	"context"
	"errors"
	"time"

	"github.com/orbital-sh/stargazer/internal/cache"
	"github.com/orbital-sh/stargazer/internal/github"
	"github.com/orbital-sh/stargazer/internal/setup/config"
	"github.com/orbital-sh/stargazer/pkg/utils"
	"go.uber.org/zap"
)

// StargazerFetcher collects the stargazer login list of each configured
// repository, one repository at a time.
type StargazerFetcher struct {
	client *github.Client
	cache  *cache.Store
	cfg    *config.Fetch
	logger *zap.Logger
	sleep  func(time.Duration)
}

// NewStargazerFetcher creates a StargazerFetcher.
func NewStargazerFetcher(client *github.Client, store *cache.Store, cfg *config.Config, logger *zap.Logger) *StargazerFetcher {
	return &StargazerFetcher{
		client: client,
		cache:  store,
		cfg:    &cfg.Fetch,
		logger: logger.Named("stargazers"),
		sleep:  time.Sleep,
	}
}

// FetchAll fetches every configured repository sequentially with a fixed
// delay after each, a self-imposed backpressure against the upstream rate
// limiter. A failure for one repository yields an empty list and never
// aborts the remaining repositories.
func (f *StargazerFetcher) FetchAll(ctx context.Context, repos []string) map[string][]string {
	results := make(map[string][]string, len(repos))

	for _, repo := range repos {
		logins, err := f.fetch(ctx, repo)
		if err != nil {
			f.logger.Warn("Failed to fetch stargazers, continuing with empty list",
				zap.String("repo", repo),
				zap.Error(err))

			logins = []string{}
		}

		results[repo] = logins

		f.sleep(time.Duration(f.cfg.RepoDelay) * time.Millisecond)
	}

	return results
}

// fetch returns the cached login list for repo, or pages through the
// upstream listing until exhaustion or the per-repository cap and caches
// the result.
func (f *StargazerFetcher) fetch(ctx context.Context, repo string) ([]string, error) {
	if logins, ok := f.cache.GetRepo(repo); ok {
		f.logger.Debug("Stargazer cache hit", zap.String("repo", repo), zap.Int("count", len(logins)))
		return logins, nil
	}

	retryOpts := utils.RetryOptions{
		Delay:       time.Duration(f.cfg.RateLimitDelay) * time.Millisecond,
		MaxAttempts: uint64(f.cfg.MaxAttempts),
	}

	logins := make([]string, 0, f.cfg.PageSize)

	for page := 1; len(logins) < f.cfg.MaxStargazersPerRepo; page++ {
		pageLogins, err := utils.WithRetry(ctx, func() ([]string, error) {
			return f.client.Stargazers(ctx, repo, page, f.cfg.PageSize)
		}, isRateLimited, retryOpts)
		if err != nil {
			return nil, err
		}

		logins = append(logins, pageLogins...)

		if len(pageLogins) < f.cfg.PageSize {
			break
		}
	}

	if len(logins) > f.cfg.MaxStargazersPerRepo {
		logins = logins[:f.cfg.MaxStargazersPerRepo]
	}

	f.cache.PutRepo(repo, logins)
	f.logger.Info("Fetched stargazers", zap.String("repo", repo), zap.Int("count", len(logins)))

	return logins, nil
}

func isRateLimited(err error) bool {
	return errors.Is(err, github.ErrRateLimited)
}
