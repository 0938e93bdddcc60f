package fetcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/orbital-sh/stargazer/internal/cache"
	"github.com/orbital-sh/stargazer/internal/github"
	"github.com/orbital-sh/stargazer/internal/intel"
	"github.com/orbital-sh/stargazer/internal/setup/config"
	"github.com/orbital-sh/stargazer/pkg/utils"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// UserFetchStats counts the outcomes of an enrichment pass.
type UserFetchStats struct {
	CacheHits int
	Fetched   int
	Skipped   int
}

// UserFetcher enriches unique logins with profile data and the owned-star
// approximation, in fixed-size concurrent batches.
type UserFetcher struct {
	client *github.Client
	cache  *cache.Store
	cfg    *config.Fetch
	logger *zap.Logger
	sleep  func(time.Duration)
}

// NewUserFetcher creates a UserFetcher.
func NewUserFetcher(client *github.Client, store *cache.Store, cfg *config.Config, logger *zap.Logger) *UserFetcher {
	return &UserFetcher{
		client: client,
		cache:  store,
		cfg:    &cfg.Fetch,
		logger: logger.Named("users"),
		sleep:  time.Sleep,
	}
}

// FetchAll enriches every login, batch by batch. Within a batch users are
// fetched concurrently; between batches a fixed delay applies and the cache
// is flushed every few batches so a killed run loses at most the in-flight
// work. Users that cannot be enriched are skipped, never fatal.
func (f *UserFetcher) FetchAll(ctx context.Context, logins []string) (map[string]intel.Profile, UserFetchStats) {
	var (
		profiles = make(map[string]intel.Profile, len(logins))
		stats    UserFetchStats
		mu       sync.Mutex
	)

	batchSize := f.cfg.BatchSize

	for start := 0; start < len(logins); start += batchSize {
		end := min(start+batchSize, len(logins))
		batch := logins[start:end]

		p := pool.New().WithContext(ctx)

		for _, login := range batch {
			login := login
			p.Go(func(ctx context.Context) error {
				profile, hit, err := f.fetchOne(ctx, login)
				if err != nil {
					mu.Lock()
					stats.Skipped++
					mu.Unlock()

					return nil // Never fail the batch for one user
				}

				mu.Lock()
				profiles[login] = profile

				if hit {
					stats.CacheHits++
				} else {
					stats.Fetched++
				}
				mu.Unlock()

				return nil
			})
		}

		if err := p.Wait(); err != nil {
			f.logger.Error("Error during user enrichment batch", zap.Error(err))
		}

		batchNum := start/batchSize + 1
		f.logger.Info("Enriched user batch",
			zap.Int("batch", batchNum),
			zap.Int("processed", end),
			zap.Int("total", len(logins)))

		if f.cfg.FlushEveryBatches > 0 && batchNum%f.cfg.FlushEveryBatches == 0 {
			if err := f.cache.Save(); err != nil {
				f.logger.Warn("Failed to flush cache", zap.Error(err))
			}
		}

		if end < len(logins) {
			f.sleep(time.Duration(f.cfg.BatchDelay) * time.Millisecond)
		}
	}

	return profiles, stats
}

// fetchOne returns the profile for login, from cache when fresh, otherwise
// from two concurrent upstream requests behind the rate-limit retry
// wrapper. Successful fetches are cached immediately.
func (f *UserFetcher) fetchOne(ctx context.Context, login string) (intel.Profile, bool, error) {
	if profile, ok := f.cache.GetUser(login); ok {
		return profile, true, nil
	}

	retryOpts := utils.RetryOptions{
		Delay:       time.Duration(f.cfg.RateLimitDelay) * time.Millisecond,
		MaxAttempts: uint64(f.cfg.MaxAttempts),
	}

	var (
		user  *github.User
		repos []github.Repo
	)

	p := pool.New().WithContext(ctx)

	p.Go(func(ctx context.Context) error {
		var err error

		user, err = utils.WithRetry(ctx, func() (*github.User, error) {
			return f.client.UserProfile(ctx, login)
		}, isRateLimited, retryOpts)

		return err
	})

	p.Go(func(ctx context.Context) error {
		var err error

		repos, err = utils.WithRetry(ctx, func() ([]github.Repo, error) {
			return f.client.UserRepos(ctx, login)
		}, isRateLimited, retryOpts)

		return err
	})

	if err := p.Wait(); err != nil {
		switch {
		case errors.Is(err, github.ErrNotFound):
			f.logger.Debug("User not found, skipping", zap.String("login", login))
		case errors.Is(err, github.ErrRateLimited):
			f.logger.Warn("User still rate limited after retries, skipping", zap.String("login", login))
		default:
			f.logger.Warn("Failed to enrich user, skipping", zap.String("login", login), zap.Error(err))
		}

		return intel.Profile{}, false, err
	}

	profile := buildProfile(user, repos)
	f.cache.PutUser(login, profile)

	return profile, false, nil
}

// buildProfile projects the upstream payloads onto the pipeline's profile
// shape, applying the name fallback and company normalization.
func buildProfile(user *github.User, repos []github.Repo) intel.Profile {
	totalStars := 0
	for _, repo := range repos {
		totalStars += repo.StargazersCount
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return intel.Profile{
		Login:       user.Login,
		Name:        name,
		AvatarURL:   user.AvatarURL,
		Company:     intel.NormalizeCompany(user.Company),
		Bio:         user.Bio,
		Followers:   user.Followers,
		PublicRepos: user.PublicRepos,
		PublicGists: user.PublicGists,
		TotalStars:  totalStars,
	}
}
