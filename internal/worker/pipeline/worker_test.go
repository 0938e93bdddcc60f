package pipeline_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/orbital-sh/stargazer/internal/cache"
	"github.com/orbital-sh/stargazer/internal/github"
	"github.com/orbital-sh/stargazer/internal/intel"
	"github.com/orbital-sh/stargazer/internal/progress"
	"github.com/orbital-sh/stargazer/internal/setup"
	"github.com/orbital-sh/stargazer/internal/setup/config"
	"github.com/orbital-sh/stargazer/internal/worker/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubUpstream serves a fixed two-repo world: repo A starred by u1..u3,
// repo B starred by u2 and u4, with u2 the only notable user.
func stubUpstream(t *testing.T) (*httptest.Server, *int) {
	t.Helper()

	var (
		mu       sync.Mutex
		requests int
	)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()

		path := r.URL.Path

		switch {
		case path == "/repos/acme/alpha/stargazers":
			fmt.Fprint(w, `[{"login": "u1"}, {"login": "u2"}, {"login": "u3"}]`)
		case path == "/repos/acme/beta/stargazers":
			fmt.Fprint(w, `[{"login": "u2"}, {"login": "u4"}]`)
		case strings.HasSuffix(path, "/repos"):
			fmt.Fprint(w, `[]`)
		case path == "/users/u2":
			fmt.Fprint(w, `{"login": "u2", "name": "User Two", "company": "@acme", "followers": 6000}`)
		case strings.HasPrefix(path, "/users/"):
			fmt.Fprintf(w, `{"login": %q}`, strings.TrimPrefix(path, "/users/"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return server, &requests
}

func newTestWorker(t *testing.T, serverURL, dataDir string) *pipeline.Worker {
	t.Helper()

	cfg := &config.Config{
		Repos: []string{"acme/alpha", "acme/beta"},
		Token: "test-token",
		Cache: config.Cache{
			Path:     filepath.Join(dataDir, "cache.json"),
			TTLHours: 168,
		},
		Fetch: config.Fetch{
			APIURL:               serverURL,
			RequestTimeout:       5000,
			PageSize:             100,
			MaxStargazersPerRepo: 1000,
			BatchSize:            20,
			MaxAttempts:          3,
			FlushEveryBatches:    5,
		},
		Output: config.Output{
			Path: filepath.Join(dataDir, "intelligence.json"),
		},
	}

	logger := zap.NewNop()
	app := &setup.App{
		Config: cfg,
		Logger: logger,
		Cache:  cache.Load(cfg.Cache.Path, cfg.Cache.TTL(), logger),
		GitHub: github.NewClient(cfg, logger),
	}

	return pipeline.New(app, progress.NewBar(100, 25, "test"), pipeline.WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}))
}

func readArtifact(t *testing.T, path string) intel.Intelligence {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var artifact intel.Intelligence
	require.NoError(t, sonic.Unmarshal(data, &artifact))

	return artifact
}

func TestRunProducesIntelligence(t *testing.T) {
	t.Parallel()

	server, _ := stubUpstream(t)
	dataDir := t.TempDir()

	worker := newTestWorker(t, server.URL, dataDir)
	require.NoError(t, worker.Run(context.Background()))

	artifact := readArtifact(t, filepath.Join(dataDir, "intelligence.json"))

	assert.Equal(t, 4, artifact.TotalUniqueStargazers)
	assert.Equal(t, 6000, artifact.CombinedReach)

	require.Len(t, artifact.Legends, 1)
	assert.Equal(t, "u2", artifact.Legends[0].Login)
	assert.Equal(t, "acme", artifact.Legends[0].Company)
	assert.Equal(t, []string{"acme/alpha", "acme/beta"}, artifact.Legends[0].StarredRepos)

	assert.Equal(t, 1, artifact.ByRepo["acme/alpha"].NotableCount)
	assert.Equal(t, 3, artifact.ByRepo["acme/alpha"].TotalCount)
	assert.Equal(t, 1, artifact.ByRepo["acme/beta"].NotableCount)
	assert.Equal(t, 2, artifact.ByRepo["acme/beta"].TotalCount)

	assert.NotEmpty(t, artifact.RunID)

	// The cache was flushed at the end of the run
	_, err := os.Stat(filepath.Join(dataDir, "cache.json"))
	require.NoError(t, err)
}

func TestRerunWithWarmCacheIsIdempotent(t *testing.T) {
	t.Parallel()

	server, requests := stubUpstream(t)
	dataDir := t.TempDir()

	first := newTestWorker(t, server.URL, dataDir)
	require.NoError(t, first.Run(context.Background()))

	firstArtifact := readArtifact(t, filepath.Join(dataDir, "intelligence.json"))
	coldRequests := *requests

	// Second worker reloads the durable cache from disk
	second := newTestWorker(t, server.URL, dataDir)
	require.NoError(t, second.Run(context.Background()))

	secondArtifact := readArtifact(t, filepath.Join(dataDir, "intelligence.json"))

	assert.Equal(t, coldRequests, *requests, "warm cache must not hit the network")

	// Identical apart from the per-run identifier
	firstArtifact.RunID = ""
	secondArtifact.RunID = ""
	assert.Equal(t, firstArtifact, secondArtifact)
}
