package cache

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/orbital-sh/stargazer/internal/intel"
	"github.com/orbital-sh/stargazer/pkg/utils"
	"go.uber.org/zap"
)

// userEntry is the on-disk shape of a cached user profile.
type userEntry struct {
	Data      intel.Profile `json:"data"`
	Timestamp time.Time     `json:"timestamp"`
}

// repoEntry is the on-disk shape of a cached stargazer list.
type repoEntry struct {
	Stargazers []string  `json:"stargazers"`
	Timestamp  time.Time `json:"timestamp"`
}

// fileFormat is the durable cache document.
type fileFormat struct {
	Users map[string]userEntry `json:"users"`
	Repos map[string]repoEntry `json:"repos"`
}

// Store is the durable cache shared by both fetchers. Expired entries are
// indistinguishable from absent ones; superseding a stale entry is the only
// form of deletion.
type Store struct {
	mu     sync.RWMutex
	users  map[string]userEntry
	repos  map[string]repoEntry
	path   string
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// Load reads the cache file at path. A missing or unparsable file degrades
// to an empty store with a warning; it never fails the pipeline.
func Load(path string, ttl time.Duration, logger *zap.Logger) *Store {
	store := &Store{
		users:  make(map[string]userEntry),
		repos:  make(map[string]repoEntry),
		path:   path,
		ttl:    ttl,
		logger: logger.Named("cache"),
		now:    time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			store.logger.Warn("Failed to read cache file, starting empty", zap.Error(err))
		}

		return store
	}

	var doc fileFormat
	if err := sonic.Unmarshal(data, &doc); err != nil {
		store.logger.Warn("Cache file is corrupt, starting empty", zap.Error(err))
		return store
	}

	if doc.Users != nil {
		store.users = doc.Users
	}

	if doc.Repos != nil {
		store.repos = doc.Repos
	}

	store.logger.Info("Loaded cache",
		zap.Int("users", len(store.users)),
		zap.Int("repos", len(store.repos)))

	return store
}

// Save writes the store to its file. Failures are logged by callers;
// a failed save never aborts the run.
func (s *Store) Save() error {
	s.mu.RLock()
	doc := fileFormat{Users: s.users, Repos: s.repos}
	data, err := sonic.MarshalIndent(doc, "", "  ")
	s.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := utils.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// GetUser returns the cached profile for login if a fresh entry exists.
func (s *Store) GetUser(login string) (intel.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.users[login]
	if !ok || !s.fresh(entry.Timestamp) {
		return intel.Profile{}, false
	}

	return entry.Data, true
}

// PutUser stores a profile with the current timestamp.
func (s *Store) PutUser(login string, profile intel.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[login] = userEntry{Data: profile, Timestamp: s.now()}
}

// GetRepo returns the cached stargazer logins for repo if a fresh entry exists.
func (s *Store) GetRepo(repo string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.repos[repo]
	if !ok || !s.fresh(entry.Timestamp) {
		return nil, false
	}

	return entry.Stargazers, true
}

// PutRepo stores a stargazer list with the current timestamp.
func (s *Store) PutRepo(repo string, stargazers []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.repos[repo] = repoEntry{Stargazers: stargazers, Timestamp: s.now()}
}

// Users returns how many user entries the store holds, fresh or not.
func (s *Store) Users() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.users)
}

func (s *Store) fresh(timestamp time.Time) bool {
	return s.now().Sub(timestamp) < s.ttl
}
