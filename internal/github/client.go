package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/orbital-sh/stargazer/internal/setup/config"
	"go.uber.org/zap"
)

var (
	// ErrRateLimited indicates the upstream rate limit is exhausted and the
	// request may succeed after waiting.
	ErrRateLimited = errors.New("github: rate limited")
	// ErrNotFound indicates a deleted or renamed user or repository.
	// Callers skip the unit of work without retrying.
	ErrNotFound = errors.New("github: not found")
)

// Client is a minimal GitHub REST client covering the three read
// operations the pipeline needs. Responses are decoded into typed
// structures at this boundary so malformed payloads fail here.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *zap.Logger
}

// NewClient creates a Client from the fetch configuration.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Fetch.RequestTimeout) * time.Millisecond,
		},
		baseURL: cfg.Fetch.APIURL,
		token:   cfg.Token,
		logger:  logger.Named("github"),
	}
}

// Stargazers fetches one page of a repository's stargazer listing and
// returns the logins on that page.
func (c *Client) Stargazers(ctx context.Context, repo string, page, perPage int) ([]string, error) {
	path := fmt.Sprintf("/repos/%s/stargazers?per_page=%d&page=%d", repo, perPage, page)

	var stargazers []Stargazer
	if err := c.get(ctx, path, &stargazers); err != nil {
		return nil, err
	}

	logins := make([]string, 0, len(stargazers))
	for _, s := range stargazers {
		logins = append(logins, s.Login)
	}

	return logins, nil
}

// UserProfile fetches a user's profile attributes.
func (c *Client) UserProfile(ctx context.Context, login string) (*User, error) {
	var user User
	if err := c.get(ctx, "/users/"+url.PathEscape(login), &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// UserRepos fetches the first page of a user's own repositories sorted by
// recency, up to 100 entries. Callers sum stargazer counts over this page
// as the total-stars approximation.
func (c *Client) UserRepos(ctx context.Context, login string) ([]Repo, error) {
	path := fmt.Sprintf("/users/%s/repos?sort=updated&per_page=100&page=1", url.PathEscape(login))

	var repos []Repo
	if err := c.get(ctx, path, &repos); err != nil {
		return nil, err
	}

	return repos, nil
}

// get performs an authenticated GET and decodes the response body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Authorization", "token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}

	return nil
}

// checkStatus maps upstream status codes onto the pipeline error taxonomy.
func (c *Client) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		c.logger.Warn("Rate limit exhausted",
			zap.String("reset", resp.Header.Get("X-RateLimit-Reset")))
		return ErrRateLimited
	default:
		return fmt.Errorf("unexpected status %s for %s", resp.Status, resp.Request.URL.Path)
	}
}
