package resolver_test

import (
	"testing"

	"github.com/orbital-sh/stargazer/internal/resolver"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		repos            []string
		stargazers       map[string][]string
		wantUniqueCount  int
		wantStarredRepos map[string][]string
	}{
		{
			name:  "two repos with overlap",
			repos: []string{"A", "B"},
			stargazers: map[string][]string{
				"A": {"u1", "u2", "u3"},
				"B": {"u2", "u4"},
			},
			wantUniqueCount: 4,
			wantStarredRepos: map[string][]string{
				"u1": {"A"},
				"u2": {"A", "B"},
				"u3": {"A"},
				"u4": {"B"},
			},
		},
		{
			name:  "repo order drives repo list order",
			repos: []string{"B", "A"},
			stargazers: map[string][]string{
				"A": {"u1"},
				"B": {"u1"},
			},
			wantUniqueCount: 1,
			wantStarredRepos: map[string][]string{
				"u1": {"B", "A"},
			},
		},
		{
			name:             "no stargazers",
			repos:            []string{"A"},
			stargazers:       map[string][]string{"A": {}},
			wantUniqueCount:  0,
			wantStarredRepos: map[string][]string{},
		},
		{
			name:  "repo missing from results",
			repos: []string{"A", "B"},
			stargazers: map[string][]string{
				"A": {"u1"},
			},
			wantUniqueCount: 1,
			wantStarredRepos: map[string][]string{
				"u1": {"A"},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logins, starredRepos := resolver.Resolve(tt.repos, tt.stargazers)

			assert.Len(t, logins, tt.wantUniqueCount)
			assert.Equal(t, tt.wantStarredRepos, starredRepos)

			seen := make(map[string]struct{}, len(logins))
			for _, login := range logins {
				seen[login] = struct{}{}
			}
			assert.Len(t, seen, tt.wantUniqueCount, "logins must be unique")
		})
	}
}
