// Package aggregator builds the final intelligence artifact from the
// filtered legend set.
package aggregator

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/orbital-sh/stargazer/internal/intel"
)

const (
	// GlobalLegendLimit caps the legend list kept in the artifact.
	GlobalLegendLimit = 100
	// GlobalCompanyLimit caps the global company histogram.
	GlobalCompanyLimit = 20
	// RepoLegendLimit caps the per-repository legend list.
	RepoLegendLimit = 10
	// RepoCompanyLimit caps the per-repository company list.
	RepoCompanyLimit = 5
)

// Build assembles the Intelligence document. Legends are re-sorted and
// re-aggregated from scratch, so the output depends only on the data, never
// on fetch completion order. Combined reach sums followers over all legends,
// not just the retained top slice.
func Build(legends []intel.Legend, repos []string, stargazers map[string][]string, runID string, now time.Time) *intel.Intelligence {
	sorted := sortLegends(legends)

	unique := make(map[string]struct{})
	for _, logins := range stargazers {
		for _, login := range logins {
			unique[login] = struct{}{}
		}
	}

	reach := 0
	for _, legend := range sorted {
		reach += legend.Followers
	}

	byRepo := make(map[string]intel.RepoStats, len(repos))
	for _, repo := range repos {
		byRepo[repo] = buildRepoStats(repo, sorted, len(stargazers[repo]))
	}

	return &intel.Intelligence{
		TotalUniqueStargazers: len(unique),
		CombinedReach:         reach,
		Legends:               truncate(sorted, GlobalLegendLimit),
		TopCompanies:          companyCounts(sorted, GlobalCompanyLimit),
		ByRepo:                byRepo,
		GeneratedAt:           now,
		RunID:                 runID,
	}
}

// buildRepoStats filters the legend set down to one repository.
func buildRepoStats(repo string, sorted []intel.Legend, totalCount int) intel.RepoStats {
	repoLegends := make([]intel.Legend, 0)

	for _, legend := range sorted {
		if slices.Contains(legend.StarredRepos, repo) {
			repoLegends = append(repoLegends, legend)
		}
	}

	return intel.RepoStats{
		TotalCount:   totalCount,
		NotableCount: len(repoLegends),
		TopLegends:   truncate(repoLegends, RepoLegendLimit),
		TopCompanies: companyCounts(repoLegends, RepoCompanyLimit),
	}
}

// sortLegends orders legends by descending score, breaking ties by login so
// re-runs over identical data produce identical output.
func sortLegends(legends []intel.Legend) []intel.Legend {
	sorted := slices.Clone(legends)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}

		return sorted[i].Login < sorted[j].Login
	})

	return sorted
}

// companyCounts groups legends by normalized company, counting only those
// with a company set, ordered by count then name.
func companyCounts(legends []intel.Legend, limit int) []intel.CompanyCount {
	counts := make(map[string]int)

	for _, legend := range legends {
		company := intel.NormalizeCompany(legend.Company)
		if company == "" {
			continue
		}

		counts[company]++
	}

	result := make([]intel.CompanyCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, intel.CompanyCount{Name: name, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}

		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})

	return truncate(result, limit)
}

func truncate[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit:limit]
	}

	return items
}
