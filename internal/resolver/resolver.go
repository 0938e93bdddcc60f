// Package resolver merges per-repository stargazer lists into a single
// deduplicated identity set.
package resolver

// Resolve builds the unique login set and a login to repository index from
// the per-repository stargazer lists. Repos is iterated in the given order
// so each login's repository list preserves first-appearance order; the
// returned login slice has no ordering guarantee beyond determinism over
// identical input.
func Resolve(repos []string, stargazers map[string][]string) ([]string, map[string][]string) {
	starredRepos := make(map[string][]string)
	logins := make([]string, 0)

	for _, repo := range repos {
		for _, login := range stargazers[repo] {
			if _, seen := starredRepos[login]; !seen {
				logins = append(logins, login)
			}

			starredRepos[login] = append(starredRepos[login], repo)
		}
	}

	return logins, starredRepos
}
