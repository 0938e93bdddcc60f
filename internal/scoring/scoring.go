// Package scoring turns enriched profiles into influence scores and
// notability decisions. Everything here is pure.
package scoring

import "github.com/orbital-sh/stargazer/internal/intel"

const (
	// LegendFollowerThreshold is the follower count that qualifies a
	// stargazer as a legend on its own.
	LegendFollowerThreshold = 5000
	// LegendStarThreshold is the owned-star count that qualifies a
	// stargazer as a legend on its own.
	LegendStarThreshold = 30000

	starsWeight         = 2.5
	followersWeight     = 2.0
	contributionsWeight = 0.1
	activityWeight      = 0.1

	// RecentActivityPlaceholder stands in for a real activity signal.
	// The upstream events API was never wired up, so every user gets the
	// same constant and the term only shifts scores uniformly.
	RecentActivityPlaceholder = 50
)

// Score computes the influence score. Identical inputs always produce an
// identical score, independent of fetch or batch order.
func Score(totalStars, followers, contributions, recentActivity int) float64 {
	return float64(totalStars)*starsWeight +
		float64(followers)*followersWeight +
		float64(contributions)*contributionsWeight +
		float64(recentActivity)*activityWeight
}

// IsLegend reports whether a stargazer passes the notability gate. This is
// a strict binary filter, not a ranking cutoff: users failing both
// thresholds are dropped from every output.
func IsLegend(followers, totalStars int) bool {
	return followers >= LegendFollowerThreshold || totalStars >= LegendStarThreshold
}

// Evaluate applies the gate to a profile and, if it passes, builds the
// Legend projection with its score and starred repository list.
func Evaluate(profile intel.Profile, starredRepos []string) (intel.Legend, bool) {
	if !IsLegend(profile.Followers, profile.TotalStars) {
		return intel.Legend{}, false
	}

	return intel.Legend{
		Profile:      profile,
		Score:        Score(profile.TotalStars, profile.Followers, profile.Contributions(), RecentActivityPlaceholder),
		StarredRepos: starredRepos,
	}, true
}
