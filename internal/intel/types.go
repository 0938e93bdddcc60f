package intel

import (
	"strings"
	"time"
)

// Profile holds the enriched data for a single stargazer.
// TotalStars is approximated from the first page of the user's own
// repositories sorted by recency, so prolific accounts may be undercounted.
type Profile struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatarUrl"`
	Company     string `json:"company,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Followers   int    `json:"followers"`
	PublicRepos int    `json:"publicRepos"`
	PublicGists int    `json:"publicGists"`
	TotalStars  int    `json:"totalStars"`
}

// Contributions combines the public repository and gist counts used as a
// low-weight signal in the influence score.
func (p Profile) Contributions() int {
	return p.PublicRepos + p.PublicGists
}

// Legend is a stargazer that passed the notability filter, together with
// its computed score and the configured repositories it starred.
type Legend struct {
	Profile

	Score        float64  `json:"score"`
	StarredRepos []string `json:"starredRepos"`
}

// CompanyCount is one bucket of the company histogram.
type CompanyCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RepoStats summarizes a single configured repository.
type RepoStats struct {
	TotalCount   int            `json:"totalCount"`
	NotableCount int            `json:"notableCount"`
	TopLegends   []Legend       `json:"topStargazers"`
	TopCompanies []CompanyCount `json:"topCompanies"`
}

// Intelligence is the final artifact of a pipeline run. It is rebuilt from
// scratch every run and read, never written, by downstream consumers.
type Intelligence struct {
	TotalUniqueStargazers int                  `json:"totalUniqueStargazers"`
	CombinedReach         int                  `json:"combinedReach"`
	Legends               []Legend             `json:"legends"`
	TopCompanies          []CompanyCount       `json:"topCompanies"`
	ByRepo                map[string]RepoStats `json:"byRepo"`
	GeneratedAt           time.Time            `json:"generatedAt"`
	RunID                 string               `json:"runId"`
}

// NormalizeCompany strips the leading "@" GitHub prepends to organization
// handles and trims whitespace. An empty result means no company.
func NormalizeCompany(company string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(company), "@"))
}
