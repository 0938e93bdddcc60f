package github

// User maps the fields of a GitHub user profile response that the
// pipeline consumes.
type User struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url"`
	Company     string `json:"company"`
	Bio         string `json:"bio"`
	Followers   int    `json:"followers"`
	PublicRepos int    `json:"public_repos"`
	PublicGists int    `json:"public_gists"`
}

// Repo maps a repository entry from a user's repository listing.
type Repo struct {
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	StargazersCount int    `json:"stargazers_count"`
	Fork            bool   `json:"fork"`
}

// Stargazer maps one entry of a repository's stargazer listing.
type Stargazer struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}
