package git

import (
	"regexp"
	"strings"
)

const githubSSHPrefix = "git@github.com:"

var githubSSHRemote = regexp.MustCompile(`^git@github\.com:[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// NormalizeGitHubRemote converts an SSH GitHub remote such as
// git@github.com:owner/repo.git into https://github.com/owner/repo.
// Any other URL shape is rejected.
func NormalizeGitHubRemote(url string) (string, bool) {
	url = strings.TrimSpace(url)
	if !githubSSHRemote.MatchString(url) {
		return "", false
	}

	path := strings.TrimSuffix(strings.TrimPrefix(url, githubSSHPrefix), ".git")
	owner, repo, _ := strings.Cut(path, "/")
	if owner == "" || repo == "" {
		return "", false
	}

	return "https://github.com/" + path, true
}
