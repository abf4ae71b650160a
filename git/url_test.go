package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeGitHubRemote(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		expected string
		ok       bool
	}{
		{
			name:     "SSH URL with .git",
			url:      "git@github.com:acme/widgets.git",
			expected: "https://github.com/acme/widgets",
			ok:       true,
		},
		{
			name:     "SSH URL without .git",
			url:      "git@github.com:acme/widgets",
			expected: "https://github.com/acme/widgets",
			ok:       true,
		},
		{
			name:     "dotted repo name",
			url:      "git@github.com:acme/widgets.io.git",
			expected: "https://github.com/acme/widgets.io",
			ok:       true,
		},
		{
			name:     "trailing whitespace",
			url:      "git@github.com:acme/widgets.git\n",
			expected: "https://github.com/acme/widgets",
			ok:       true,
		},
		{name: "GitLab SSH remote", url: "git@gitlab.com:acme/widgets.git"},
		{name: "HTTPS GitHub remote", url: "https://github.com/acme/widgets.git"},
		{name: "ssh scheme", url: "ssh://git@github.com/acme/widgets.git"},
		{name: "missing repo", url: "git@github.com:acme/.git"},
		{name: "nested path", url: "git@github.com:acme/group/widgets.git"},
		{name: "empty", url: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, ok := NormalizeGitHubRemote(tc.url)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, result)
		})
	}
}
