package git

import "context"

// IgnoreChecker classifies paths against version-control ignore rules.
type IgnoreChecker interface {
	// CheckIgnore reports whether path is excluded, scoped to dir.
	CheckIgnore(ctx context.Context, dir, path string) IgnoreStatus
}

// RemoteProvider lists configured remotes and their URLs.
type RemoteProvider interface {
	// Remotes returns remote names in the order git prints them.
	Remotes(ctx context.Context, dir string) ([]string, error)
	// RemoteURLs returns every URL configured for the named remote.
	RemoteURLs(ctx context.Context, dir, remote string) ([]string, error)
}

// RepositoryProvider defines the interface for general git repository operations
type RepositoryProvider interface {
	IgnoreChecker
	RemoteProvider

	IsGitRepo(ctx context.Context, dir string) bool
	GetGitRoot(ctx context.Context, dir string) (string, error)
}
