// Package repository maps a workspace to the browsable URL of its GitHub
// repository.
package repository

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/grovetools/pulse/git"
	"github.com/sirupsen/logrus"
)

// result is a memoized resolution. found is false for a workspace with no
// GitHub remote.
type result struct {
	url   string
	found bool
}

// Resolver resolves and memoizes repository URLs per workspace. Both hits and
// misses are cached for the life of the Resolver.
type Resolver struct {
	remotes git.RemoteProvider
	log     *logrus.Entry

	mu      sync.RWMutex
	cache   map[string]result
	lookups int
}

// New creates a Resolver that reads remotes through p.
func New(p git.RemoteProvider, log *logrus.Entry) *Resolver {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Resolver{
		remotes: p,
		log:     log,
		cache:   make(map[string]result),
	}
}

// Resolve returns the repository URL for workspace, inspecting the remotes of
// the repository containing file on a cache miss. The first remote URL, in
// remote order, that is an SSH GitHub address wins. A resolution interrupted
// by ctx is reported as absent and not cached.
func (r *Resolver) Resolve(ctx context.Context, workspace, file string) (string, bool) {
	r.mu.RLock()
	cached, ok := r.cache[workspace]
	r.mu.RUnlock()
	if ok {
		return cached.url, cached.found
	}

	res := r.lookup(ctx, filepath.Dir(file))
	if ctx.Err() != nil {
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.cache[workspace]; ok {
		return existing.url, existing.found
	}
	r.cache[workspace] = res
	r.log.WithFields(logrus.Fields{
		"workspace":  workspace,
		"repository": res.url,
	}).Debug("Resolved repository")
	return res.url, res.found
}

func (r *Resolver) lookup(ctx context.Context, dir string) result {
	r.mu.Lock()
	r.lookups++
	r.mu.Unlock()

	names, err := r.remotes.Remotes(ctx, dir)
	if err != nil {
		if ctx.Err() == nil {
			r.log.WithError(err).WithField("dir", dir).Warn("Failed to list git remotes")
		}
		return result{}
	}

	for _, name := range names {
		if ctx.Err() != nil {
			return result{}
		}
		urls, err := r.remotes.RemoteURLs(ctx, dir, name)
		if err != nil {
			if ctx.Err() == nil {
				r.log.WithError(err).WithField("remote", name).Warn("Failed to read remote URL")
			}
			continue
		}
		for _, u := range urls {
			if normalized, ok := git.NormalizeGitHubRemote(u); ok {
				return result{url: normalized, found: true}
			}
		}
	}
	return result{}
}

// Cached returns the memoized result for workspace. known is false when the
// workspace has not been resolved yet.
func (r *Resolver) Cached(workspace string) (url string, found, known bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, known := r.cache[workspace]
	return res.url, res.found, known
}

// Lookups returns how many cache misses reached git.
func (r *Resolver) Lookups() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookups
}
