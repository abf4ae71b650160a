// Package ignore decides whether a file is eligible for reporting. Paths
// excluded by user patterns or by version control are remembered for the
// life of the process.
package ignore

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/grovetools/pulse/git"
	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"
)

// Cache answers IsIgnored for the active file. It is safe for concurrent use.
type Cache struct {
	checker git.IgnoreChecker
	matcher *patternmatcher.PatternMatcher
	log     *logrus.Entry

	mu          sync.Mutex
	ignored     map[string]struct{}
	lastPath    string
	lastVerdict bool
	checks      int
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for check results.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Cache) { c.log = log }
}

// New creates a Cache backed by checker. exclude holds gitignore-style
// patterns that are applied before version control is consulted; they match
// any trailing portion of the file path.
func New(checker git.IgnoreChecker, exclude []string, opts ...Option) (*Cache, error) {
	c := &Cache{
		checker: checker,
		ignored: make(map[string]struct{}),
		log:     logrus.NewEntry(logrus.StandardLogger()),
	}
	if len(exclude) > 0 {
		pm, err := patternmatcher.New(exclude)
		if err != nil {
			return nil, err
		}
		c.matcher = pm
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// IsIgnored reports whether path must not be reported. A path already known
// to be ignored returns true without any external call. Version control is
// only consulted when path differs from the previously checked path; an
// unclassifiable result counts as ignored.
func (c *Cache) IsIgnored(ctx context.Context, path string) bool {
	c.mu.Lock()
	if _, ok := c.ignored[path]; ok {
		c.mu.Unlock()
		return true
	}
	if path == c.lastPath {
		verdict := c.lastVerdict
		c.mu.Unlock()
		return verdict
	}
	c.mu.Unlock()

	status := c.classify(ctx, path)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastPath = path
	c.lastVerdict = status.Excluded()
	if status == git.Ignored {
		c.ignored[path] = struct{}{}
	}

	c.log.WithFields(logrus.Fields{
		"path":   path,
		"status": status.String(),
	}).Debug("Classified file")
	return c.lastVerdict
}

func (c *Cache) classify(ctx context.Context, path string) git.IgnoreStatus {
	if c.matchesExclude(path) {
		return git.Ignored
	}

	c.mu.Lock()
	c.checks++
	c.mu.Unlock()

	return c.checker.CheckIgnore(ctx, filepath.Dir(path), path)
}

func (c *Cache) matchesExclude(path string) bool {
	if c.matcher == nil {
		return false
	}
	parts := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		suffix := filepath.FromSlash(strings.Join(parts[i:], "/"))
		if suffix == "" {
			continue
		}
		matched, err := c.matcher.MatchesOrParentMatches(suffix)
		if err != nil {
			c.log.WithError(err).WithField("path", path).Warn("Exclude pattern match failed")
			return false
		}
		if matched {
			return true
		}
	}
	return false
}

// Contains reports whether path is in the ignored set.
func (c *Cache) Contains(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ignored[path]
	return ok
}

// Len returns the number of paths known to be ignored.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ignored)
}

// Checks returns how many times version control has been consulted.
func (c *Cache) Checks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checks
}
