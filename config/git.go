package config

import (
	"context"
	"time"

	"github.com/grovetools/pulse/git"
)

// getGitRoot attempts to find the git repository root
func getGitRoot(dir string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return git.NewCLIRepository().GetGitRoot(ctx, dir)
}
