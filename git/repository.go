package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/grovetools/pulse/command"
	"github.com/grovetools/pulse/errors"
)

// CLIRepository implements RepositoryProvider using the git CLI.
type CLIRepository struct {
	cmdBuilder *command.SafeBuilder
}

// Ensure it implements the interface
var _ RepositoryProvider = (*CLIRepository)(nil)

// NewCLIRepository creates a new CLI repository provider
func NewCLIRepository() *CLIRepository {
	return NewCLIRepositoryWithBuilder(command.NewSafeBuilder())
}

// NewCLIRepositoryWithBuilder creates a provider that spawns processes through sb.
func NewCLIRepositoryWithBuilder(sb *command.SafeBuilder) *CLIRepository {
	return &CLIRepository{cmdBuilder: sb}
}

// IsGitRepo checks if a directory is inside a git repository
func (r *CLIRepository) IsGitRepo(ctx context.Context, dir string) bool {
	_, err := r.output(ctx, dir, "rev-parse", "--git-dir")
	return err == nil
}

// GetGitRoot returns the root directory of the git repository
func (r *CLIRepository) GetGitRoot(ctx context.Context, dir string) (string, error) {
	out, err := r.output(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("get git root: %w", err)
	}
	return out, nil
}

// output runs git in dir and returns trimmed stdout.
func (r *CLIRepository) output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd, err := r.cmdBuilder.Build(ctx, "git", args...)
	if err != nil {
		return "", fmt.Errorf("failed to build command: %w", err)
	}

	out, err := cmd.InDir(dir).Output()
	if err != nil {
		return "", errors.CommandFailed(cmd.String(), err).WithDetail("dir", dir)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsGitRepo checks if the given directory is inside a git repository
func IsGitRepo(dir string) bool {
	return NewCLIRepository().IsGitRepo(context.Background(), dir)
}

// GetGitRoot returns the root directory of the git repository
func GetGitRoot(dir string) (string, error) {
	return NewCLIRepository().GetGitRoot(context.Background(), dir)
}
