package git

import (
	"context"
	"fmt"
	"strings"
)

// Remotes lists the configured remote names for the repository containing dir.
func (r *CLIRepository) Remotes(ctx context.Context, dir string) ([]string, error) {
	out, err := r.output(ctx, dir, "remote")
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}
	return splitLines(out), nil
}

// RemoteURLs lists every URL configured for remote.
func (r *CLIRepository) RemoteURLs(ctx context.Context, dir, remote string) ([]string, error) {
	if err := r.cmdBuilder.Validate("remoteName", remote); err != nil {
		return nil, err
	}

	out, err := r.output(ctx, dir, "remote", "get-url", "--all", remote)
	if err != nil {
		return nil, fmt.Errorf("get url for remote %s: %w", remote, err)
	}
	return splitLines(out), nil
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
