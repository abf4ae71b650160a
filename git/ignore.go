package git

import (
	"context"
	"os/exec"
)

// IgnoreStatus is the outcome of a version-control ignore check.
type IgnoreStatus int

const (
	// IgnoreUnknown means the check could not classify the path.
	IgnoreUnknown IgnoreStatus = iota
	// Ignored means the path is excluded by ignore rules.
	Ignored
	// NotIgnored means the path is eligible for tracking.
	NotIgnored
)

// String returns the status name for logs.
func (s IgnoreStatus) String() string {
	switch s {
	case Ignored:
		return "ignored"
	case NotIgnored:
		return "not-ignored"
	default:
		return "unknown"
	}
}

// Excluded applies the fail-closed policy: anything that is not
// definitely tracked-eligible counts as excluded.
func (s IgnoreStatus) Excluded() bool {
	return s != NotIgnored
}

// CheckIgnore runs `git check-ignore -q` in dir. Exit status 0 means ignored,
// 1 means not ignored, and any other result (including failure to start git
// or cancellation) is IgnoreUnknown.
func (r *CLIRepository) CheckIgnore(ctx context.Context, dir, path string) IgnoreStatus {
	if err := r.cmdBuilder.Validate("filePath", path); err != nil {
		return IgnoreUnknown
	}

	cmd, err := r.cmdBuilder.Build(ctx, "git", "check-ignore", "-q", "--", path)
	if err != nil {
		return IgnoreUnknown
	}

	return ignoreStatusFromError(cmd.InDir(dir).Run())
}

func ignoreStatusFromError(err error) IgnoreStatus {
	if err == nil {
		return Ignored
	}
	if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
		return NotIgnored
	}
	return IgnoreUnknown
}
