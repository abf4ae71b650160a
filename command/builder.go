package command

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds every external process. Superseded operations are
	// normally cancelled long before this fires.
	DefaultTimeout = 30 * time.Second

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = 10 * time.Minute
)

var validRemoteName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9/_.-]*$`)

// SafeBuilder provides secure command execution with validation
type SafeBuilder struct {
	defaultTimeout time.Duration
	validators     map[string]func(string) error
	executor       Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		defaultTimeout: DefaultTimeout,
		validators:     makeDefaultValidators(),
		executor:       exec,
	}
}

// makeDefaultValidators returns the default set of validators
func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"filePath":   validateFilePath,
		"remoteName": validateRemoteName,
	}
}

// validateFilePath rejects paths git could mistake for options or that
// cannot be passed through argv.
func validateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	if strings.HasPrefix(path, "-") {
		return fmt.Errorf("file path cannot start with '-': %s", path)
	}

	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("file path contains a NUL byte")
	}

	return nil
}

// validateRemoteName ensures remote names are safe to pass to git
func validateRemoteName(name string) error {
	if name == "" {
		return fmt.Errorf("remote name cannot be empty")
	}

	if !validRemoteName.MatchString(name) {
		return fmt.Errorf("invalid remote name: %s", name)
	}

	return nil
}

// Command represents a safe command configuration
type Command struct {
	ctx      context.Context
	cancel   context.CancelFunc
	name     string
	args     []string
	dir      string
	timeout  time.Duration
	executor Executor
}

// Build creates a new command bound to ctx and the builder's default timeout.
// The command's context is released by Output, Run or Release.
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	if name == "" {
		return nil, fmt.Errorf("command name cannot be empty")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, sb.defaultTimeout)

	return &Command{
		ctx:      timeoutCtx,
		cancel:   cancel,
		name:     name,
		args:     args,
		timeout:  sb.defaultTimeout,
		executor: sb.executor,
	}, nil
}

// WithTimeout narrows the command's deadline. The parent context still applies.
func (c *Command) WithTimeout(timeout time.Duration) *Command {
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}

	ctx, cancel := context.WithTimeout(c.ctx, timeout)
	prev := c.cancel
	c.ctx = ctx
	c.cancel = func() {
		cancel()
		prev()
	}
	c.timeout = timeout
	return c
}

// InDir sets the working directory of the command.
func (c *Command) InDir(dir string) *Command {
	c.dir = dir
	return c
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// String returns the command line for logging.
func (c *Command) String() string {
	return strings.TrimSpace(c.name + " " + strings.Join(c.args, " "))
}

// Context returns the context the process runs under.
func (c *Command) Context() context.Context {
	return c.ctx
}

// Exec creates and returns an exec.Cmd. Callers using Exec directly must
// call Release once the process has finished.
func (c *Command) Exec() *exec.Cmd {
	cmd := c.executor.CommandContext(c.ctx, c.name, c.args...) //nolint:gosec // SafeBuilder provides validation
	if c.dir != "" {
		cmd.Dir = c.dir
	}
	return cmd
}

// Output runs the command and returns its stdout.
func (c *Command) Output() ([]byte, error) {
	defer c.Release()
	return c.Exec().Output()
}

// Run runs the command, discarding its output.
func (c *Command) Run() error {
	defer c.Release()
	return c.Exec().Run()
}

// Release frees the resources held by the command's context.
func (c *Command) Release() {
	if c.cancel != nil {
		c.cancel()
	}
}
