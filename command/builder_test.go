package command

import (
	"context"
	"os/exec"
	"testing"
	"time"
)

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"absolute path", "/path/to/file.go", false},
		{"relative path", "relative/path.txt", false},
		{"path with spaces", "/tmp/my project/main.go", false},
		{"parent segments", "/repo/../other/file.go", false},
		{"option-like", "--exec=rm", true},
		{"nul byte", "file\x00.go", true},
		{"empty path", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFilePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFilePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRemoteName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"origin", "origin", false},
		{"upstream with dash", "my-fork", false},
		{"nested", "team/mirror", false},
		{"empty", "", true},
		{"option-like", "-v", true},
		{"shell chars", "origin;ls", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRemoteName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRemoteName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSafeBuilder_Build(t *testing.T) {
	sb := NewSafeBuilder()

	cmd, err := sb.Build(context.Background(), "git", "remote")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer cmd.Release()

	if cmd.String() != "git remote" {
		t.Errorf("String() = %q", cmd.String())
	}
	if cmd.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", cmd.timeout, DefaultTimeout)
	}

	if _, err := sb.Build(context.Background(), ""); err == nil {
		t.Error("Build() with empty name should fail")
	}
}

func TestCommand_WithTimeout(t *testing.T) {
	sb := NewSafeBuilder()
	cmd, _ := sb.Build(context.Background(), "git")
	defer cmd.Release()

	cmd.WithTimeout(20 * time.Minute)
	if cmd.timeout != MaxTimeout {
		t.Errorf("timeout = %v, want capped at %v", cmd.timeout, MaxTimeout)
	}

	deadline, ok := cmd.Context().Deadline()
	if !ok || time.Until(deadline) > DefaultTimeout {
		t.Error("narrowed timeout must not extend the builder deadline")
	}
}

func TestCommand_InheritsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sb := NewSafeBuilder()
	cmd, _ := sb.Build(ctx, "git")
	defer cmd.Release()

	cancel()
	select {
	case <-cmd.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("command context was not cancelled with its parent")
	}
}

func TestCommand_ExecUsesExecutorAndDir(t *testing.T) {
	var gotName string
	var gotArgs []string
	fake := ExecutorFunc(func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotName, gotArgs = name, args
		return exec.CommandContext(ctx, "true")
	})

	sb := NewSafeBuilderWithExecutor(fake)
	cmd, _ := sb.Build(context.Background(), "git", "remote", "-v")
	execCmd := cmd.InDir("/tmp").Exec()
	defer cmd.Release()

	if gotName != "git" || len(gotArgs) != 2 || gotArgs[1] != "-v" {
		t.Errorf("executor got %s %v", gotName, gotArgs)
	}
	if execCmd.Dir != "/tmp" {
		t.Errorf("Dir = %q, want /tmp", execCmd.Dir)
	}
}
