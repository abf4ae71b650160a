package git

import (
	"context"
	"testing"

	"4d63.com/testcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemotes(t *testing.T) {
	dir := testcli.MkdirTemp(t)
	testcli.Chdir(t, dir)
	testcli.Exec(t, "git init")
	testcli.Exec(t, "git remote add upstream https://gitlab.com/acme/widgets.git")
	testcli.Exec(t, "git remote add origin git@github.com:acme/widgets.git")
	testcli.Exec(t, "git remote set-url --add origin git@github.com:acme/widgets-mirror.git")

	repo := NewCLIRepository()
	ctx := context.Background()

	remotes, err := repo.Remotes(ctx, dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"origin", "upstream"}, remotes)

	urls, err := repo.RemoteURLs(ctx, dir, "origin")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"git@github.com:acme/widgets.git",
		"git@github.com:acme/widgets-mirror.git",
	}, urls)

	_, err = repo.RemoteURLs(ctx, dir, "missing")
	assert.Error(t, err)

	_, err = repo.RemoteURLs(ctx, dir, "-v")
	assert.Error(t, err, "option-like remote names are rejected before spawning git")
}

func TestRemotes_NotARepository(t *testing.T) {
	repo := NewCLIRepository()
	_, err := repo.Remotes(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestRemotes_Cancelled(t *testing.T) {
	dir := t.TempDir()
	runGitCommand(t, dir, "init")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCLIRepository().Remotes(ctx, dir)
	assert.Error(t, err)
}

func TestIsGitRepo(t *testing.T) {
	tmpDir := t.TempDir()
	runGitCommand(t, tmpDir, "init")

	assert.True(t, IsGitRepo(tmpDir))
	assert.False(t, IsGitRepo(t.TempDir()))

	root, err := GetGitRoot(tmpDir)
	require.NoError(t, err)
	assert.NotEmpty(t, root)
}
