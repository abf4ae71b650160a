package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "pulse.yml")
	require.NoError(t, os.WriteFile(path, []byte("token: first\n"), 0644))

	reloaded := make(chan *Config, 4)
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	w, err := NewWatcher(dir, []string{path}, 20*time.Millisecond, logrus.NewEntry(logger), func(cfg *Config) {
		reloaded <- cfg
	})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the watcher a moment to start consuming events.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("token: second\n"), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "second", cfg.Token)
	case <-time.After(3 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "pulse.yml")
	require.NoError(t, os.WriteFile(path, []byte("token: first\n"), 0644))

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(dir, []string{path}, 20*time.Millisecond, logrus.NewEntry(logrus.New()), func(cfg *Config) {
		reloaded <- cfg
	})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))

	select {
	case <-reloaded:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(300 * time.Millisecond):
	}
}
