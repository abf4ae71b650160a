package editor

import (
	"context"
	"testing"

	"github.com/grovetools/pulse/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferLinesClamps(t *testing.T) {
	b := NewBuffer("/src/main.go", "go", "a\nb\nc", 1, 0)
	ctx := context.Background()

	lines, err := b.Lines(ctx, -3, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)

	lines, err = b.Lines(ctx, 1, 99)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, lines)

	lines, err = b.Lines(ctx, 3, 3)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestBufferLinesReturnsCopy(t *testing.T) {
	b := NewBuffer("/src/main.go", "go", "a\nb", 0, 0)
	lines, err := b.Lines(context.Background(), 0, 2)
	require.NoError(t, err)
	lines[0] = "mutated"
	assert.Equal(t, "a", b.Text[0])
}

func TestStaticNoActiveDocument(t *testing.T) {
	s := &Static{Name: "proj"}
	_, err := s.ActiveDocument(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNoActiveDocument))

	name, err := s.Workspace(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "proj", name)
}
