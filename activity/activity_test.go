package activity

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/grovetools/pulse/editor"
	"github.com/grovetools/pulse/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewWindowFullDocument(t *testing.T) {
	for _, n := range []int{11, 12, 20, 100} {
		for cursor := 0; cursor < n; cursor++ {
			start, end := ViewWindow(cursor, n)
			require.Equal(t, WindowSize, end-start, "n=%d cursor=%d", n, cursor)
			require.GreaterOrEqual(t, start, 0)
			require.LessOrEqual(t, end, n)
			assert.True(t, cursor >= start && cursor < end, "cursor %d outside [%d,%d)", cursor, start, end)
		}
	}
}

func TestViewWindowShortDocument(t *testing.T) {
	for n := 0; n < WindowSize; n++ {
		for cursor := 0; cursor <= n; cursor++ {
			start, end := ViewWindow(cursor, n)
			assert.Equal(t, 0, start)
			assert.Equal(t, n, end)
		}
	}
}

func TestViewWindowPositions(t *testing.T) {
	tests := []struct {
		name          string
		cursor, lines int
		start, end    int
	}{
		{"top", 0, 50, 0, 11},
		{"near top", 3, 50, 0, 11},
		{"middle", 20, 50, 15, 26},
		{"near end", 47, 50, 39, 50},
		{"last line", 49, 50, 39, 50},
		{"exact size", 10, 11, 0, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := ViewWindow(tt.cursor, tt.lines)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestChanged(t *testing.T) {
	base := State{Workspace: "proj", FileName: "/p/a.go", Language: "go", Row: 3, Col: 4, ViewChunk: "x"}
	assert.False(t, Changed(base, base))

	mutations := map[string]func(*State){
		"workspace": func(s *State) { s.Workspace = "other" },
		"fileName":  func(s *State) { s.FileName = "/p/b.go" },
		"language":  func(s *State) { s.Language = "rust" },
		"row":       func(s *State) { s.Row++ },
		"col":       func(s *State) { s.Col++ },
		"viewChunk": func(s *State) { s.ViewChunk = "y" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cur := base
			mutate(&cur)
			assert.True(t, Changed(base, cur))
		})
	}
}

func numbered(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	return strings.Join(lines, "\n")
}

func TestCapture(t *testing.T) {
	ec := &editor.Static{
		Name:     "proj",
		Document: editor.NewBuffer("/p/main.go", "go", numbered(30), 12, 7),
	}

	s, err := Capture(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, "proj", s.Workspace)
	assert.Equal(t, "/p/main.go", s.FileName)
	assert.Equal(t, "go", s.Language)
	assert.Equal(t, 12, s.Row)
	assert.Equal(t, 7, s.Col)

	chunk := strings.Split(s.ViewChunk, "\n")
	require.Len(t, chunk, WindowSize)
	assert.Equal(t, "line 7", chunk[0])
	assert.Equal(t, "line 17", chunk[len(chunk)-1])
}

func TestCaptureShortDocument(t *testing.T) {
	ec := &editor.Static{
		Name:     "proj",
		Document: editor.NewBuffer("/p/a.txt", "text", "one\ntwo", 1, 0),
	}
	s, err := Capture(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", s.ViewChunk)
}

func TestCaptureNoActiveDocument(t *testing.T) {
	_, err := Capture(context.Background(), &editor.Static{Name: "proj"})
	assert.True(t, errors.Is(err, errors.ErrCodeNoActiveDocument))
}
