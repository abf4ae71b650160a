// Package editor defines the accessor pulse uses to observe an editing
// session. Concrete adapters live in subpackages.
package editor

import (
	"context"
	"strings"

	"github.com/grovetools/pulse/errors"
)

// Document is the active document of an editor session.
type Document interface {
	// Path is the absolute file path of the document.
	Path() string
	// Language is the editor's language tag (e.g. "go", "typescript").
	Language() string
	// LineCount is the total number of lines.
	LineCount() int
	// Cursor returns the zero-based cursor row and column.
	Cursor() (row, col int)
	// Lines returns lines [start, end) of the document.
	Lines(ctx context.Context, start, end int) ([]string, error)
}

// Context gives access to the current editing context.
type Context interface {
	// Workspace returns the display name of the open workspace.
	Workspace(ctx context.Context) (string, error)
	// ActiveDocument returns the focused document, or an error with code
	// NO_ACTIVE_DOCUMENT when there is none.
	ActiveDocument(ctx context.Context) (Document, error)
}

// Buffer is an in-memory Document.
type Buffer struct {
	FilePath string
	Lang     string
	Text     []string
	Row      int
	Col      int
}

func (b *Buffer) Path() string           { return b.FilePath }
func (b *Buffer) Language() string       { return b.Lang }
func (b *Buffer) LineCount() int         { return len(b.Text) }
func (b *Buffer) Cursor() (row, col int) { return b.Row, b.Col }

// Lines returns a copy of lines [start, end), clamped to the buffer.
func (b *Buffer) Lines(_ context.Context, start, end int) ([]string, error) {
	if start < 0 {
		start = 0
	}
	if end > len(b.Text) {
		end = len(b.Text)
	}
	if start >= end {
		return nil, nil
	}
	out := make([]string, end-start)
	copy(out, b.Text[start:end])
	return out, nil
}

// NewBuffer builds a Buffer from newline-separated text.
func NewBuffer(path, lang, text string, row, col int) *Buffer {
	return &Buffer{FilePath: path, Lang: lang, Text: strings.Split(text, "\n"), Row: row, Col: col}
}

// Static is a Context with a fixed workspace and an optional document.
type Static struct {
	Name     string
	Document Document
}

// Workspace returns the configured workspace name.
func (s *Static) Workspace(context.Context) (string, error) { return s.Name, nil }

// ActiveDocument returns the configured document.
func (s *Static) ActiveDocument(context.Context) (Document, error) {
	if s.Document == nil {
		return nil, errors.NoActiveDocument()
	}
	return s.Document, nil
}
