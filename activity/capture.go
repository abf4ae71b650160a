package activity

import (
	"context"
	"strings"

	"github.com/grovetools/pulse/editor"
)

const (
	// Radius is the number of lines kept on each side of the cursor.
	Radius = 5
	// WindowSize is the number of lines in a full view window.
	WindowSize = 2*Radius + 1
)

// ViewWindow returns the half-open line range [start, end) of the view
// window for cursor line cursor in a document of lines lines. Documents
// shorter than WindowSize are returned whole; otherwise the window is
// exactly WindowSize lines, shifted back when it would run past the end.
func ViewWindow(cursor, lines int) (start, end int) {
	if lines < WindowSize {
		return 0, max(lines, 0)
	}
	start = max(0, cursor-Radius)
	if lines-start < WindowSize {
		start -= WindowSize - (lines - start)
	}
	return start, start + WindowSize
}

// Capture builds a State from the editor's active document. It returns the
// accessor's error unchanged when there is no active document.
func Capture(ctx context.Context, ec editor.Context) (State, error) {
	doc, err := ec.ActiveDocument(ctx)
	if err != nil {
		return State{}, err
	}
	workspace, err := ec.Workspace(ctx)
	if err != nil {
		return State{}, err
	}

	row, col := doc.Cursor()
	start, end := ViewWindow(row, doc.LineCount())
	lines, err := doc.Lines(ctx, start, end)
	if err != nil {
		return State{}, err
	}

	return State{
		Workspace: workspace,
		FileName:  doc.Path(),
		Language:  doc.Language(),
		Row:       row,
		Col:       col,
		ViewChunk: strings.Join(lines, "\n"),
	}, nil
}
