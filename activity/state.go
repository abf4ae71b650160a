// Package activity captures what the developer is looking at and decides
// whether it differs from what was last reported.
package activity

// State is a point-in-time snapshot of the editing context. It is a value
// type and is compared field by field.
type State struct {
	Workspace string `json:"workspace"`
	FileName  string `json:"fileName"`
	Language  string `json:"language"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	ViewChunk string `json:"viewChunk"`
}

// IsZero reports whether s is the zero State.
func (s State) IsZero() bool {
	return s == State{}
}

// Changed reports whether cur differs from prev in any field.
func Changed(prev, cur State) bool {
	return prev.Workspace != cur.Workspace ||
		prev.FileName != cur.FileName ||
		prev.Language != cur.Language ||
		prev.Row != cur.Row ||
		prev.Col != cur.Col ||
		prev.ViewChunk != cur.ViewChunk
}
