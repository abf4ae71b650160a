// Package report sends activity to the remote collector.
package report

import (
	"encoding/json"

	"github.com/grovetools/pulse/activity"
)

// Payload is the JSON document posted to the collector.
type Payload struct {
	Repository *string `json:"repository"`
	Workspace  string  `json:"workspace"`
	FileName   string  `json:"fileName"`
	Language   string  `json:"language"`
	Row        int     `json:"row"`
	Col        int     `json:"col"`
	ViewChunk  string  `json:"viewChunk"`
}

// NewPayload builds a Payload from state. An empty repo is sent as null.
func NewPayload(state activity.State, repo string) Payload {
	p := Payload{
		Workspace: state.Workspace,
		FileName:  state.FileName,
		Language:  state.Language,
		Row:       state.Row,
		Col:       state.Col,
		ViewChunk: state.ViewChunk,
	}
	if repo != "" {
		p.Repository = &repo
	}
	return p
}

// Marshal encodes the payload as JSON.
func (p Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}
