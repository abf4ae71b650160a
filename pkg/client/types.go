package client

import "time"

// State mirrors the editing state last accepted for reporting.
type State struct {
	Workspace string `json:"workspace"`
	FileName  string `json:"fileName"`
	Language  string `json:"language"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	ViewChunk string `json:"viewChunk"`
}

// Status is the reporter status served at /api/state.
type Status struct {
	StartedAt     time.Time      `json:"started_at"`
	LastReported  State          `json:"last_reported"`
	Repository    string         `json:"repository,omitempty"`
	Counts        map[string]int `json:"counts"`
	LastError     string         `json:"last_error,omitempty"`
	LastErrorAt   time.Time      `json:"last_error_at,omitempty"`
	LastSentAt    time.Time      `json:"last_sent_at,omitempty"`
	ConfigReloads int            `json:"config_reloads"`
}

// RunningConfig is the effective configuration served at /api/config.
type RunningConfig struct {
	Target        string        `json:"target"`
	Transport     string        `json:"transport"`
	Interval      time.Duration `json:"interval"`
	Timeout       time.Duration `json:"timeout"`
	Exclude       []string      `json:"exclude,omitempty"`
	EditorAddress string        `json:"editor_address,omitempty"`
	Sources       []string      `json:"sources,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
}

// Event is a single activity update streamed from /api/stream.
type Event struct {
	UpdateType string    `json:"update_type"`
	Outcome    string    `json:"outcome,omitempty"`
	FileName   string    `json:"file_name,omitempty"`
	Repository string    `json:"repository,omitempty"`
	Error      string    `json:"error,omitempty"`
	ConfigFile string    `json:"config_file,omitempty"`
	Time       time.Time `json:"time"`
}
