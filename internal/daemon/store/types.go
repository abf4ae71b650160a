// Package store keeps the reporter's observable status in memory and fans
// out changes to subscribers.
package store

import (
	"time"

	"github.com/grovetools/pulse/activity"
	"github.com/grovetools/pulse/internal/poller"
)

// Status is the reporter's world view as exposed over the status socket.
type Status struct {
	StartedAt     time.Time      `json:"started_at"`
	LastReported  activity.State `json:"last_reported"`
	Repository    string         `json:"repository,omitempty"`
	Counts        map[string]int `json:"counts"`
	LastError     string         `json:"last_error,omitempty"`
	LastErrorAt   time.Time      `json:"last_error_at,omitempty"`
	LastSentAt    time.Time      `json:"last_sent_at,omitempty"`
	ConfigReloads int            `json:"config_reloads"`
}

// UpdateType defines what kind of data changed.
type UpdateType string

const (
	UpdateEvent        UpdateType = "event"
	UpdateConfigReload UpdateType = "config_reload"
)

// Update represents a change to the status.
type Update struct {
	Type    UpdateType
	Source  string
	Event   poller.Event
	Payload interface{}
}
