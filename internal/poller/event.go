package poller

import (
	"time"

	"github.com/grovetools/pulse/activity"
)

// Outcome is the result of a single tick or of the report it started.
type Outcome int

const (
	// Skipped means no state could be captured (no document, editor down).
	Skipped Outcome = iota
	// Unchanged means the state matches the last reported state.
	Unchanged
	// Ignored means the active file is excluded from reporting.
	Ignored
	// Reporting means the state was accepted and a report started.
	Reporting
	// Sent means a report was delivered.
	Sent
	// Failed means a report could not be delivered.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Unchanged:
		return "unchanged"
	case Ignored:
		return "ignored"
	case Reporting:
		return "reporting"
	case Sent:
		return "sent"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Event describes what happened on a tick or to a report.
type Event struct {
	Outcome    Outcome        `json:"outcome"`
	State      activity.State `json:"state"`
	Repository string         `json:"repository,omitempty"`
	Err        error          `json:"-"`
	Time       time.Time      `json:"time"`
}

// Observer receives events. It is called synchronously and must not block.
type Observer func(Event)
