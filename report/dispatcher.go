package report

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/grovetools/pulse/activity"
	"github.com/grovetools/pulse/errors"
	"github.com/grovetools/pulse/scope"
)

// Sender delivers an encoded payload to target.
type Sender interface {
	Send(ctx context.Context, target, token string, body []byte) error
}

// Dispatcher sends reports, cancelling any report still in flight when a new
// one starts.
type Dispatcher struct {
	mu      sync.RWMutex
	sender  Sender
	timeout time.Duration
	scope   scope.Scope
}

// NewDispatcher creates a Dispatcher. A zero timeout means no deadline
// beyond the caller's context.
func NewDispatcher(sender Sender, timeout time.Duration) *Dispatcher {
	return &Dispatcher{sender: sender, timeout: timeout}
}

// NewSender picks a Sender for the transport, inferring it from the target
// scheme when transport is empty.
func NewSender(transport, target string) Sender {
	if transport == "websocket" ||
		(transport == "" && (strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://"))) {
		return NewWebSocketSender()
	}
	return NewHTTPSender(nil)
}

// Dispatch encodes state and repo and sends them to target. It returns
// ctx.Err() when superseded or cancelled.
func (d *Dispatcher) Dispatch(ctx context.Context, target, token string, state activity.State, repo string) error {
	ctx, release := d.scope.Start(ctx)
	defer release()

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	body, err := NewPayload(state, repo).Marshal()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to encode report")
	}
	return d.Sender().Send(ctx, target, token, body)
}

// Sender returns the sender used for new reports.
func (d *Dispatcher) Sender() Sender {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sender
}

// SetSender replaces the sender for subsequent reports and returns the
// previous one. A report already in flight finishes on the old sender.
func (d *Dispatcher) SetSender(s Sender) Sender {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.sender
	d.sender = s
	return prev
}

// Cancel aborts the report in flight, if any.
func (d *Dispatcher) Cancel() {
	d.scope.Cancel()
}

// InFlight reports whether a report is being sent.
func (d *Dispatcher) InFlight() bool {
	return d.scope.Active()
}
