// Package poller drives the reporting pipeline on a fixed interval.
package poller

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/grovetools/pulse/activity"
	"github.com/grovetools/pulse/editor"
	"github.com/grovetools/pulse/errors"
	"github.com/grovetools/pulse/scope"
	"github.com/sirupsen/logrus"
)

// IgnoreCache decides whether a file may be reported.
type IgnoreCache interface {
	IsIgnored(ctx context.Context, path string) bool
}

// Resolver maps a workspace to its repository URL.
type Resolver interface {
	Resolve(ctx context.Context, workspace, file string) (string, bool)
}

// Dispatcher sends a report.
type Dispatcher interface {
	Dispatch(ctx context.Context, target, token string, state activity.State, repo string) error
}

// Credentials identify the collector.
type Credentials struct {
	Target string
	Token  string
}

// Options configures a Poller.
type Options struct {
	Editor      editor.Context
	Ignore      IgnoreCache
	Resolver    Resolver
	Dispatcher  Dispatcher
	Interval    time.Duration
	Credentials Credentials
	Logger      *logrus.Entry
}

// Poller owns the last-reported state and the in-flight report.
type Poller struct {
	editor     editor.Context
	ignore     IgnoreCache
	resolver   Resolver
	dispatcher Dispatcher
	interval   time.Duration
	log        *logrus.Entry

	mu    sync.Mutex
	last  activity.State
	creds Credentials

	obsMu     sync.RWMutex
	observers []Observer

	scope scope.Scope
	wg    sync.WaitGroup
	now   func() time.Time
}

// New creates a Poller from opts.
func New(opts Options) *Poller {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Poller{
		editor:     opts.Editor,
		ignore:     opts.Ignore,
		resolver:   opts.Resolver,
		dispatcher: opts.Dispatcher,
		interval:   opts.Interval,
		creds:      opts.Credentials,
		log:        log,
		now:        time.Now,
	}
}

// Name identifies the poller among the daemon's components.
func (p *Poller) Name() string { return "poller" }

// Observe registers an observer for tick and report events.
func (p *Poller) Observe(o Observer) {
	p.obsMu.Lock()
	defer p.obsMu.Unlock()
	p.observers = append(p.observers, o)
}

func (p *Poller) emit(e Event) {
	e.Time = p.now()
	p.obsMu.RLock()
	defer p.obsMu.RUnlock()
	for _, o := range p.observers {
		o(e)
	}
}

// SetCredentials replaces the collector credentials. A credential set
// without a token is ignored so a bad reload cannot disable reporting.
func (p *Poller) SetCredentials(c Credentials) {
	if c.Token == "" || c.Target == "" {
		p.log.Warn("Ignoring credentials update without target or token")
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.creds = c
}

// Credentials returns the current collector credentials.
func (p *Poller) Credentials() Credentials {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.creds
}

// LastReported returns the state most recently accepted for reporting.
func (p *Poller) LastReported() activity.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Run ticks until ctx is cancelled. It refuses to start without
// credentials. On return the in-flight report has been cancelled and waited
// for.
func (p *Poller) Run(ctx context.Context) error {
	creds := p.Credentials()
	if creds.Token == "" {
		return errors.MissingCredentials("token")
	}
	if creds.Target == "" {
		return errors.MissingCredentials("target")
	}
	if p.interval <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "poll interval must be positive")
	}

	p.log.WithFields(logrus.Fields{
		"interval": p.interval,
		"target":   creds.Target,
	}).Info("Poller started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.scope.Cancel()
			p.wg.Wait()
			p.log.Info("Poller stopped")
			return nil
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs one pass of the pipeline. Capture, change detection and the
// ignore check run inline; an accepted state is committed as last reported
// before its report starts in the background.
func (p *Poller) Tick(ctx context.Context) Outcome {
	cur, err := activity.Capture(ctx, p.editor)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNoActiveDocument) || ctx.Err() != nil {
			p.log.Debug("No active document, skipping tick")
		} else {
			p.log.WithError(err).Warn("Failed to capture editor state")
		}
		p.emit(Event{Outcome: Skipped, Err: err})
		return Skipped
	}

	if !activity.Changed(p.LastReported(), cur) {
		p.emit(Event{Outcome: Unchanged, State: cur})
		return Unchanged
	}

	if p.ignore.IsIgnored(ctx, cur.FileName) {
		p.log.WithField("file", cur.FileName).Debug("File is ignored, not reporting")
		p.emit(Event{Outcome: Ignored, State: cur})
		return Ignored
	}

	runCtx, release := p.scope.Start(ctx)

	p.mu.Lock()
	p.last = cur
	creds := p.creds
	p.mu.Unlock()

	p.emit(Event{Outcome: Reporting, State: cur})

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer release()
		p.report(runCtx, cur, creds)
	}()
	return Reporting
}

func (p *Poller) report(ctx context.Context, state activity.State, creds Credentials) {
	repo, _ := p.resolver.Resolve(ctx, state.Workspace, state.FileName)
	if ctx.Err() != nil {
		return
	}

	err := p.dispatcher.Dispatch(ctx, creds.Target, creds.Token, state, repo)
	if err != nil {
		if stderrors.Is(err, context.Canceled) {
			return
		}
		p.log.WithError(err).WithField("file", state.FileName).Warn("Failed to send report")
		p.emit(Event{Outcome: Failed, State: state, Repository: repo, Err: err})
		return
	}

	p.log.WithFields(logrus.Fields{
		"file":       state.FileName,
		"repository": repo,
	}).Debug("Report sent")
	p.emit(Event{Outcome: Sent, State: state, Repository: repo})
}

// Wait blocks until background reports have finished.
func (p *Poller) Wait() {
	p.wg.Wait()
}
