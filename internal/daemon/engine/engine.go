// Package engine runs the reporter's long-lived components side by side.
package engine

import (
	"context"
	"sync"

	"github.com/grovetools/pulse/internal/daemon/store"
	"github.com/sirupsen/logrus"
)

// Component is a long-running part of the reporter.
type Component interface {
	Name() string
	Run(ctx context.Context) error
}

type funcComponent struct {
	name string
	run  func(ctx context.Context) error
}

func (f funcComponent) Name() string                  { return f.name }
func (f funcComponent) Run(ctx context.Context) error { return f.run(ctx) }

// Func adapts a function to a Component.
func Func(name string, run func(ctx context.Context) error) Component {
	return funcComponent{name: name, run: run}
}

// Engine manages and runs all components.
type Engine struct {
	store      *store.Store
	components []Component
	logger     *logrus.Entry
}

// New creates a new Engine instance.
func New(st *store.Store, logger *logrus.Entry) *Engine {
	return &Engine{
		store:  st,
		logger: logger,
	}
}

// Register adds a component to the engine.
func (e *Engine) Register(c Component) {
	e.components = append(e.components, c)
}

// Start runs all components and blocks until they return. The first
// component error cancels the rest and is returned.
func (e *Engine) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

	for _, c := range e.components {
		wg.Add(1)
		go func(comp Component) {
			defer wg.Done()
			e.logger.WithField("component", comp.Name()).Debug("Starting component")
			if err := comp.Run(ctx); err != nil {
				e.logger.WithField("component", comp.Name()).WithError(err).Error("Component failed")
				once.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}(c)
	}

	wg.Wait()
	return firstErr
}

// Store returns the engine's status store.
func (e *Engine) Store() *store.Store {
	return e.store
}
