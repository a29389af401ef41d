// Package engine wires the collectors to the store and applies the refresh
// rules.
package engine

import (
	"context"
	"sync"

	"github.com/grovetools/casemgmt/internal/daemon/collector"
	"github.com/grovetools/casemgmt/internal/daemon/store"
	"github.com/grovetools/casemgmt/pkg/api"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Engine manages and runs all collectors.
type Engine struct {
	store      *store.Store
	getter     api.Getter
	collectors []collector.Collector
	logger     *logrus.Entry

	mu       sync.Mutex
	ctx      context.Context
	attached bool
	inflight sync.WaitGroup
}

// New creates a new Engine instance. Collectors registered with Register are
// the base lists fetched on attach and after every environment change.
func New(st *store.Store, getter api.Getter, logger *logrus.Entry) *Engine {
	return &Engine{
		store:  st,
		getter: getter,
		logger: logger,
		ctx:    context.Background(),
	}
}

// Register adds a base collector to the engine.
func (e *Engine) Register(c collector.Collector) {
	e.collectors = append(e.collectors, c)
}

// Install registers the refresh rules on the store without fetching
// anything. Dependent fetches run until they complete or ctx is canceled.
// It reports false when the rules were already installed.
func (e *Engine) Install(ctx context.Context) bool {
	e.mu.Lock()
	if e.attached {
		e.mu.Unlock()
		return false
	}
	e.attached = true
	e.ctx = ctx
	e.mu.Unlock()

	e.store.Watch(store.UpdateSelection, e.onSelection)
	e.store.Watch(store.UpdateEnvironment, e.onEnvironment)
	return true
}

// Attach installs the refresh rules and issues the base fetches.
// Calling Attach twice is a no-op.
func (e *Engine) Attach(ctx context.Context) {
	if e.Install(ctx) {
		e.Refresh()
	}
}

// Load runs the base collectors and waits for all of them. Lists that
// fetch successfully are applied; the first error is returned.
func (e *Engine) Load(ctx context.Context) error {
	var g errgroup.Group
	for _, c := range e.collectors {
		col := c
		g.Go(func() error {
			updates := make(chan store.Update, 8)
			err := col.Run(ctx, e.store, updates)
			close(updates)
			for u := range updates {
				e.store.ApplyUpdate(u)
			}
			return err
		})
	}
	return g.Wait()
}

// Start attaches and blocks until ctx is canceled and in-flight fetches
// have returned.
func (e *Engine) Start(ctx context.Context) {
	e.Attach(ctx)
	<-ctx.Done()
	e.Wait()
}

// Refresh re-issues the base fetches.
func (e *Engine) Refresh() {
	e.dispatch(e.collectors...)
}

// RefreshCommands re-issues the command fetches for the selected sheet type.
// It does nothing when no sheet type is selected.
func (e *Engine) RefreshCommands() {
	if id := e.store.Selection(store.FieldSheetType); id != nil {
		e.dispatch(collector.CommandCollectors(e.getter, *id)...)
	}
}

// Wait blocks until every fetch issued so far has been applied or failed.
func (e *Engine) Wait() {
	e.inflight.Wait()
}

// Store returns the engine's state store.
func (e *Engine) Store() *store.Store {
	return e.store
}

// onSelection re-fetches the commands when the sheet type changes to a value.
func (e *Engine) onSelection(u store.Update) {
	change, ok := u.Payload.(store.SelectionChange)
	if !ok || change.Field != store.FieldSheetType || change.Current == nil {
		return
	}
	e.logger.WithField("sheet_type", *change.Current).Debug("Sheet type changed, fetching commands")
	e.dispatch(collector.CommandCollectors(e.getter, *change.Current)...)
}

// onEnvironment re-fetches the base lists. The store has already emptied
// them. Responses still in flight from the previous environment are not
// canceled.
func (e *Engine) onEnvironment(u store.Update) {
	if change, ok := u.Payload.(store.EnvironmentChange); ok {
		e.logger.WithField("environment", change.Current.String()).Info("Environment changed, reloading")
	}
	e.Refresh()
}

// dispatch runs each collector on its own goroutine. Updates are applied as
// each fetch completes, so the last response to arrive wins.
func (e *Engine) dispatch(cols ...collector.Collector) {
	e.mu.Lock()
	ctx := e.ctx
	e.mu.Unlock()

	for _, c := range cols {
		e.inflight.Add(1)
		go func(col collector.Collector) {
			defer e.inflight.Done()

			updates := make(chan store.Update, 8)
			err := col.Run(ctx, e.store, updates)
			close(updates)

			if err != nil {
				e.logger.WithField("collector", col.Name()).WithError(err).Error("Collector failed")
				return
			}
			for u := range updates {
				e.store.ApplyUpdate(u)
			}
		}(c)
	}
}
