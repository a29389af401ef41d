package daemon

import (
	"context"
	"sync"

	"github.com/grovetools/casemgmt/config"
	storeerrors "github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/internal/daemon/collector"
	"github.com/grovetools/casemgmt/internal/daemon/engine"
	"github.com/grovetools/casemgmt/internal/daemon/store"
	"github.com/grovetools/casemgmt/logging"
	"github.com/grovetools/casemgmt/pkg/api"
	"github.com/grovetools/casemgmt/pkg/models"
	"github.com/grovetools/casemgmt/pkg/profiling"
	"github.com/sirupsen/logrus"
)

// LocalClient implements Client with an in-process store. It is used when
// the daemon is not running: the reference lists are loaded once, on first
// use, and changes only live as long as the client.
type LocalClient struct {
	store  *store.Store
	engine *engine.Engine
	logger *logrus.Entry

	loadOnce sync.Once
	loadErr  error
}

// NewLocalClient creates a LocalClient for cfg.
func NewLocalClient(cfg *config.Config, opts ...api.Option) *LocalClient {
	logger := logging.NewLogger("local-client")
	st := store.New(cfg.API.Environment())

	opts = append([]api.Option{api.WithLogger(logger)}, opts...)
	getter := api.NewClient(cfg.API, st.Environment, opts...)

	eng := engine.New(st, getter, logger)
	for _, c := range collector.BaseCollectors(getter) {
		eng.Register(c)
	}

	return &LocalClient{
		store:  st,
		engine: eng,
		logger: logger,
	}
}

// load installs the refresh rules and fetches the reference lists once.
func (c *LocalClient) load(ctx context.Context) error {
	c.loadOnce.Do(func() {
		defer profiling.Start("load reference lists").Stop()
		c.engine.Install(context.Background())
		c.loadErr = c.engine.Load(ctx)
		if c.loadErr != nil {
			c.logger.WithError(c.loadErr).Warn("Reference lists loaded with errors")
		}
	})
	return c.loadErr
}

// GetState loads the reference lists and returns the snapshot.
// A failed list is reported after the lists that did load are applied.
func (c *LocalClient) GetState(ctx context.Context) (*State, error) {
	err := c.load(ctx)
	st := c.store.Get()
	return &st, err
}

// SetSelection sets the selection and waits for any dependent fetch.
func (c *LocalClient) SetSelection(ctx context.Context, field Field, id *int64) (*SelectionResponse, error) {
	if _, err := store.ParseField(string(field)); err != nil {
		return nil, storeerrors.InvalidInput(err.Error())
	}
	if err := c.load(ctx); err != nil && !storeerrors.IsFetchError(err) {
		return nil, err
	}
	changed := c.store.SetSelection(field, id)
	c.engine.Wait()
	return &SelectionResponse{Changed: changed, Field: field, ID: c.store.Selection(field)}, nil
}

// GetEnvironment returns the active environment.
func (c *LocalClient) GetEnvironment(ctx context.Context) (*EnvironmentResponse, error) {
	env := c.store.Environment()
	return &EnvironmentResponse{Environment: env, IsLiveAPI: env.IsLive()}, nil
}

// SetEnvironment switches environments and waits for the reload.
func (c *LocalClient) SetEnvironment(ctx context.Context, env models.Environment) (*EnvironmentResponse, error) {
	if err := c.load(ctx); err != nil && !storeerrors.IsFetchError(err) {
		return nil, err
	}
	changed := c.store.SetLiveAPI(env.IsLive())
	c.engine.Wait()
	current := c.store.Environment()
	return &EnvironmentResponse{Changed: changed, Environment: current, IsLiveAPI: current.IsLive()}, nil
}

// GetActionModal returns the action modal.
func (c *LocalClient) GetActionModal(ctx context.Context) (*models.ActionModal, error) {
	m := c.store.ActionModal()
	return &m, nil
}

// SetActionModal replaces the action modal. The reload counter is kept.
func (c *LocalClient) SetActionModal(ctx context.Context, m models.ActionModal) (*models.ActionModal, error) {
	if err := m.Validate(); err != nil {
		return nil, storeerrors.InvalidInput(err.Error())
	}
	out, err := c.store.EditActionModal(func(cur *models.ActionModal) error {
		*cur = m.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetActionModal restores the default action modal.
func (c *LocalClient) ResetActionModal(ctx context.Context) (*models.ActionModal, error) {
	m := c.store.ResetActionModal()
	return &m, nil
}

// BumpReload increments the reload counter.
func (c *LocalClient) BumpReload(ctx context.Context) (int, error) {
	return c.store.BumpReload(), nil
}

// SetFlags updates the flags set in req.
func (c *LocalClient) SetFlags(ctx context.Context, req FlagsRequest) (*Flags, error) {
	applyFlags(c.store, req)
	st := c.store.Get()
	return &Flags{HasNewDataCommand: st.HasNewDataCommand, HasDraggedPayload: st.HasDraggedPayload}, nil
}

// Refresh re-fetches the lists and waits for them.
func (c *LocalClient) Refresh(ctx context.Context) error {
	c.engine.Install(context.Background())
	err := c.engine.Load(ctx)
	c.engine.RefreshCommands()
	c.engine.Wait()
	return err
}

// StreamState streams the in-process store. The first message carries the
// loaded state.
func (c *LocalClient) StreamState(ctx context.Context) (<-chan StateUpdate, error) {
	if err := c.load(ctx); err != nil && !storeerrors.IsFetchError(err) {
		return nil, err
	}
	sub := c.store.Subscribe()

	ch := make(chan StateUpdate, 10)
	go func() {
		defer close(ch)
		defer c.store.Unsubscribe(sub)

		select {
		case ch <- InitialUpdate(c.store.Get()):
		case <-ctx.Done():
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-sub:
				if !ok {
					return
				}
				select {
				case ch <- NewStateUpdate(u, c.store.Get()):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

// IsRunning always returns false: there is no daemon behind a LocalClient.
func (c *LocalClient) IsRunning() bool {
	return false
}

// Close waits for outstanding fetches.
func (c *LocalClient) Close() error {
	c.engine.Wait()
	return nil
}

// applyFlags sets the flags present in req.
func applyFlags(st *store.Store, req FlagsRequest) {
	if req.HasNewDataCommand != nil {
		st.SetHasNewDataCommand(*req.HasNewDataCommand)
	}
	if req.HasDraggedPayload != nil {
		st.SetHasDraggedPayload(*req.HasDraggedPayload)
	}
}

// Ensure LocalClient implements Client interface.
var _ Client = (*LocalClient)(nil)
