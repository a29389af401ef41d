package daemon_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/casemgmt/config"
	storeerrors "github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/internal/daemon/collector"
	"github.com/grovetools/casemgmt/internal/daemon/engine"
	"github.com/grovetools/casemgmt/internal/daemon/server"
	"github.com/grovetools/casemgmt/internal/daemon/store"
	"github.com/grovetools/casemgmt/pkg/api"
	"github.com/grovetools/casemgmt/pkg/daemon"
	"github.com/grovetools/casemgmt/pkg/models"
	"github.com/grovetools/casemgmt/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type daemonFixture struct {
	socket  string
	backend *testutil.Backend
	engine  *engine.Engine
	client  *daemon.RemoteClient
}

// shortSocket keeps the path under the unix socket length limit.
func shortSocket(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "cm")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "d.sock")
}

func startDaemon(t *testing.T) *daemonFixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	entry := logrus.NewEntry(logger)

	backend := testutil.NewBackend(t)
	backend.SetRawData(api.EndpointPaymentTypes, `[{"id": 1, "payment_name": "Cash"}]`)

	st := store.New(models.Stage)
	getter := api.NewClient(config.APIConfig{StageURL: backend.URL(), LiveURL: backend.URL()}, st.Environment, api.WithLogger(entry))
	eng := engine.New(st, getter, entry)
	for _, c := range collector.BaseCollectors(getter) {
		eng.Register(c)
	}
	eng.Attach(context.Background())
	eng.Wait()

	socket := shortSocket(t)
	srv := server.New(entry)
	srv.SetEngine(eng)
	srv.SetRunningConfig(&daemon.RunningConfig{Socket: socket, PID: os.Getpid(), StartedAt: time.Now()})
	go srv.ListenAndServe(socket)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	var client *daemon.RemoteClient
	require.Eventually(t, func() bool {
		c, err := daemon.Connect(socket)
		if err != nil {
			return false
		}
		client = c
		return true
	}, 5*time.Second, 10*time.Millisecond)
	t.Cleanup(func() { client.Close() })

	return &daemonFixture{socket: socket, backend: backend, engine: eng, client: client}
}

func TestConnectWithoutDaemon(t *testing.T) {
	_, err := daemon.Connect(shortSocket(t))
	assert.True(t, storeerrors.Is(err, storeerrors.ErrCodeDaemonUnavailable))
}

func TestNewFallsBackToLocal(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Socket: shortSocket(t)}}
	c := daemon.New(cfg)
	defer c.Close()
	_, ok := c.(*daemon.LocalClient)
	assert.True(t, ok)
}

func TestNewUsesRunningDaemon(t *testing.T) {
	f := startDaemon(t)
	c := daemon.New(&config.Config{Server: config.ServerConfig{Socket: f.socket}})
	defer c.Close()
	_, ok := c.(*daemon.RemoteClient)
	assert.True(t, ok)
	assert.True(t, c.IsRunning())
}

func TestRemoteClientRoundTrip(t *testing.T) {
	f := startDaemon(t)
	ctx := context.Background()

	st, err := f.client.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.LookupOption{{Label: "Cash", Value: 1}}, st.PaymentTypes)

	id := int64(1)
	sel, err := f.client.SetSelection(ctx, store.FieldPaymentType, &id)
	require.NoError(t, err)
	assert.True(t, sel.Changed)

	env, err := f.client.SetEnvironment(ctx, models.Live)
	require.NoError(t, err)
	assert.True(t, env.IsLiveAPI)
	f.engine.Wait()

	got, err := f.client.GetEnvironment(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Live, got.Environment)

	// The switch cleared the selection
	st, err = f.client.GetState(ctx)
	require.NoError(t, err)
	assert.Nil(t, st.Selections.PaymentType)

	rc, err := f.client.GetRunningConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.socket, rc.Socket)
}

func TestRemoteClientDecodesStoreErrors(t *testing.T) {
	f := startDaemon(t)
	_, err := f.client.SetSelection(context.Background(), daemon.Field("bogus"), nil)
	require.Error(t, err)
	assert.True(t, storeerrors.Is(err, storeerrors.ErrCodeInvalidInput))
}

func TestRemoteClientActionModal(t *testing.T) {
	f := startDaemon(t)
	ctx := context.Background()

	m := models.DefaultActionModal()
	m.Open(models.AddFlowCommand)
	out, err := f.client.SetActionModal(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, m, *out)

	n, err := f.client.BumpReload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	reset, err := f.client.ResetActionModal(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultActionModal(), *reset)
}

func TestRemoteClientStreams(t *testing.T) {
	f := startDaemon(t)

	for name, open := range map[string]func(context.Context) (<-chan daemon.StateUpdate, error){
		"sse":       f.client.StreamState,
		"websocket": f.client.StreamStateWS,
	} {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			ch, err := open(ctx)
			require.NoError(t, err)

			var first daemon.StateUpdate
			select {
			case first = <-ch:
			case <-time.After(5 * time.Second):
				t.Fatal("no initial update")
			}
			assert.Equal(t, daemon.UpdateTypeInitial, first.UpdateType)

			yes := true
			_, err = f.client.SetFlags(ctx, daemon.FlagsRequest{HasDraggedPayload: &yes})
			require.NoError(t, err)

			select {
			case u := <-ch:
				assert.Equal(t, string(store.UpdateFlags), u.UpdateType)
				require.NotNil(t, u.State)
				assert.True(t, u.State.HasDraggedPayload)
			case <-time.After(5 * time.Second):
				t.Fatal("no flags update")
			}

			_, err = f.client.SetFlags(ctx, daemon.FlagsRequest{HasDraggedPayload: new(bool)})
			require.NoError(t, err)
		})
	}
}
