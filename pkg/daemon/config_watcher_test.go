package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/grovetools/casemgmt/config"
	"github.com/grovetools/casemgmt/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reloads struct {
	mu      sync.Mutex
	files   []string
	changes [][2]*config.Config
}

func (r *reloads) onReload(file string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, file)
}

func (r *reloads) onChange(prev, next *config.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, [2]*config.Config{prev, next})
}

func (r *reloads) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files)
}

func startWatcher(t *testing.T, path string, debounceMs int) (*ConfigWatcher, *reloads) {
	t.Helper()
	initial, err := config.Load(path)
	require.NoError(t, err)

	r := &reloads{}
	w, err := NewConfigWatcher(path, initial, debounceMs, r.onReload, r.onChange)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w, r
}

func TestConfigWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "casemgmt.yml", "api:\n  use_live: false\n")

	w, r := startWatcher(t, path, 20)
	assert.False(t, w.Current().API.UseLive)

	require.NoError(t, os.WriteFile(path, []byte("api:\n  use_live: true\n"), 0644))

	require.Eventually(t, func() bool { return r.count() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, w.Current().API.UseLive)

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, []string{"casemgmt.yml"}, r.files)
	require.Len(t, r.changes, 1)
	assert.False(t, r.changes[0][0].API.UseLive)
	assert.True(t, r.changes[0][1].API.UseLive)
}

func TestConfigWatcherCollapsesBursts(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "casemgmt.yml", "version: \"1.0\"\n")

	w, r := startWatcher(t, path, 200)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("api:\n  token: burst\n"), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return r.count() >= 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, 1, r.count())
	assert.Equal(t, "burst", w.Current().API.Token)
}

func TestConfigWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "casemgmt.yml", "version: \"1.0\"\n")

	_, r := startWatcher(t, path, 20)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yml"), []byte("x: 1\n"), 0644))

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, r.count())
}

func TestConfigWatcherKeepsConfigOnInvalidChange(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "casemgmt.yml", "api:\n  timeout: 5s\n")

	w, r := startWatcher(t, path, 20)
	require.NoError(t, os.WriteFile(path, []byte("api:\n  timeout: soon\n"), 0644))

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, r.count())
	assert.Equal(t, "5s", w.Current().API.Timeout)
}

func TestConfigWatcherFollowsSymlink(t *testing.T) {
	real := t.TempDir()
	target := testutil.WriteFile(t, real, "shared.yml", "api:\n  use_live: false\n")
	linkDir := t.TempDir()
	link := filepath.Join(linkDir, "casemgmt.yml")
	require.NoError(t, os.Symlink(target, link))

	w, r := startWatcher(t, link, 20)
	require.NoError(t, os.WriteFile(target, []byte("api:\n  use_live: true\n"), 0644))

	require.Eventually(t, func() bool { return r.count() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, w.Current().API.UseLive)
}

func TestConfigWatcherReloadsOnOverride(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "casemgmt.yml", "api:\n  use_live: false\n")

	w, r := startWatcher(t, path, 20)
	testutil.WriteFile(t, dir, "casemgmt.override.yml", "api:\n  use_live: true\n")

	require.Eventually(t, func() bool { return r.count() >= 1 }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, w.Current().API.UseLive)
}
