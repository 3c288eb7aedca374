package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rudiwatch/internal/adapters/filesystem"
	"rudiwatch/internal/ports"
)

const waitFor = 5 * time.Second

func startWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w := New(filesystem.NewRepository(root, ".rudi"), WithRestartDelay(20*time.Millisecond))
	require.NoError(t, w.Start())
	t.Cleanup(w.Stop)
	return w
}

func next(t *testing.T, w *Watcher) ports.FileEvent {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		require.True(t, ok, "event stream closed")
		return ev
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for an event")
		return ports.FileEvent{}
	}
}

func assertQuiet(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event %s %s", ev.Kind, ev.Path)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_AddedThenRemoved(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)
	assert.Equal(t, Running, w.State())

	foo := filepath.Join(root, "foo.rudi")
	require.NoError(t, os.WriteFile(foo, []byte("rule: if (true) {}\n"), 0644))

	ev := next(t, w)
	assert.Equal(t, ports.FileAdded, ev.Kind)
	assert.Equal(t, foo, ev.Path)
	assert.False(t, ev.IsDir)
	assertQuiet(t, w)

	require.NoError(t, os.Remove(foo))

	ev = next(t, w)
	assert.Equal(t, ports.FileRemoved, ev.Kind)
	assert.Equal(t, foo, ev.Path)
	assertQuiet(t, w)
}

func TestWatcher_IgnoresOtherFilesAndWrites(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "old.rudi")
	require.NoError(t, os.WriteFile(existing, nil, 0644))
	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(existing, []byte("changed"), 0644))

	assertQuiet(t, w)
}

func TestWatcher_RegistersNewFolders(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	sub := filepath.Join(root, "dialogue")
	require.NoError(t, os.Mkdir(sub, 0755))

	ev := next(t, w)
	assert.Equal(t, ports.FileAdded, ev.Kind)
	assert.Equal(t, sub, ev.Path)
	assert.True(t, ev.IsDir)

	bar := filepath.Join(sub, "bar.rudi")
	require.NoError(t, os.WriteFile(bar, nil, 0644))

	ev = next(t, w)
	assert.Equal(t, ports.FileAdded, ev.Kind)
	assert.Equal(t, bar, ev.Path)
}

// untilRestarted drains events up to and including the next WatchRestarted
func untilRestarted(t *testing.T, w *Watcher) ports.FileEvent {
	t.Helper()
	for {
		if ev := next(t, w); ev.Kind == ports.WatchRestarted {
			return ev
		}
	}
}

func TestWatcher_WatchesHiddenAndBuildFolders(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"build", ".cache", "gone"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, dir), 0755))
	}
	w := startWatcher(t, root)

	built := filepath.Join(root, "build", "a.rudi")
	require.NoError(t, os.WriteFile(built, nil, 0644))
	ev := next(t, w)
	assert.Equal(t, ports.FileAdded, ev.Kind)
	assert.Equal(t, built, ev.Path)

	cached := filepath.Join(root, ".cache", "b.rudi")
	require.NoError(t, os.WriteFile(cached, nil, 0644))
	ev = next(t, w)
	assert.Equal(t, ports.FileAdded, ev.Kind)
	assert.Equal(t, cached, ev.Path)

	// created while running, then kept across a restart
	target := filepath.Join(root, "target")
	require.NoError(t, os.Mkdir(target, 0755))
	ev = next(t, w)
	assert.Equal(t, target, ev.Path)
	assert.True(t, ev.IsDir)

	require.NoError(t, os.Remove(filepath.Join(root, "gone")))
	untilRestarted(t, w)

	generated := filepath.Join(target, "c.rudi")
	require.NoError(t, os.WriteFile(generated, nil, 0644))
	ev = next(t, w)
	assert.Equal(t, ports.FileAdded, ev.Kind)
	assert.Equal(t, generated, ev.Path)
}

func TestWatcher_RestartRenewsWatchID(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "gone"), 0755))
	w := startWatcher(t, root)

	before := filepath.Join(root, "before.rudi")
	require.NoError(t, os.WriteFile(before, nil, 0644))
	first := next(t, w)
	assert.Equal(t, before, first.Path)
	require.NotEmpty(t, first.Watch)

	require.NoError(t, os.Remove(filepath.Join(root, "gone")))
	restarted := untilRestarted(t, w)
	assert.NotEmpty(t, restarted.Watch)
	assert.NotEqual(t, first.Watch, restarted.Watch)

	after := filepath.Join(root, "after.rudi")
	require.NoError(t, os.WriteFile(after, nil, 0644))
	ev := next(t, w)
	assert.Equal(t, after, ev.Path)
	assert.Equal(t, restarted.Watch, ev.Watch)
}

func TestWatcher_RestartsWhenRootComesBack(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "rudi")
	require.NoError(t, os.Mkdir(root, 0755))
	w := startWatcher(t, root)

	require.NoError(t, os.Remove(root))

	var failed bool
	for !failed {
		ev := next(t, w)
		if ev.Kind == ports.WatchFailed {
			failed = true
			assert.Error(t, ev.Err)
		}
	}

	require.NoError(t, os.Mkdir(root, 0755))
	assert.Equal(t, root, untilRestarted(t, w).Path)
	assert.Equal(t, Running, w.State())

	foo := filepath.Join(root, "foo.rudi")
	require.NoError(t, os.WriteFile(foo, nil, 0644))
	ev := next(t, w)
	assert.Equal(t, ports.FileAdded, ev.Kind)
	assert.Equal(t, foo, ev.Path)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := startWatcher(t, t.TempDir())

	w.Stop()
	w.Stop()

	select {
	case <-w.Done():
	case <-time.After(waitFor):
		t.Fatal("loop did not exit")
	}
	_, ok := <-w.Events()
	assert.False(t, ok)
	assert.Equal(t, Stopped, w.State())
	assert.Error(t, w.Start())
}

func TestWatcher_StartFailsWithoutRoot(t *testing.T) {
	w := New(filesystem.NewRepository(filepath.Join(t.TempDir(), "missing"), ".rudi"))

	err := w.Start()
	var regErr *RegistrationError
	assert.ErrorAs(t, err, &regErr)
	assert.Equal(t, Stopped, w.State())
	w.Stop()
}
