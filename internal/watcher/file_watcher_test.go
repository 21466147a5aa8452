package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher fails for a missing root
// - Single file change fires callback after debounce
// - Rapid changes to several files are batched into one callback
// - Pause accumulates, Resume fires immediately
// - Files rejected by match are ignored
// - Directories rejected by skipDir are not watched
// - Directories created after Start are watched
// - Stop is idempotent and works without Start
// - Context cancellation stops the watcher

const testDebounce = 100 * time.Millisecond

type recorder struct {
	mu      sync.Mutex
	batches [][]string
	called  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{called: make(chan struct{}, 16)}
}

func (r *recorder) callback(files []string) {
	r.mu.Lock()
	r.batches = append(r.batches, files)
	r.mu.Unlock()
	r.called <- struct{}{}
}

func (r *recorder) wait(t *testing.T, timeout time.Duration) {
	t.Helper()
	select {
	case <-r.called:
	case <-time.After(timeout):
		t.Fatal("callback not called before timeout")
	}
}

func (r *recorder) files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []string
	for _, b := range r.batches {
		all = append(all, b...)
	}
	return all
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func startWatcher(t *testing.T, root string, match func(string) bool, skipDir func(string) bool) (FileWatcher, *recorder) {
	t.Helper()
	w, err := NewFileWatcher(root, match, skipDir, WithDebounce(testDebounce))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	rec := newRecorder()
	require.NoError(t, w.Start(context.Background(), rec.callback))
	time.Sleep(50 * time.Millisecond)
	return w, rec
}

func TestNewFileWatcher_MissingRoot(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher(filepath.Join(t.TempDir(), "nope"), nil, nil)
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestFileWatcher_SingleFileChange(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, rec := startWatcher(t, root, nil, nil)

	file := filepath.Join(root, "a.go")
	require.NoError(t, os.WriteFile(file, []byte("// @brief A\n"), 0644))

	rec.wait(t, 2*time.Second)
	assert.Equal(t, []string{file}, rec.files())
}

func TestFileWatcher_Batching(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, rec := startWatcher(t, root, nil, nil)

	var want []string
	for _, name := range []string{"a.go", "b.py", "c.md"} {
		path := filepath.Join(root, name)
		want = append(want, path)
		require.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	rec.wait(t, 2*time.Second)
	time.Sleep(3 * testDebounce)

	assert.Equal(t, 1, rec.count(), "changes within the debounce window should coalesce")
	assert.ElementsMatch(t, want, rec.files())
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w, rec := startWatcher(t, root, nil, nil)

	w.Pause()
	file := filepath.Join(root, "paused.go")
	require.NoError(t, os.WriteFile(file, []byte("x\n"), 0644))

	time.Sleep(4 * testDebounce)
	assert.Zero(t, rec.count(), "no callbacks while paused")

	w.Resume()
	rec.wait(t, 500*time.Millisecond)
	assert.Contains(t, rec.files(), file)
}

func TestFileWatcher_MatchFilter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	match := func(path string) bool { return strings.HasSuffix(path, ".go") }
	_, rec := startWatcher(t, root, match, nil)

	require.NoError(t, os.WriteFile(filepath.Join(root, "skip.txt"), []byte("x\n"), 0644))
	keep := filepath.Join(root, "keep.go")
	require.NoError(t, os.WriteFile(keep, []byte("x\n"), 0644))

	rec.wait(t, 2*time.Second)
	assert.Equal(t, []string{keep}, rec.files())
}

func TestFileWatcher_SkipDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "dep"), 0755))
	skipDir := func(rel string) bool { return strings.HasPrefix(rel, "node_modules") }
	_, rec := startWatcher(t, root, nil, skipDir)

	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "dep", "x.js"), []byte("x\n"), 0644))
	time.Sleep(4 * testDebounce)
	assert.Zero(t, rec.count())

	file := filepath.Join(root, "a.js")
	require.NoError(t, os.WriteFile(file, []byte("x\n"), 0644))
	rec.wait(t, 2*time.Second)
	assert.Equal(t, []string{file}, rec.files())
}

func TestFileWatcher_NewDirectoryWatched(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, rec := startWatcher(t, root, nil, nil)

	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(50 * time.Millisecond)

	file := filepath.Join(sub, "x.go")
	require.NoError(t, os.WriteFile(file, []byte("x\n"), 0644))

	rec.wait(t, 2*time.Second)
	assert.Contains(t, rec.files(), file)
	assert.NotContains(t, rec.files(), sub)
}

func TestFileWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher(t.TempDir(), nil, nil)
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestFileWatcher_ContextCancel(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w, err := NewFileWatcher(root, nil, nil, WithDebounce(testDebounce))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	rec := newRecorder()
	require.NoError(t, w.Start(ctx, rec.callback))

	cancel()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "late.go"), []byte("x\n"), 0644))
	time.Sleep(4 * testDebounce)
	assert.Zero(t, rec.count())

	assert.NoError(t, w.Stop())
}
