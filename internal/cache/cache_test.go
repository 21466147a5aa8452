package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mvp-joe/doctree/internal/brief"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Extractor:
// - Unchanged file is served from cache
// - Modified content (size or mtime) forces re-extraction
// - Different search depth forces re-extraction
// - Failures are cached like successes
// - Missing files bypass the cache
// - Invalidate drops single entries or everything
// - Non-positive capacity is rejected

type countingSource struct {
	mu    sync.Mutex
	calls map[string]int
	inner *brief.Extractor
}

func newCountingSource() *countingSource {
	return &countingSource{calls: make(map[string]int), inner: brief.New()}
}

func (s *countingSource) Extract(path string, searchDepth int) (brief.Brief, error) {
	s.mu.Lock()
	s.calls[path]++
	s.mu.Unlock()
	return s.inner.Extract(path, searchDepth)
}

func (s *countingSource) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func newTestExtractor(t *testing.T, src Source) *Extractor {
	t.Helper()
	e, err := New(src, 100)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestExtract_CachesUnchangedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.go")
	writeFile(t, path, "// @brief Cached\n")

	src := newCountingSource()
	e := newTestExtractor(t, src)

	for range 3 {
		b, err := e.Extract(path, 20)
		require.NoError(t, err)
		assert.Equal(t, "Cached", b.Text)
	}

	assert.Equal(t, 1, src.count(path))
	hits, misses := e.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestExtract_ModifiedFileReextracted(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.go")
	writeFile(t, path, "// @brief Old\n")

	src := newCountingSource()
	e := newTestExtractor(t, src)

	b, err := e.Extract(path, 20)
	require.NoError(t, err)
	assert.Equal(t, "Old", b.Text)

	writeFile(t, path, "// @brief Newer text\n")
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	b, err = e.Extract(path, 20)
	require.NoError(t, err)
	assert.Equal(t, "Newer text", b.Text)
	assert.Equal(t, 2, src.count(path))
}

func TestExtract_DepthIsPartOfValidity(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.go")
	writeFile(t, path, "\n\n// @brief Third line\n")

	src := newCountingSource()
	e := newTestExtractor(t, src)

	_, err := e.Extract(path, 2)
	assert.ErrorIs(t, err, brief.ErrNoBriefFound)

	b, err := e.Extract(path, 3)
	require.NoError(t, err)
	assert.Equal(t, "Third line", b.Text)
	assert.Equal(t, 2, src.count(path))
}

func TestExtract_CachesFailures(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plain.txt")
	writeFile(t, path, "nothing here\n")

	src := newCountingSource()
	e := newTestExtractor(t, src)

	for range 2 {
		_, err := e.Extract(path, 20)
		assert.ErrorIs(t, err, brief.ErrNoBriefFound)
	}
	assert.Equal(t, 1, src.count(path))
}

func TestExtract_MissingFileBypassesCache(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.go")
	src := newCountingSource()
	e := newTestExtractor(t, src)

	for range 2 {
		_, err := e.Extract(path, 20)
		assert.ErrorIs(t, err, brief.ErrUnreadableFile)
	}
	assert.Equal(t, 2, src.count(path))
}

func TestInvalidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.go")
	b := filepath.Join(dir, "b.go")
	writeFile(t, a, "// @brief A\n")
	writeFile(t, b, "// @brief B\n")

	src := newCountingSource()
	e := newTestExtractor(t, src)

	_, _ = e.Extract(a, 20)
	_, _ = e.Extract(b, 20)

	e.Invalidate(a)
	_, _ = e.Extract(a, 20)
	_, _ = e.Extract(b, 20)
	assert.Equal(t, 2, src.count(a))
	assert.Equal(t, 1, src.count(b))

	e.Invalidate()
	_, _ = e.Extract(b, 20)
	assert.Equal(t, 2, src.count(b))
}

func TestNew_InvalidCapacity(t *testing.T) {
	t.Parallel()

	_, err := New(brief.New(), 0)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestExtract_Concurrent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.go")
	writeFile(t, path, "// @brief Shared\n")
	e := newTestExtractor(t, brief.New())

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := e.Extract(path, 20)
			assert.NoError(t, err)
			assert.Equal(t, "Shared", b.Text)
		}()
	}
	wg.Wait()
}
