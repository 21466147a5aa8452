// Package cache memoizes brief extraction for long-running modes (watch and
// MCP). Entries are keyed by path and validated against the file's size,
// modification time and the requested search depth, so a changed file is
// always re-read.
package cache

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/maypok86/otter"
	"github.com/mvp-joe/doctree/internal/brief"
)

// ErrInvalidCapacity is returned by New for a non-positive capacity.
var ErrInvalidCapacity = errors.New("cache capacity must be positive")

// Source is the extractor being wrapped.
type Source interface {
	Extract(path string, searchDepth int) (brief.Brief, error)
}

type entry struct {
	size    int64
	modTime time.Time
	depth   int
	brief   brief.Brief
	err     error
}

func (e entry) valid(info os.FileInfo, depth int) bool {
	return e.depth == depth && e.size == info.Size() && e.modTime.Equal(info.ModTime())
}

// Extractor wraps a Source with an in-memory cache.
// Safe for concurrent use.
type Extractor struct {
	inner Source
	cache otter.Cache[string, entry]

	hits   atomic.Int64
	misses atomic.Int64
}

// New wraps inner with a cache holding up to capacity entries.
func New(inner Source, capacity int) (*Extractor, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	c, err := otter.MustBuilder[string, entry](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build cache: %w", err)
	}

	return &Extractor{inner: inner, cache: c}, nil
}

// Extract returns the cached result for path when the file is unchanged,
// otherwise delegates to the wrapped Source and stores the outcome.
// Files that cannot be stat'ed are never cached.
func (e *Extractor) Extract(path string, searchDepth int) (brief.Brief, error) {
	if searchDepth < 1 {
		searchDepth = brief.DefaultSearchDepth
	}

	info, statErr := os.Stat(path)
	if statErr != nil {
		e.cache.Delete(path)
		return e.inner.Extract(path, searchDepth)
	}

	if cached, ok := e.cache.Get(path); ok && cached.valid(info, searchDepth) {
		e.hits.Add(1)
		return cached.brief, cached.err
	}
	e.misses.Add(1)

	b, err := e.inner.Extract(path, searchDepth)
	e.cache.Set(path, entry{
		size:    info.Size(),
		modTime: info.ModTime(),
		depth:   searchDepth,
		brief:   b,
		err:     err,
	})
	return b, err
}

// Invalidate drops the entries for paths. With no arguments the whole cache
// is cleared.
func (e *Extractor) Invalidate(paths ...string) {
	if len(paths) == 0 {
		e.cache.Clear()
		return
	}
	for _, p := range paths {
		e.cache.Delete(p)
	}
}

// Stats returns the hit and miss counts since creation.
func (e *Extractor) Stats() (hits, misses int64) {
	return e.hits.Load(), e.misses.Load()
}

// Close releases the cache.
func (e *Extractor) Close() {
	e.cache.Close()
}
