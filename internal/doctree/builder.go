// Package doctree aggregates per-file briefs into a documentation tree and
// renders it as Markdown, JSON or YAML.
package doctree

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/mvp-joe/doctree/internal/brief"
	"github.com/mvp-joe/doctree/internal/discovery"
	"github.com/mvp-joe/doctree/internal/git"
	"golang.org/x/sync/errgroup"
)

// Source extracts the brief of a single file.
// Implemented by *brief.Extractor and the caching wrapper in internal/cache.
type Source interface {
	Extract(path string, searchDepth int) (brief.Brief, error)
}

// Options configures a Builder.
type Options struct {
	RootDir          string
	SearchDepth      int
	Workers          int
	Include          []string
	Ignore           []string
	RespectGitignore bool
}

// Builder discovers files under a root and assembles their briefs into a Tree.
type Builder struct {
	opts      Options
	discovery *discovery.FileDiscovery
	source    Source
	git       git.Operations
	progress  ProgressReporter
	logger    *slog.Logger

	progressMu sync.Mutex
}

// NewBuilder creates a Builder. A nil source uses a default brief.Extractor;
// a nil progress reporter or logger disables that output.
func NewBuilder(opts Options, source Source, progress ProgressReporter, logger *slog.Logger) (*Builder, error) {
	if opts.RootDir == "" {
		opts.RootDir = "."
	}
	if opts.SearchDepth < 1 {
		opts.SearchDepth = brief.DefaultSearchDepth
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if source == nil {
		source = brief.New(brief.WithLogger(logger))
	}
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}

	fd, err := discovery.New(opts.RootDir, opts.Include, opts.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to create file discovery: %w", err)
	}
	opts.RootDir = fd.RootDir()

	return &Builder{
		opts:      opts,
		discovery: fd,
		source:    source,
		git:       git.Default(),
		progress:  progress,
		logger:    logger,
	}, nil
}

// RootDir returns the absolute root directory.
func (b *Builder) RootDir() string {
	return b.opts.RootDir
}

// SearchDepth returns the number of leading lines scanned per file.
func (b *Builder) SearchDepth() int {
	return b.opts.SearchDepth
}

// Discovery exposes the file matcher, e.g. for filtering watch events.
func (b *Builder) Discovery() *discovery.FileDiscovery {
	return b.discovery
}

// Discover lists candidate files, dropping git-ignored ones when configured.
func (b *Builder) Discover() ([]string, error) {
	files, err := b.discovery.Discover()
	if err != nil {
		return nil, err
	}

	if b.opts.RespectGitignore {
		before := len(files)
		files, err = discovery.FilterIgnored(b.git, b.opts.RootDir, files)
		if err != nil {
			return nil, err
		}
		if dropped := before - len(files); dropped > 0 {
			b.logger.Debug("skipped git-ignored files", "count", dropped)
		}
	}

	return files, nil
}

// Build discovers files and assembles the tree. Per-file failures end up in
// Tree.Errors; only discovery problems and cancellation fail the build.
func (b *Builder) Build(ctx context.Context) (*Tree, error) {
	b.progress.OnDiscoveryStart()

	files, err := b.Discover()
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}

	b.progress.OnDiscoveryComplete(len(files))
	b.logger.Debug("discovered files", "root", b.opts.RootDir, "count", len(files))

	return b.BuildFiles(ctx, files)
}

// BuildFiles assembles the tree from an explicit file list.
func (b *Builder) BuildFiles(ctx context.Context, files []string) (*Tree, error) {
	startTime := time.Now()
	b.progress.OnExtractionStart(len(files))

	results := make([]result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			relPath := b.relPath(path)
			br, err := b.source.Extract(path, b.opts.SearchDepth)
			if err != nil {
				b.logger.Debug("no brief", "path", relPath, "error", err)
			}
			results[i] = result{relPath: relPath, brief: br, err: err}

			b.progressMu.Lock()
			b.progress.OnFileProcessed(relPath)
			b.progressMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	tree := assemble(filepath.Base(b.opts.RootDir), results)
	tree.Stats.ProcessingTimeSeconds = time.Since(startTime).Seconds()

	b.progress.OnComplete(&tree.Stats)
	return tree, nil
}

func (b *Builder) relPath(path string) string {
	rel, err := filepath.Rel(b.opts.RootDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
