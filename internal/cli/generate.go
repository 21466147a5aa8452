package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mvp-joe/doctree/internal/brief"
	"github.com/mvp-joe/doctree/internal/cache"
	"github.com/mvp-joe/doctree/internal/config"
	"github.com/mvp-joe/doctree/internal/doctree"
	"github.com/mvp-joe/doctree/internal/watcher"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrUnreadableFiles is returned by `generate --strict` when some files could
// not be read.
var ErrUnreadableFiles = errors.New("unreadable files")

// generateOptions holds the generate flags. Zero values defer to the config.
type generateOptions struct {
	format      string
	output      string
	depth       int
	workers     int
	noGitignore bool
	quiet       bool
	watch       bool
	strict      bool
}

var genOpts generateOptions

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [dir]",
	Short: "Render the documentation tree of a directory",
	Long: `Generate scans dir (default: current directory) and renders every file's
@brief summary as a tree.

Configuration is read from <dir>/.doctree/config.yml and DOCTREE_* environment
variables; flags override both.

Files without a brief are reported as warnings. Files that cannot be read as
text are reported as errors and, with --strict, fail the command.

Examples:
  # Markdown tree of the current directory
  doctree generate

  # JSON tree written to a file
  doctree generate ./src --format json --output tree.json

  # Regenerate on every change
  doctree generate --watch --output DOCTREE.md
`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	genOpts.registerFlags(generateCmd.Flags())
}

func (o *generateOptions) registerFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.format, "format", "f", "", "Output format: markdown, json or yaml (default from config)")
	fs.StringVarP(&o.output, "output", "o", "", "Write the tree to this file instead of stdout")
	fs.IntVarP(&o.depth, "depth", "d", 0, "Leading lines scanned per file (default from config)")
	fs.IntVar(&o.workers, "workers", 0, "Concurrent extractions (default from config)")
	fs.BoolVar(&o.noGitignore, "no-gitignore", false, "Include files ignored by git")
	fs.BoolVarP(&o.quiet, "quiet", "q", false, "Suppress progress output")
	fs.BoolVarP(&o.watch, "watch", "w", false, "Regenerate whenever files change")
	fs.BoolVar(&o.strict, "strict", false, "Exit non-zero when a file cannot be read")
}

// apply overlays explicitly set options onto cfg and revalidates it.
func (o *generateOptions) apply(cfg *config.Config) error {
	if o.format != "" {
		cfg.Output.Format = o.format
	}
	if o.output != "" {
		abs, err := filepath.Abs(o.output)
		if err != nil {
			return fmt.Errorf("failed to resolve output path: %w", err)
		}
		cfg.Output.File = abs
	}
	if o.depth != 0 {
		cfg.Extraction.SearchDepth = o.depth
	}
	if o.workers != 0 {
		cfg.Extraction.Workers = o.workers
	}
	if o.noGitignore {
		cfg.Paths.RespectGitignore = false
	}
	return config.Validate(cfg)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	cfg, err := config.LoadConfigFromDir(root)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := genOpts.apply(cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	g := &generator{
		root:   root,
		cfg:    cfg,
		quiet:  genOpts.quiet,
		strict: genOpts.strict,
		logger: logger,
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	}

	if genOpts.watch {
		return g.watch(cmd.Context())
	}
	return g.run(cmd.Context())
}

// generator renders the tree of one root according to a validated config.
type generator struct {
	root   string
	cfg    *config.Config
	quiet  bool
	strict bool
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func (g *generator) newBuilder(source doctree.Source) (*doctree.Builder, error) {
	var progress doctree.ProgressReporter
	if !g.quiet {
		progress = NewCLIProgressReporter(g.stderr)
	}
	return doctree.NewBuilder(g.cfg.BuildOptions(g.root), source, progress, g.logger)
}

// run builds and writes the tree once.
func (g *generator) run(ctx context.Context) error {
	b, err := g.newBuilder(nil)
	if err != nil {
		return err
	}
	return g.generate(ctx, b)
}

func (g *generator) generate(ctx context.Context, b *doctree.Builder) error {
	tree, err := b.Build(ctx)
	if err != nil {
		return err
	}
	if err := g.write(tree); err != nil {
		return err
	}
	return g.report(tree)
}

// outputPath returns the absolute output file, or "" for stdout. Relative
// paths from the config file resolve against the root.
func (g *generator) outputPath() string {
	file := g.cfg.Output.File
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	root, err := filepath.Abs(g.root)
	if err != nil {
		return file
	}
	return filepath.Join(root, file)
}

func (g *generator) write(tree *doctree.Tree) error {
	format, err := doctree.ParseFormat(g.cfg.Output.Format)
	if err != nil {
		return err
	}

	path := g.outputPath()
	if path == "" {
		return doctree.Render(g.stdout, tree, format)
	}

	var buf bytes.Buffer
	if err := doctree.Render(&buf, tree, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	g.logger.Info("wrote documentation tree", "file", path, "format", string(format))
	return nil
}

// report logs missing and unreadable files. Only --strict turns unreadable
// files into a command failure.
func (g *generator) report(tree *doctree.Tree) error {
	warnings := tree.Warnings()
	for _, w := range warnings {
		g.logger.Debug("no brief", "path", w.Path)
	}
	if len(warnings) > 0 {
		g.logger.Warn("files without a brief", "count", len(warnings))
	}

	hard := tree.HardErrors()
	for _, e := range hard {
		g.logger.Error("unreadable file", "path", e.Path, "detail", e.Detail)
	}

	if g.strict && len(hard) > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrUnreadableFiles, len(hard), tree.Stats.FilesScanned)
	}
	return nil
}

// watch renders once, then re-renders on every debounced batch of changes
// until ctx is cancelled.
func (g *generator) watch(ctx context.Context) error {
	var source doctree.Source = brief.New(brief.WithLogger(g.logger))

	var cached *cache.Extractor
	if g.cfg.Cache.Enabled {
		var err error
		cached, err = cache.New(source, g.cfg.Cache.Capacity)
		if err != nil {
			return err
		}
		defer cached.Close()
		source = cached
	}

	b, err := g.newBuilder(source)
	if err != nil {
		return err
	}

	if err := g.generate(ctx, b); err != nil {
		if !errors.Is(err, ErrUnreadableFiles) {
			return err
		}
		g.logger.Error("initial build", "error", err)
	}

	outPath := g.outputPath()
	fd := b.Discovery()
	match := func(path string) bool {
		return path != outPath && fd.Matches(path)
	}

	w, err := watcher.NewFileWatcher(b.RootDir(), match, fd.SkipDir, watcher.WithLogger(g.logger))
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	err = w.Start(ctx, func(files []string) {
		if ctx.Err() != nil {
			return
		}
		g.logger.Info("change detected, rebuilding", "files", len(files))

		if cached != nil {
			cached.Invalidate(files...)
		}

		w.Pause()
		defer w.Resume()

		if err := g.generate(ctx, b); err != nil && ctx.Err() == nil {
			g.logger.Error("rebuild failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	g.logger.Info("watching for changes", "root", b.RootDir())
	<-ctx.Done()
	return nil
}
