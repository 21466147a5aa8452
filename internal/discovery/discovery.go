// Package discovery enumerates the candidate files of a source tree.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mvp-joe/doctree/internal/git"
)

// alwaysSkipped directories are never descended into.
var alwaysSkipped = map[string]bool{
	".git":     true,
	".doctree": true,
}

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern  string
	glob     glob.Glob
	rootGlob glob.Glob // root-level variant of a "**/"-prefixed pattern
}

// FileDiscovery handles file discovery with glob patterns and ignore rules.
type FileDiscovery struct {
	rootDir         string
	includePatterns []compiledPattern
	ignorePatterns  []compiledPattern
}

// New creates a new file discovery instance.
// An empty include list matches every file.
func New(rootDir string, includePatterns, ignorePatterns []string) (*FileDiscovery, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}

	fd := &FileDiscovery{
		rootDir: absRoot,
	}

	if len(includePatterns) == 0 {
		includePatterns = []string{"**"}
	}

	if fd.includePatterns, err = compilePatterns(includePatterns); err != nil {
		return nil, err
	}
	if fd.ignorePatterns, err = compilePatterns(ignorePatterns); err != nil {
		return nil, err
	}

	return fd, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}

		// "**/*.md" should match both "README.md" and "docs/guide.md".
		if simplified, ok := strings.CutPrefix(pattern, "**/"); ok {
			if rg, err := glob.Compile(simplified, '/'); err == nil {
				cp.rootGlob = rg
			}
		}
		compiled = append(compiled, cp)
	}
	return compiled, nil
}

// RootDir returns the absolute root directory being scanned.
func (fd *FileDiscovery) RootDir() string {
	return fd.rootDir
}

// Discover walks the directory tree and returns matching files as absolute
// paths in lexical order.
func (fd *FileDiscovery) Discover() ([]string, error) {
	files := []string{}

	err := filepath.Walk(fd.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == fd.rootDir {
				return err
			}
			// Unreadable subtrees are skipped rather than failing the scan.
			return nil
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if path != fd.rootDir && fd.SkipDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		if fd.matchRel(relPath) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", fd.rootDir, err)
	}

	sort.Strings(files)
	return files, nil
}

// Matches reports whether path (absolute, or relative to the root) would be
// returned by Discover.
func (fd *FileDiscovery) Matches(path string) bool {
	relPath, ok := fd.rel(path)
	if !ok {
		return false
	}
	for _, dir := range parentDirs(relPath) {
		if fd.SkipDir(dir) {
			return false
		}
	}
	return fd.matchRel(relPath)
}

// SkipDir reports whether the directory at relPath (slash-separated,
// relative to the root) is excluded from the scan.
func (fd *FileDiscovery) SkipDir(relPath string) bool {
	if alwaysSkipped[filepath.Base(relPath)] {
		return true
	}
	// "node_modules" should match pattern "node_modules/**"
	return matchesAnyPattern(relPath, fd.ignorePatterns) ||
		matchesAnyPattern(relPath+"/**", fd.ignorePatterns)
}

func (fd *FileDiscovery) matchRel(relPath string) bool {
	if matchesAnyPattern(relPath, fd.ignorePatterns) {
		return false
	}
	return matchesAnyPattern(relPath, fd.includePatterns)
}

func (fd *FileDiscovery) rel(path string) (string, bool) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(fd.rootDir, path)
	}
	relPath, err := filepath.Rel(fd.rootDir, path)
	if err != nil {
		return "", false
	}
	relPath = filepath.ToSlash(relPath)
	if relPath == "." || relPath == ".." || strings.HasPrefix(relPath, "../") {
		return "", false
	}
	return relPath, true
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	rootLevel := !strings.Contains(path, "/")
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if rootLevel && cp.rootGlob != nil && cp.rootGlob.Match(path) {
			return true
		}
	}
	return false
}

// parentDirs returns the ancestor directories of a slash-separated relative
// path, outermost first. "a/b/c.go" yields ["a", "a/b"].
func parentDirs(relPath string) []string {
	var dirs []string
	for i := 0; i < len(relPath); i++ {
		if relPath[i] == '/' {
			dirs = append(dirs, relPath[:i])
		}
	}
	return dirs
}

// FilterIgnored drops files that git ignores. Files outside a repository are
// returned unchanged.
func FilterIgnored(ops git.Operations, rootDir string, files []string) ([]string, error) {
	if len(files) == 0 {
		return files, nil
	}

	ignored, err := ops.IgnoredPaths(rootDir, files)
	if err != nil {
		return nil, fmt.Errorf("failed to check git ignore rules: %w", err)
	}
	if len(ignored) == 0 {
		return files, nil
	}

	skip := make(map[string]bool, len(ignored))
	for _, p := range ignored {
		skip[p] = true
	}

	kept := make([]string, 0, len(files))
	for _, f := range files {
		if !skip[f] {
			kept = append(kept, f)
		}
	}
	return kept, nil
}
