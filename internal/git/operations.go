package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// gitlinkMode is the index mode of a submodule entry.
const gitlinkMode = "160000"

// Operations defines the interface for git operations.
// This allows mocking git commands in tests.
type Operations interface {
	// IgnoredPaths returns the subset of paths that git ignores.
	// Returns nil (nothing ignored) if projectPath is not inside a work tree
	// or git is unavailable. Paths inside submodules are never reported.
	IgnoredPaths(projectPath string, paths []string) ([]string, error)
}

// gitOps is the real implementation using exec.Command.
type gitOps struct{}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{}
}

func (g *gitOps) IgnoredPaths(projectPath string, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	inside, err := g.insideWorkTree(projectPath)
	if err != nil || !inside {
		return nil, err
	}

	submodules, err := g.submodulePaths(projectPath)
	if err != nil {
		return nil, err
	}

	// check-ignore aborts the whole batch on a path inside a submodule.
	candidates := make([]string, 0, len(paths))
	for _, p := range paths {
		if !inSubmodule(projectPath, p, submodules) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// -z: NUL-separated input and output so odd file names survive.
	cmd := exec.Command("git", "check-ignore", "-z", "--stdin")
	cmd.Dir = projectPath
	cmd.Stdin = strings.NewReader(strings.Join(candidates, "\x00") + "\x00")

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			// Exit 1: none of the paths are ignored.
			return nil, nil
		}
		return nil, commandError("check-ignore", err)
	}

	return splitNUL(output), nil
}

// insideWorkTree reports whether dir belongs to a git work tree. A missing git
// binary or a directory outside any repository reports false without error.
func (g *gitOps) insideWorkTree(dir string) (bool, error) {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) || errors.Is(err, exec.ErrNotFound) {
			return false, nil
		}
		return false, commandError("rev-parse", err)
	}
	return strings.TrimSpace(string(output)) == "true", nil
}

// submodulePaths returns the absolute paths of submodules registered in the
// index at or below dir.
func (g *gitOps) submodulePaths(dir string) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "-z", "--stage")
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return nil, commandError("ls-files", err)
	}

	var submodules []string
	for _, entry := range splitNUL(output) {
		// <mode> <object> <stage>\t<path>
		meta, path, ok := strings.Cut(entry, "\t")
		if !ok || !strings.HasPrefix(meta, gitlinkMode+" ") {
			continue
		}
		submodules = append(submodules, filepath.Join(dir, filepath.FromSlash(path)))
	}
	return submodules, nil
}

func inSubmodule(projectPath, path string, submodules []string) bool {
	if len(submodules) == 0 {
		return false
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectPath, path)
	}
	path = filepath.Clean(path)
	for _, sub := range submodules {
		if path == sub || strings.HasPrefix(path, sub+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func splitNUL(output []byte) []string {
	var out []string
	for _, p := range bytes.Split(output, []byte{0}) {
		if len(p) > 0 {
			out = append(out, string(p))
		}
	}
	return out
}

func commandError(name string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("git %s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return fmt.Errorf("git %s: %w", name, err)
}

// Package-level variable for dependency injection.
// Tests can replace this with a mock implementation.
var defaultGitOps Operations = NewOperations()

// Default returns the package-level Operations implementation.
func Default() Operations {
	return defaultGitOps
}
