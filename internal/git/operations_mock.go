package git

import (
	"fmt"
	"path/filepath"
)

// MockGitOps is a mock implementation of Operations for testing.
type MockGitOps struct {
	// Ignored lists paths (absolute, or relative to the project path) that
	// IgnoredPaths reports as ignored.
	Ignored      map[string]bool
	IgnoredError error
	Calls        int
}

// NewMockGitOps creates a mock with sensible defaults.
func NewMockGitOps() *MockGitOps {
	return &MockGitOps{Ignored: map[string]bool{}}
}

func (m *MockGitOps) IgnoredPaths(projectPath string, paths []string) ([]string, error) {
	m.Calls++
	if m.IgnoredError != nil {
		return nil, m.IgnoredError
	}

	var ignored []string
	for _, p := range paths {
		if m.Ignored[p] {
			ignored = append(ignored, p)
			continue
		}
		if rel, err := filepath.Rel(projectPath, p); err == nil && m.Ignored[filepath.ToSlash(rel)] {
			ignored = append(ignored, p)
		}
	}
	return ignored, nil
}

// Ignore marks paths as ignored and returns the mock for chaining.
func (m *MockGitOps) Ignore(paths ...string) *MockGitOps {
	for _, p := range paths {
		m.Ignored[p] = true
	}
	return m
}

// String returns a human-readable representation of the mock state.
func (m *MockGitOps) String() string {
	return fmt.Sprintf("MockGitOps{ignored=%d, calls=%d}", len(m.Ignored), m.Calls)
}
