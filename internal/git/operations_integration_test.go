package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for real GitOperations implementation.
// These tests use actual git commands and run sequentially (NO t.Parallel()).

func TestGitOpsIntegration(t *testing.T) {
	// NO t.Parallel() - these tests run sequentially to avoid resource exhaustion
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	gitOps := NewOperations()

	t.Run("IgnoredPaths from a subdirectory", func(t *testing.T) {
		dir := createTestGitRepo(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\n"), 0644))
		sub := filepath.Join(dir, "pkg")
		require.NoError(t, os.MkdirAll(sub, 0755))

		ignored, err := gitOps.IgnoredPaths(sub, []string{filepath.Join(sub, "run.log"), filepath.Join(sub, "run.go")})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(sub, "run.log")}, ignored)
	})

	t.Run("IgnoredPaths reports gitignored files", func(t *testing.T) {
		dir := createTestGitRepo(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("ignored_file\nbuild/\n"), 0644))

		paths := []string{
			filepath.Join(dir, "ignored_file"),
			filepath.Join(dir, "build", "out.c"),
			filepath.Join(dir, "main.go"),
		}
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "build"), 0755))
		for _, p := range paths {
			require.NoError(t, os.WriteFile(p, []byte("// @brief X\n"), 0644))
		}
		ignored, err := gitOps.IgnoredPaths(dir, paths)

		require.NoError(t, err)
		assert.ElementsMatch(t, paths[:2], ignored)
	})

	t.Run("IgnoredPaths none ignored", func(t *testing.T) {
		dir := createTestGitRepo(t)
		ignored, err := gitOps.IgnoredPaths(dir, []string{filepath.Join(dir, "main.go")})

		require.NoError(t, err)
		assert.Empty(t, ignored)
	})

	t.Run("IgnoredPaths non-git directory", func(t *testing.T) {
		dir := t.TempDir()
		ignored, err := gitOps.IgnoredPaths(dir, []string{filepath.Join(dir, "a.go")})

		require.NoError(t, err)
		assert.Empty(t, ignored)
	})

	t.Run("IgnoredPaths with a submodule", func(t *testing.T) {
		dir := createTestGitRepo(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("ignored.txt\n"), 0644))

		// An embedded repository added to the index becomes a gitlink entry.
		sub := filepath.Join(dir, "sub")
		require.NoError(t, os.MkdirAll(sub, 0755))
		runGitCmd(t, sub, "init", "-b", "main")
		runGitCmd(t, sub, "config", "user.email", "test@example.com")
		runGitCmd(t, sub, "config", "user.name", "Test User")
		require.NoError(t, os.WriteFile(filepath.Join(sub, "f.go"), []byte("// @brief F\n"), 0644))
		runGitCmd(t, sub, "add", "f.go")
		runGitCmd(t, sub, "commit", "-m", "sub")
		runGitCmd(t, dir, "add", "sub")

		paths := []string{
			filepath.Join(dir, "ignored.txt"),
			filepath.Join(dir, "kept.txt"),
			filepath.Join(sub, "f.go"),
		}
		for _, p := range paths[:2] {
			require.NoError(t, os.WriteFile(p, []byte("x\n"), 0644))
		}

		ignored, err := gitOps.IgnoredPaths(dir, paths)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "ignored.txt")}, ignored)
	})

	t.Run("IgnoredPaths empty input", func(t *testing.T) {
		ignored, err := gitOps.IgnoredPaths(t.TempDir(), nil)
		require.NoError(t, err)
		assert.Nil(t, ignored)
	})
}

func TestMockGitOps(t *testing.T) {
	t.Parallel()

	mock := NewMockGitOps().Ignore("vendor/lib.go", "/abs/skip.py")

	ignored, err := mock.IgnoredPaths("/proj", []string{"/proj/vendor/lib.go", "/proj/main.go", "/abs/skip.py"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/proj/vendor/lib.go", "/abs/skip.py"}, ignored)
	assert.Equal(t, 1, mock.Calls)
	assert.Contains(t, mock.String(), "ignored=2")
}

func TestInSubmodule(t *testing.T) {
	t.Parallel()

	subs := []string{filepath.Join("/proj", "sub")}

	assert.True(t, inSubmodule("/proj", filepath.Join("/proj", "sub", "f.go"), subs))
	assert.True(t, inSubmodule("/proj", filepath.Join("sub", "deep", "f.go"), subs))
	assert.False(t, inSubmodule("/proj", filepath.Join("/proj", "subway", "f.go"), subs))
	assert.False(t, inSubmodule("/proj", filepath.Join("/proj", "main.go"), subs))
	assert.False(t, inSubmodule("/proj", filepath.Join("/proj", "sub", "f.go"), nil))
}

func createTestGitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	// Initialize repo
	cmd := exec.Command("git", "init", "-b", "main")
	cmd.Dir = dir
	require.NoError(t, cmd.Run(), "git init failed")

	// Configure git identity
	runGitCmd(t, dir, "config", "user.email", "test@example.com")
	runGitCmd(t, dir, "config", "user.name", "Test User")

	// Create initial commit
	testFile := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(testFile, []byte("# Test\n"), 0644))
	runGitCmd(t, dir, "add", "README.md")
	runGitCmd(t, dir, "commit", "-m", "Initial commit")

	return dir
}

func runGitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
}
