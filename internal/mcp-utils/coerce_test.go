package mcputils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockArgumentGetter implements ArgumentGetter for testing
type mockArgumentGetter struct {
	args map[string]any
}

func (m *mockArgumentGetter) GetArguments() map[string]any {
	return m.args
}

type testRequest struct {
	Path        string   `json:"path"`
	SearchDepth int      `json:"search_depth,omitempty"`
	Recursive   bool     `json:"recursive,omitempty"`
	Formats     []string `json:"formats,omitempty"`
}

func TestCoerceBindArguments(t *testing.T) {
	t.Parallel()

	t.Run("native types", func(t *testing.T) {
		var got testRequest
		err := CoerceBindArguments(&mockArgumentGetter{args: map[string]any{
			"path":         "main.go",
			"search_depth": 30.0,
			"recursive":    true,
			"formats":      []any{"json", "yaml"},
		}}, &got)
		require.NoError(t, err)
		assert.Equal(t, testRequest{Path: "main.go", SearchDepth: 30, Recursive: true, Formats: []string{"json", "yaml"}}, got)
	})

	t.Run("stringly typed", func(t *testing.T) {
		var got testRequest
		err := CoerceBindArguments(&mockArgumentGetter{args: map[string]any{
			"path":         "main.go",
			"search_depth": "12",
			"recursive":    "true",
			"formats":      `["markdown"]`,
		}}, &got)
		require.NoError(t, err)
		assert.Equal(t, 12, got.SearchDepth)
		assert.True(t, got.Recursive)
		assert.Equal(t, []string{"markdown"}, got.Formats)
	})

	t.Run("comma separated slice", func(t *testing.T) {
		var got testRequest
		err := CoerceBindArguments(&mockArgumentGetter{args: map[string]any{"formats": "json,yaml"}}, &got)
		require.NoError(t, err)
		assert.Equal(t, []string{"json", "yaml"}, got.Formats)
	})

	t.Run("missing fields keep zero values", func(t *testing.T) {
		var got testRequest
		require.NoError(t, CoerceBindArguments(&mockArgumentGetter{args: map[string]any{}}, &got))
		assert.Equal(t, testRequest{}, got)
	})

	t.Run("nil arguments", func(t *testing.T) {
		var got testRequest
		require.NoError(t, CoerceBindArguments(&mockArgumentGetter{}, &got))
		assert.Equal(t, testRequest{}, got)
	})

	t.Run("invalid number", func(t *testing.T) {
		var got testRequest
		err := CoerceBindArguments(&mockArgumentGetter{args: map[string]any{"search_depth": "deep"}}, &got)
		assert.Error(t, err)
	})
}
