package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/doctree/internal/brief"
	"github.com/mvp-joe/doctree/internal/doctree"
)

// maxSearchDepth bounds the search_depth argument of doctree_brief.
const maxSearchDepth = 10000

// BriefRequest holds the doctree_brief arguments.
type BriefRequest struct {
	Path        string `json:"path"`
	SearchDepth int    `json:"search_depth,omitempty"`
}

// TreeRequest holds the doctree_tree arguments.
type TreeRequest struct {
	Format string `json:"format,omitempty"`
}

// BriefResponse is the doctree_brief result.
type BriefResponse struct {
	Path    string `json:"path"`
	Brief   string `json:"brief"`
	Dialect string `json:"dialect"`
	Line    int    `json:"line"`
}

// AddBriefTool registers the doctree_brief tool. Relative paths resolve
// against root; paths outside root are rejected.
func AddBriefTool(s *server.MCPServer, root string, source doctree.Source, defaultDepth int) {
	tool := mcp.NewTool(
		"doctree_brief",
		mcp.WithDescription("Return the one-line @brief summary declared in a file's leading comments. Recognizes /* */, <!-- -->, // and # comments."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path, relative to the project root or absolute within it")),
		mcp.WithNumber("search_depth",
			mcp.Description(fmt.Sprintf("Number of leading lines to scan (default: %d)", defaultDepth))),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createBriefHandler(root, source, defaultDepth))
}

func createBriefHandler(root string, source doctree.Source, defaultDepth int) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req BriefRequest
		if errResult := bindArguments(request, &req); errResult != nil {
			return errResult, nil
		}
		if req.Path == "" {
			return mcp.NewToolResultError("path parameter is required"), nil
		}

		depth := defaultDepth
		if req.SearchDepth != 0 {
			depth = clamp(req.SearchDepth, 1, maxSearchDepth)
		}

		absPath, relPath, err := resolveWithin(root, req.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		b, err := source.Extract(absPath, depth)
		if err != nil {
			if f, ok := brief.AsFailure(err); ok {
				return mcp.NewToolResultError(fmt.Sprintf("%s: %s", f.Kind, relPath)), nil
			}
			return mcp.NewToolResultError(err.Error()), nil
		}

		return marshalToolResponse(&BriefResponse{
			Path:    relPath,
			Brief:   b.Text,
			Dialect: b.Dialect.String(),
			Line:    b.Line,
		})
	}
}

// AddTreeTool registers the doctree_tree tool, which rebuilds and renders
// the whole tree on every call.
func AddTreeTool(s *server.MCPServer, builder *doctree.Builder) {
	tool := mcp.NewTool(
		"doctree_tree",
		mcp.WithDescription("Render the project's documentation tree: every file with an @brief summary, grouped by directory, plus files lacking one."),
		mcp.WithString("format",
			mcp.Description("Output format: markdown (default), json or yaml")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createTreeHandler(builder))
}

func createTreeHandler(builder *doctree.Builder) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req TreeRequest
		if errResult := bindArguments(request, &req); errResult != nil {
			return errResult, nil
		}

		format := doctree.FormatMarkdown
		if req.Format != "" {
			var err error
			if format, err = doctree.ParseFormat(req.Format); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}

		tree, err := builder.Build(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to build tree: %w", err)
		}

		var sb strings.Builder
		if err := doctree.Render(&sb, tree, format); err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// resolveWithin returns the absolute path and slash-separated root-relative
// path of p, failing when p escapes root either lexically or through a
// symlink.
func resolveWithin(root, p string) (string, string, error) {
	absPath := p
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(root, p)
	}
	absPath = filepath.Clean(absPath)

	rel, ok := relWithin(root, absPath)
	if !ok {
		return "", "", fmt.Errorf("path %q is outside the project root", p)
	}

	// A missing target is left to the extractor, which reports it unreadable.
	if target, err := filepath.EvalSymlinks(absPath); err == nil {
		realRoot, err := filepath.EvalSymlinks(root)
		if err != nil {
			realRoot = root
		}
		if _, ok := relWithin(realRoot, target); !ok {
			return "", "", fmt.Errorf("path %q is outside the project root", p)
		}
	}
	return absPath, rel, nil
}

func relWithin(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
