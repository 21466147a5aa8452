package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcputils "github.com/mvp-joe/doctree/internal/mcp-utils"
)

// bindArguments decodes the request arguments into target. A failure is
// returned as a tool error result.
func bindArguments[T any](request mcp.CallToolRequest, target *T) *mcp.CallToolResult {
	if request.Params.Arguments != nil {
		if _, ok := request.Params.Arguments.(map[string]any); !ok {
			return mcp.NewToolResultError("invalid arguments format")
		}
	}
	if err := mcputils.CoerceBindArguments(request, target); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err))
	}
	return nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
