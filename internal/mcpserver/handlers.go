package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mbd888/chainlens/internal/tools"
)

// Handlers adapts MCP tool calls onto the tool registry.
type Handlers struct {
	registry *tools.Registry
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(registry *tools.Registry) *Handlers {
	return &Handlers{registry: registry}
}

// Handle returns the MCP handler for the named tool. The reply is the
// result envelope as indented JSON; failure envelopes are flagged isError.
func (h *Handlers) Handle(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		if args == nil {
			args = map[string]any{}
		}
		raw, err := json.Marshal(args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		result := h.registry.Invoke(ctx, name, raw)
		text := formatJSON(result.JSON())
		if !result.Success {
			return mcp.NewToolResultError(text), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func formatJSON(raw []byte) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return string(raw)
	}
	return pretty.String()
}
