// Package mcpserver exposes the chainlens tools over the Model Context
// Protocol.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mbd888/chainlens/internal/tools"
)

// NewMCPServer creates a configured MCP server with every registered tool.
// Tools without a hand-written schema are exposed with their description
// only.
func NewMCPServer(registry *tools.Registry, version string) *server.MCPServer {
	s := server.NewMCPServer("chainlens", version, server.WithToolCapabilities(false))
	h := NewHandlers(registry)

	for _, def := range registry.Definitions() {
		tool, ok := definitions[def.Name]
		if !ok {
			tool = mcp.NewTool(def.Name, mcp.WithDescription(def.Description))
		}
		s.AddTool(tool, h.Handle(def.Name))
	}
	return s
}
