// Package mcpserver exposes the agent's tool services over the Model
// Context Protocol, so any MCP-speaking client can call them directly
// without going through the chat gateway.
//
// This is the composition point for the MCP surface: it adapts each
// registered service into an MCP tool and wires it into the server.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/tymem/mem-agent/internal/router"
)

// New creates an MCP server with every registered tool service exposed,
// including disabled ones. Enable/disable gates routing, not direct MCP
// invocation.
func New(name, version string, registry *router.Registry) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	for _, svc := range registry.All() {
		adapter := newToolAdapter(svc)
		s.AddTool(adapter.Definition(), adapter.Handle)
	}
	return s
}
