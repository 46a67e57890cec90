// Package mcp exposes a growth session as Model Context Protocol tools.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sanonone/glyphgarden/internal/server"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

func NewMCPServer(session *server.Session) *mcp.Server {
	service := NewService(session)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "glyphgarden",
		Version: Version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "grow",
		Description: "Grow the text garden by a number of generations, even while it is paused.",
	}, service.Grow)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "system_report",
		Description: "Summarize the garden: size, energy, curvature, memory and the latest self-reflection insights.",
	}, service.SystemReport)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "emergent_patterns",
		Description: "List the clusters, bridges, spirals and fractal signatures recognized so far, newest first.",
	}, service.EmergentPatterns)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "reset",
		Description: "Discard the garden and replant the seeds of the same text.",
	}, service.Reset)

	return s
}
