package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/lukman83/rakurank/internal/runner"
	"github.com/lukman83/rakurank/internal/store"
)

// Serve starts the MCP stdio server with all tools registered.
func Serve(st *store.Store, run *runner.Runner) error {
	s := server.NewMCPServer(
		"rakurank",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	registerTools(s, st, run)

	return server.ServeStdio(s)
}
