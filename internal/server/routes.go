package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// MCP discovery stream
	mux.HandleFunc("/sse", s.app.MCPHandler.SSEHandler)

	// Tool execution and listing
	mux.HandleFunc("/mcp/tools/ocr_document", s.app.MCPHandler.ExecuteToolHandler)
	mux.HandleFunc("/mcp/tools", s.app.MCPHandler.ListToolsHandler)

	// Legacy direct-call endpoint, identical contract to the tool execution route
	mux.HandleFunc("/ocr_document", s.app.MCPHandler.LegacyExecuteHandler)

	// Health probes
	mux.HandleFunc("/health/live", s.app.HealthHandler.LivenessHandler)
	mux.HandleFunc("/health/ready", s.app.HealthHandler.ReadinessHandler)

	// Server info
	mux.HandleFunc("/", s.app.MCPHandler.RootHandler)

	return mux
}
