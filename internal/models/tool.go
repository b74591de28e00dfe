package models

// ToolParameterSchema is the JSON-schema style parameter description
// advertised for a tool.
type ToolParameterSchema struct {
	Type       string                  `json:"type"`
	Properties map[string]ToolProperty `json:"properties"`
	Required   []string                `json:"required"`
}

// ToolProperty describes one tool parameter.
type ToolProperty struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Default     string   `json:"default,omitempty"`
}

// ToolFunction is the function block of a tool descriptor.
type ToolFunction struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Parameters  ToolParameterSchema `json:"parameters"`
}

// ToolDescriptor is the static metadata advertised for one invokable
// capability. Immutable for the lifetime of the server process.
type ToolDescriptor struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ServerInfo is the static server metadata sent with the tools event.
type ServerInfo struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Protocol     string   `json:"protocol"`
	Capabilities []string `json:"capabilities"`
}

// ToolExecutionRequest is the request body for tool execution endpoints.
type ToolExecutionRequest struct {
	DocumentPath string `json:"document_path"`
	DocumentType string `json:"document_type"`
	Language     string `json:"language"`
}

// ToolListResponse is the non-streaming tool listing payload.
type ToolListResponse struct {
	Tools []ToolDescriptor `json:"tools"`
	Count int              `json:"count"`
}

// ToolsEvent is the payload of the SSE "tools" event.
type ToolsEvent struct {
	Tools      []ToolDescriptor `json:"tools"`
	ServerInfo ServerInfo       `json:"server_info"`
}

// PingEvent is the payload of the SSE "ping" keep-alive event.
type PingEvent struct {
	Status     string  `json:"status"`
	Timestamp  float64 `json:"timestamp"`
	ToolsCount int     `json:"tools_count"`
}

// HealthResponse is the liveness/readiness probe payload.
type HealthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Version     string `json:"version"`
	MCPProtocol string `json:"mcp_protocol"`
	ToolsCount  int    `json:"tools_count"`
	Detail      string `json:"detail,omitempty"`
}
