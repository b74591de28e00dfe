package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/claimlens/claimlens/internal/common"
	"github.com/claimlens/claimlens/internal/interfaces"
	"github.com/claimlens/claimlens/internal/models"
	"github.com/claimlens/claimlens/internal/services/ocr"
)

// ToolNameOCRDocument is the advertised name of the OCR capability.
const ToolNameOCRDocument = "ocr_document"

// defaultPingInterval is the keep-alive cadence on the discovery stream.
const defaultPingInterval = 30 * time.Second

// MCPHandler serves the capability discovery stream and the tool
// execution endpoints. The tool descriptor list is built once and is
// immutable for the lifetime of the process.
type MCPHandler struct {
	orchestrator interfaces.Orchestrator
	logger       arbor.ILogger
	tools        []models.ToolDescriptor
	serverInfo   models.ServerInfo
	pingInterval time.Duration
}

// NewMCPHandler creates a new MCP handler.
func NewMCPHandler(orchestrator interfaces.Orchestrator, logger arbor.ILogger) *MCPHandler {
	return &MCPHandler{
		orchestrator: orchestrator,
		logger:       logger,
		tools:        buildToolDescriptors(),
		serverInfo: models.ServerInfo{
			Name:         "claimlens-ocr",
			Version:      common.GetVersion(),
			Protocol:     "mcp-sse",
			Capabilities: []string{"ocr", "pdf_processing", "llm_validation"},
		},
		pingInterval: defaultPingInterval,
	}
}

// buildToolDescriptors returns the static tool metadata advertised to
// orchestrating agents.
func buildToolDescriptors() []models.ToolDescriptor {
	return []models.ToolDescriptor{
		{
			Type: "function",
			Function: models.ToolFunction{
				Name:        ToolNameOCRDocument,
				Description: "Extract text from document images or PDFs using OCR and validate with LLM. Supports multiple formats (PDF, JPG, PNG, TIFF) and languages. Returns structured data with confidence scores.",
				Parameters: models.ToolParameterSchema{
					Type: "object",
					Properties: map[string]models.ToolProperty{
						"document_path": {
							Type:        "string",
							Description: "Absolute path to the document file (PDF, JPG, PNG, TIFF, BMP)",
						},
						"document_type": {
							Type:        "string",
							Enum:        ocr.DocumentTypes(),
							Default:     ocr.DocTypeClaimForm,
							Description: "Type of document to optimize field extraction",
						},
						"language": {
							Type:        "string",
							Default:     "eng",
							Description: "OCR language code (eng, fra, spa, deu, etc.)",
						},
					},
					Required: []string{"document_path"},
				},
			},
		},
	}
}

// Tools returns the advertised tool descriptors.
func (h *MCPHandler) Tools() []models.ToolDescriptor {
	return h.tools
}

// SSEHandler serves the persistent discovery stream: one "tools" event on
// connect, then a "ping" event every interval until the client disconnects.
func (h *MCPHandler) SSEHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	h.logger.Info().Str("remote", r.RemoteAddr).Msg("Agent connected to MCP SSE endpoint")

	// Tools are sent exactly once, before any ping.
	h.sendEvent(w, flusher, "tools", models.ToolsEvent{
		Tools:      h.tools,
		ServerInfo: h.serverInfo,
	})

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info().Str("remote", r.RemoteAddr).Msg("Agent disconnected from MCP SSE endpoint")
			return
		case <-ticker.C:
			h.sendEvent(w, flusher, "ping", models.PingEvent{
				Status:     "alive",
				Timestamp:  float64(time.Now().Unix()),
				ToolsCount: len(h.tools),
			})
		}
	}
}

// ExecuteToolHandler executes the ocr_document tool synchronously and
// renders the pipeline result, 200 on success and 500 on failure. Faults
// not already normalized by the orchestrator are caught here; the caller
// always receives a well-formed envelope.
func (h *MCPHandler) ExecuteToolHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error().Str("panic", fmt.Sprintf("%v", rec)).Msg("Tool execution panic recovered")
			h.writeResult(w, models.FailedPipelineResult(fmt.Sprintf("internal fault: %v", rec)))
		}
	}()

	var req models.ToolExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeResult(w, models.FailedPipelineResult(fmt.Sprintf("invalid request body: %v", err)))
		return
	}
	defer r.Body.Close()

	if req.DocumentPath == "" {
		h.writeResult(w, models.FailedPipelineResult("document_path is required"))
		return
	}
	if req.DocumentType == "" {
		req.DocumentType = ocr.DocTypeClaimForm
	}

	h.logger.Info().Str("path", req.DocumentPath).Msg("Executing ocr_document tool")

	result := h.orchestrator.Process(r.Context(), req.DocumentPath, req.DocumentType, req.Language)

	h.logger.Info().Bool("success", result.Success).Msg("OCR tool execution completed")
	h.writeResult(w, result)
}

// LegacyExecuteHandler is a pure alias of ExecuteToolHandler kept for
// clients that call the OCR service directly without tool discovery.
func (h *MCPHandler) LegacyExecuteHandler(w http.ResponseWriter, r *http.Request) {
	h.logger.Warn().Msg("Legacy /ocr_document endpoint called")
	h.ExecuteToolHandler(w, r)
}

// ListToolsHandler returns the tool descriptors without streaming.
func (h *MCPHandler) ListToolsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, models.ToolListResponse{
		Tools: h.tools,
		Count: len(h.tools),
	})
}

// RootHandler returns static server information.
func (h *MCPHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, http.StatusNotFound, "not found")
		return
	}

	toolNames := make([]string, len(h.tools))
	for i, tool := range h.tools {
		toolNames[i] = tool.Function.Name
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"service":  "ClaimLens OCR Server",
		"version":  common.GetVersion(),
		"protocol": "Model Context Protocol (MCP) with SSE",
		"status":   "running",
		"tools":    toolNames,
		"endpoints": map[string]string{
			"mcp_sse":        "/sse",
			"tool_execution": "/mcp/tools/" + ToolNameOCRDocument,
			"tool_listing":   "/mcp/tools",
			"health_live":    "/health/live",
			"health_ready":   "/health/ready",
		},
	})
}

// writeResult renders a pipeline result with the HTTP status mandated by
// its success flag.
func (h *MCPHandler) writeResult(w http.ResponseWriter, result models.PipelineResult) {
	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	WriteJSON(w, status, result)
}

// sendEvent writes an SSE event to the response
func (h *MCPHandler) sendEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal SSE event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()
}
