package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/claimlens/claimlens/internal/common"
	"github.com/claimlens/claimlens/internal/interfaces"
	"github.com/claimlens/claimlens/internal/models"
)

const serviceName = "claimlens-ocr"

// execRunner runs real external commands.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// HealthHandler serves liveness and readiness probes. Readiness verifies
// the OCR engine binary responds before the service accepts work.
type HealthHandler struct {
	runner        interfaces.CommandRunner
	tesseractPath string
	toolsCount    int
	logger        arbor.ILogger
}

// NewHealthHandler creates a health handler probing the given engine binary.
func NewHealthHandler(tesseractPath string, toolsCount int, logger arbor.ILogger) *HealthHandler {
	return &HealthHandler{
		runner:        execRunner{},
		tesseractPath: tesseractPath,
		toolsCount:    toolsCount,
		logger:        logger,
	}
}

// LivenessHandler always reports alive.
func (h *HealthHandler) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, models.HealthResponse{
		Status:      "alive",
		Service:     serviceName,
		Version:     common.GetVersion(),
		MCPProtocol: "sse",
		ToolsCount:  h.toolsCount,
	})
}

// ReadinessHandler reports ready only when the OCR engine is reachable.
func (h *HealthHandler) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stdout, stderr, err := h.runner.Run(ctx, h.tesseractPath, "--version")
	if err != nil {
		detail := strings.TrimSpace(string(stderr))
		if detail == "" {
			detail = err.Error()
		}
		h.logger.Error().Err(err).Msg("Readiness check failed")
		WriteJSON(w, http.StatusServiceUnavailable, models.HealthResponse{
			Status:      "unavailable",
			Service:     serviceName,
			Version:     common.GetVersion(),
			MCPProtocol: "sse",
			ToolsCount:  h.toolsCount,
			Detail:      fmt.Sprintf("Tesseract not ready: %s", detail),
		})
		return
	}

	h.logger.Debug().Str("engine", firstLine(string(stdout))).Msg("Readiness check passed")

	WriteJSON(w, http.StatusOK, models.HealthResponse{
		Status:      "ready",
		Service:     serviceName,
		Version:     common.GetVersion(),
		MCPProtocol: "sse",
		ToolsCount:  h.toolsCount,
	})
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
