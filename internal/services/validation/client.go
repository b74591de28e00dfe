package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/claimlens/claimlens/internal/common"
	"github.com/claimlens/claimlens/internal/interfaces"
	"github.com/claimlens/claimlens/internal/models"
)

const systemInstruction = "You are a document processing assistant that validates and structures OCR text. Always respond with valid JSON."

// chat completion wire types for the OpenAI-compatible inference endpoint
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// statusError reports a non-2xx response from the inference endpoint.
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("inference endpoint returned status %d", e.Code)
}

// malformedError reports a 2xx response whose body is not a usable
// completion envelope.
type malformedError struct {
	Reason string
}

func (e *malformedError) Error() string {
	return fmt.Sprintf("malformed completion response: %s", e.Reason)
}

// Client transforms raw OCR text into a validated structured object via
// the remote inference endpoint. It is constructed once at process start
// and holds its own http.Client; there is no lazy shared handle.
//
// Validate never fails the request: every network, status, schema, or
// parse failure degrades into a conservative fallback result flagged for
// manual review.
type Client struct {
	httpClient      *http.Client
	endpoint        string
	model           string
	maxTokens       int
	reviewThreshold float64
	prompts         *PromptStore
	logger          arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.Validator = (*Client)(nil)

// NewClient creates a validation client from the inference configuration.
func NewClient(cfg common.InferenceConfig, reviewThreshold float64, prompts *PromptStore, logger arbor.ILogger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		endpoint:        strings.TrimRight(cfg.Endpoint, "/"),
		model:           cfg.Model,
		maxTokens:       cfg.MaxTokens,
		reviewThreshold: reviewThreshold,
		prompts:         prompts,
		logger:          logger,
	}
}

// Validate sends the raw text and expected fields to the inference
// endpoint and returns the structured result, or a degraded fallback on
// any failure.
func (c *Client) Validate(ctx context.Context, rawText string, schema models.FieldSchema) models.ValidationResult {
	prompt := c.prompts.OCRValidationPrompt(rawText, schema.Fields)

	content, err := c.complete(ctx, prompt)
	if err != nil {
		var statusErr *statusError
		var malformedErr *malformedError
		switch {
		case errors.As(err, &statusErr):
			c.logger.Error().Int("status_code", statusErr.Code).Msg("Inference endpoint returned error status")
			return c.fallback(rawText, "LLM validation unavailable")
		case errors.As(err, &malformedErr):
			c.logger.Warn().Err(err).Msg("Inference response envelope was malformed, returning raw text")
			return c.fallback(rawText, "LLM validation failed to parse")
		default:
			c.logger.Error().Err(err).Msg("Inference request failed")
			return c.fallback(rawText, fmt.Sprintf("Error: %v", err))
		}
	}

	result, err := c.parseResult(content, schema)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Inference response was not valid structured JSON, returning raw text")
		return c.fallback(rawText, "LLM validation failed to parse")
	}

	if result.OverallConfidence < c.reviewThreshold {
		result.RequiresManualReview = true
	}

	c.logger.Info().
		Int("fields", len(result.Fields)).
		Float64("overall_confidence", result.OverallConfidence).
		Bool("manual_review", result.RequiresManualReview).
		Msg("Validated OCR text with LLM")

	return result
}

// complete issues one chat completion request and returns the model's
// message content.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   c.maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &statusError{Code: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(bodyBytes, &completion); err != nil {
		return "", &malformedError{Reason: err.Error()}
	}
	if len(completion.Choices) == 0 {
		return "", &malformedError{Reason: "no choices in response"}
	}

	return completion.Choices[0].Message.Content, nil
}

// parseResult parses the model's message content and checks it against
// the schema derived from the expected field list.
func (c *Client) parseResult(content string, schema models.FieldSchema) (models.ValidationResult, error) {
	data := []byte(stripMarkdownFences(content))

	if err := validateAgainstSchema(resultSchema(schema.Fields), data); err != nil {
		return models.ValidationResult{}, err
	}

	var result models.ValidationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return models.ValidationResult{}, fmt.Errorf("failed to parse validation result: %w", err)
	}

	return result, nil
}

// fallback builds the degraded result returned on any validation failure.
func (c *Client) fallback(rawText, notes string) models.ValidationResult {
	return models.ValidationResult{
		Fields: map[string]models.FieldValue{
			"raw_text": {Value: rawText, Confidence: 0.5},
		},
		OverallConfidence:    0.5,
		RequiresManualReview: true,
		Notes:                notes,
	}
}

// stripMarkdownFences removes a surrounding ```json ... ``` block when the
// model wraps its output despite instructions.
func stripMarkdownFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
