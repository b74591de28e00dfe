package models

// RasterPage is a single page of a document rendered as an image on disk.
// Page indexes are 0-based and contiguous within one document.
type RasterPage struct {
	Index      int    `json:"index"`
	Path       string `json:"path"`
	DocumentID string `json:"document_id"`
}

// PageResult is the OCR output for one page. Confidence is the mean of
// per-word confidences normalized to [0,1], excluding words the engine
// reported with the no-text sentinel. 0.0 when no words were recognized.
type PageResult struct {
	Index      int     `json:"index"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// DocumentResult is the aggregated OCR output for a whole document.
type DocumentResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	PageCount  int     `json:"page_count"`
}

// FieldSchema maps a document type to the ordered field names expected
// from structured extraction.
type FieldSchema struct {
	DocumentType string   `json:"document_type"`
	Fields       []string `json:"fields"`
}

// FieldValue is a single extracted field within a ValidationResult.
type FieldValue struct {
	Value      interface{} `json:"value"`
	Confidence float64     `json:"confidence"`
	RawValue   string      `json:"raw_value,omitempty"`
	Issues     []string    `json:"issues,omitempty"`
}

// ValidationResult is the structured, validated view of a document's text.
type ValidationResult struct {
	Fields               map[string]FieldValue `json:"fields"`
	OverallConfidence    float64               `json:"overall_confidence"`
	RequiresManualReview bool                  `json:"requires_manual_review"`
	Notes                string                `json:"notes,omitempty"`
}

// PipelineResult is the uniform envelope returned to callers.
// Success=false implies RawText and StructuredData are both nil;
// success=true implies both are present.
type PipelineResult struct {
	Success        bool              `json:"success"`
	RawText        *string           `json:"raw_text"`
	StructuredData *ValidationResult `json:"structured_data"`
	Confidence     float64           `json:"confidence"`
	Errors         []string          `json:"errors"`
}

// FailedPipelineResult builds the failure envelope for the given messages.
func FailedPipelineResult(messages ...string) PipelineResult {
	if messages == nil {
		messages = []string{}
	}
	return PipelineResult{
		Success:    false,
		Confidence: 0.0,
		Errors:     messages,
	}
}
