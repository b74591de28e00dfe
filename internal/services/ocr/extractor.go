package ocr

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/ternarybob/arbor"

	"github.com/claimlens/claimlens/internal/interfaces"
	"github.com/claimlens/claimlens/internal/models"
)

// TesseractExtractor implements the PageExtractor interface using the
// gosseract client. A fresh client is created per page so concurrent page
// extractions never share engine state.
type TesseractExtractor struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.PageExtractor = (*TesseractExtractor)(nil)

// NewTesseractExtractor creates a new Tesseract-backed page extractor
func NewTesseractExtractor(logger arbor.ILogger) *TesseractExtractor {
	return &TesseractExtractor{logger: logger}
}

// ExtractPage runs OCR over one raster page and returns its text together
// with the mean word confidence normalized to [0,1]. Words the engine
// reports with a negative confidence carry no text and are excluded from
// the mean; a page with no valid words scores 0.0.
func (e *TesseractExtractor) ExtractPage(ctx context.Context, page models.RasterPage, language string) (models.PageResult, error) {
	select {
	case <-ctx.Done():
		return models.PageResult{}, ctx.Err()
	default:
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImage(page.Path); err != nil {
		return models.PageResult{}, &EngineError{Err: err}
	}
	if language != "" {
		if err := client.SetLanguage(language); err != nil {
			return models.PageResult{}, &EngineError{Err: err}
		}
	}

	text, err := client.Text()
	if err != nil {
		return models.PageResult{}, &EngineError{Err: err}
	}

	confidence := meanWordConfidence(client)

	e.logger.Debug().
		Str("document", page.DocumentID).
		Int("page", page.Index).
		Int("text_length", len(text)).
		Float64("confidence", confidence).
		Msg("Extracted page text")

	return models.PageResult{
		Index:      page.Index,
		Text:       strings.TrimSpace(text),
		Confidence: confidence,
	}, nil
}

// meanWordConfidence averages per-word confidences reported in [0,100]
// and normalizes the result to [0,1].
func meanWordConfidence(client *gosseract.Client) float64 {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0.0
	}

	var sum float64
	var count int
	for _, b := range boxes {
		if b.Confidence < 0 {
			// sentinel for "no text recognized"
			continue
		}
		sum += b.Confidence
		count++
	}
	if count == 0 {
		return 0.0
	}
	return sum / float64(count) / 100.0
}
