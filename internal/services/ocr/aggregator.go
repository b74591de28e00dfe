package ocr

import (
	"strings"

	"github.com/claimlens/claimlens/internal/models"
)

// PageBreakSeparator delimits page texts in the combined document text.
const PageBreakSeparator = "\n\n--- Page Break ---\n\n"

// AggregatePages combines per-page OCR results into one document-level
// result. Text is joined with the page-break separator in page order and
// confidence is the arithmetic mean of the page confidences. Zero pages
// yield empty text and 0.0 confidence.
func AggregatePages(pages []models.PageResult) models.DocumentResult {
	if len(pages) == 0 {
		return models.DocumentResult{}
	}

	texts := make([]string, len(pages))
	var sum float64
	for i, page := range pages {
		texts[i] = page.Text
		sum += page.Confidence
	}

	return models.DocumentResult{
		Text:       strings.Join(texts, PageBreakSeparator),
		Confidence: sum / float64(len(pages)),
		PageCount:  len(pages),
	}
}
