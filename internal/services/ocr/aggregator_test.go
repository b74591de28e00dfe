package ocr

import (
	"math"
	"strings"
	"testing"

	"github.com/claimlens/claimlens/internal/models"
)

func TestAggregatePages(t *testing.T) {
	tests := []struct {
		name           string
		pages          []models.PageResult
		wantText       string
		wantConfidence float64
		wantPageCount  int
		margin         float64
	}{
		{
			name:           "no pages yields empty result",
			pages:          nil,
			wantText:       "",
			wantConfidence: 0,
			wantPageCount:  0,
			margin:         0.001,
		},
		{
			name: "single page passes through",
			pages: []models.PageResult{
				{Index: 0, Text: "claim form", Confidence: 0.9},
			},
			wantText:       "claim form",
			wantConfidence: 0.9,
			wantPageCount:  1,
			margin:         0.001,
		},
		{
			name: "two pages joined with page break",
			pages: []models.PageResult{
				{Index: 0, Text: "page one", Confidence: 0.8},
				{Index: 1, Text: "page two", Confidence: 0.6},
			},
			wantText:       "page one" + PageBreakSeparator + "page two",
			wantConfidence: 0.7,
			wantPageCount:  2,
			margin:         0.001,
		},
		{
			name: "confidence is arithmetic mean",
			pages: []models.PageResult{
				{Index: 0, Text: "a", Confidence: 1.0},
				{Index: 1, Text: "b", Confidence: 0.5},
				{Index: 2, Text: "c", Confidence: 0.0},
			},
			wantText:       strings.Join([]string{"a", "b", "c"}, PageBreakSeparator),
			wantConfidence: 0.5,
			wantPageCount:  3,
			margin:         0.001,
		},
		{
			name: "empty page text still contributes a separator",
			pages: []models.PageResult{
				{Index: 0, Text: "before", Confidence: 0.4},
				{Index: 1, Text: "", Confidence: 0.4},
			},
			wantText:       "before" + PageBreakSeparator,
			wantConfidence: 0.4,
			wantPageCount:  2,
			margin:         0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregatePages(tt.pages)
			if got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
			if math.Abs(got.Confidence-tt.wantConfidence) > tt.margin {
				t.Errorf("Confidence = %f, want %f (±%f)", got.Confidence, tt.wantConfidence, tt.margin)
			}
			if got.PageCount != tt.wantPageCount {
				t.Errorf("PageCount = %d, want %d", got.PageCount, tt.wantPageCount)
			}
		})
	}
}

func TestPageBreakSeparator(t *testing.T) {
	// Downstream consumers split combined text on this exact marker.
	if PageBreakSeparator != "\n\n--- Page Break ---\n\n" {
		t.Errorf("PageBreakSeparator = %q", PageBreakSeparator)
	}
}
