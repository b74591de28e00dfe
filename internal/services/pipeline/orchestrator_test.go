package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/claimlens/claimlens/internal/models"
	"github.com/claimlens/claimlens/internal/services/ocr"
)

// mockSplitter implements interfaces.DocumentSplitter for testing
type mockSplitter struct {
	splitFunc func(ctx context.Context, path string) ([]models.RasterPage, func(), error)
}

func (m *mockSplitter) Split(ctx context.Context, path string) ([]models.RasterPage, func(), error) {
	if m.splitFunc != nil {
		return m.splitFunc(ctx, path)
	}
	return nil, func() {}, nil
}

// mockExtractor implements interfaces.PageExtractor for testing
type mockExtractor struct {
	extractFunc func(ctx context.Context, page models.RasterPage, language string) (models.PageResult, error)
}

func (m *mockExtractor) ExtractPage(ctx context.Context, page models.RasterPage, language string) (models.PageResult, error) {
	if m.extractFunc != nil {
		return m.extractFunc(ctx, page, language)
	}
	return models.PageResult{Index: page.Index}, nil
}

// mockValidator implements interfaces.Validator for testing
type mockValidator struct {
	validateFunc func(ctx context.Context, rawText string, schema models.FieldSchema) models.ValidationResult
}

func (m *mockValidator) Validate(ctx context.Context, rawText string, schema models.FieldSchema) models.ValidationResult {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, rawText, schema)
	}
	return models.ValidationResult{Fields: map[string]models.FieldValue{}}
}

// createTestDocument writes a dummy file so the existence check passes;
// splitting and extraction are mocked.
func createTestDocument(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0644))
	return path
}

func singlePageSplitter(path string) *mockSplitter {
	return &mockSplitter{
		splitFunc: func(ctx context.Context, p string) ([]models.RasterPage, func(), error) {
			return []models.RasterPage{{Index: 0, Path: path, DocumentID: filepath.Base(path)}}, func() {}, nil
		},
	}
}

func newTestOrchestrator(splitter *mockSplitter, extractor *mockExtractor, validator *mockValidator) *Orchestrator {
	return NewOrchestrator(splitter, extractor, validator, "eng", 2, arbor.NewLogger())
}

func TestOrchestrator_Process_Success(t *testing.T) {
	path := createTestDocument(t, "claim.png")

	extractor := &mockExtractor{
		extractFunc: func(ctx context.Context, page models.RasterPage, language string) (models.PageResult, error) {
			assert.Equal(t, "eng", language)
			return models.PageResult{Index: page.Index, Text: "Claim CLM-001", Confidence: 0.9}, nil
		},
	}
	validator := &mockValidator{
		validateFunc: func(ctx context.Context, rawText string, schema models.FieldSchema) models.ValidationResult {
			assert.Equal(t, "Claim CLM-001", rawText)
			assert.Equal(t, "claim_form", schema.DocumentType)
			return models.ValidationResult{
				Fields:            map[string]models.FieldValue{"claim_number": {Value: "CLM-001", Confidence: 0.95}},
				OverallConfidence: 0.95,
			}
		},
	}

	orch := newTestOrchestrator(singlePageSplitter(path), extractor, validator)
	result := orch.Process(context.Background(), path, "claim_form", "")

	assert.True(t, result.Success)
	require.NotNil(t, result.RawText)
	assert.Equal(t, "Claim CLM-001", *result.RawText)
	require.NotNil(t, result.StructuredData)
	assert.Equal(t, 0.95, result.StructuredData.OverallConfidence)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Empty(t, result.Errors)
	assert.NotNil(t, result.Errors)
}

func TestOrchestrator_Process_DefaultsDocumentTypeAndLanguage(t *testing.T) {
	path := createTestDocument(t, "claim.png")

	var gotLanguage string
	extractor := &mockExtractor{
		extractFunc: func(ctx context.Context, page models.RasterPage, language string) (models.PageResult, error) {
			gotLanguage = language
			return models.PageResult{Index: page.Index, Text: "x", Confidence: 1}, nil
		},
	}
	var gotSchema models.FieldSchema
	validator := &mockValidator{
		validateFunc: func(ctx context.Context, rawText string, schema models.FieldSchema) models.ValidationResult {
			gotSchema = schema
			return models.ValidationResult{Fields: map[string]models.FieldValue{}}
		},
	}

	orch := newTestOrchestrator(singlePageSplitter(path), extractor, validator)
	result := orch.Process(context.Background(), path, "", "")

	assert.True(t, result.Success)
	assert.Equal(t, "eng", gotLanguage)
	assert.Equal(t, ocr.DocTypeClaimForm, gotSchema.DocumentType)
}

func TestOrchestrator_Process_DocumentNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.pdf")

	orch := newTestOrchestrator(&mockSplitter{}, &mockExtractor{}, &mockValidator{})
	result := orch.Process(context.Background(), missing, "claim_form", "eng")

	assert.False(t, result.Success)
	assert.Nil(t, result.RawText)
	assert.Nil(t, result.StructuredData)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, fmt.Sprintf("Document not found: %s", missing), result.Errors[0])
}

func TestOrchestrator_Process_DirectoryIsNotADocument(t *testing.T) {
	dir := t.TempDir()

	orch := newTestOrchestrator(&mockSplitter{}, &mockExtractor{}, &mockValidator{})
	result := orch.Process(context.Background(), dir, "", "")

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Document not found")
}

func TestOrchestrator_Process_UnsupportedFormat(t *testing.T) {
	path := createTestDocument(t, "claim.docx")

	splitter := &mockSplitter{
		splitFunc: func(ctx context.Context, p string) ([]models.RasterPage, func(), error) {
			return nil, func() {}, &ocr.UnsupportedFormatError{Extension: ".docx"}
		},
	}

	orch := newTestOrchestrator(splitter, &mockExtractor{}, &mockValidator{})
	result := orch.Process(context.Background(), path, "", "")

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Unsupported file type: .docx", result.Errors[0])
}

func TestOrchestrator_Process_EngineFailureFailsDocument(t *testing.T) {
	path := createTestDocument(t, "claim.pdf")

	splitter := &mockSplitter{
		splitFunc: func(ctx context.Context, p string) ([]models.RasterPage, func(), error) {
			return []models.RasterPage{
				{Index: 0, Path: "p0.png"},
				{Index: 1, Path: "p1.png"},
				{Index: 2, Path: "p2.png"},
			}, func() {}, nil
		},
	}
	extractor := &mockExtractor{
		extractFunc: func(ctx context.Context, page models.RasterPage, language string) (models.PageResult, error) {
			if page.Index == 1 {
				return models.PageResult{}, &ocr.EngineError{Err: errors.New("tesseract crashed")}
			}
			return models.PageResult{Index: page.Index, Text: "ok", Confidence: 0.9}, nil
		},
	}
	validator := &mockValidator{
		validateFunc: func(ctx context.Context, rawText string, schema models.FieldSchema) models.ValidationResult {
			t.Fatal("validator must not run when extraction fails")
			return models.ValidationResult{}
		},
	}

	orch := newTestOrchestrator(splitter, extractor, validator)
	result := orch.Process(context.Background(), path, "", "")

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "OCR extraction failed")
	assert.Contains(t, result.Errors[0], "page 1")
	assert.Contains(t, result.Errors[0], "tesseract crashed")
}

func TestOrchestrator_Process_MultiPageAggregation(t *testing.T) {
	path := createTestDocument(t, "claim.pdf")

	splitter := &mockSplitter{
		splitFunc: func(ctx context.Context, p string) ([]models.RasterPage, func(), error) {
			return []models.RasterPage{
				{Index: 0, Path: "p0.png"},
				{Index: 1, Path: "p1.png"},
			}, func() {}, nil
		},
	}
	extractor := &mockExtractor{
		extractFunc: func(ctx context.Context, page models.RasterPage, language string) (models.PageResult, error) {
			texts := []string{"first page", "second page"}
			confs := []float64{0.8, 0.6}
			return models.PageResult{Index: page.Index, Text: texts[page.Index], Confidence: confs[page.Index]}, nil
		},
	}

	var gotRawText string
	validator := &mockValidator{
		validateFunc: func(ctx context.Context, rawText string, schema models.FieldSchema) models.ValidationResult {
			gotRawText = rawText
			return models.ValidationResult{Fields: map[string]models.FieldValue{}}
		},
	}

	orch := newTestOrchestrator(splitter, extractor, validator)
	result := orch.Process(context.Background(), path, "", "")

	require.True(t, result.Success)
	assert.Equal(t, "first page"+ocr.PageBreakSeparator+"second page", gotRawText)
	assert.InDelta(t, 0.7, result.Confidence, 0.001)
}

func TestOrchestrator_Process_ReleaseCalledOnFailure(t *testing.T) {
	path := createTestDocument(t, "claim.pdf")

	released := false
	splitter := &mockSplitter{
		splitFunc: func(ctx context.Context, p string) ([]models.RasterPage, func(), error) {
			return []models.RasterPage{{Index: 0, Path: "p0.png"}}, func() { released = true }, nil
		},
	}
	extractor := &mockExtractor{
		extractFunc: func(ctx context.Context, page models.RasterPage, language string) (models.PageResult, error) {
			return models.PageResult{}, &ocr.EngineError{Err: errors.New("boom")}
		},
	}

	orch := newTestOrchestrator(splitter, extractor, &mockValidator{})
	result := orch.Process(context.Background(), path, "", "")

	assert.False(t, result.Success)
	assert.True(t, released, "staged pages must be released after extraction fails")
}

func TestOrchestrator_Process_PanicRecovered(t *testing.T) {
	path := createTestDocument(t, "claim.png")

	validator := &mockValidator{
		validateFunc: func(ctx context.Context, rawText string, schema models.FieldSchema) models.ValidationResult {
			panic("validator exploded")
		},
	}

	orch := newTestOrchestrator(singlePageSplitter(path), &mockExtractor{}, validator)
	result := orch.Process(context.Background(), path, "", "")

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "internal fault")
	assert.Contains(t, result.Errors[0], "validator exploded")
}
