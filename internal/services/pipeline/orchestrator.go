package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/claimlens/claimlens/internal/interfaces"
	"github.com/claimlens/claimlens/internal/models"
	"github.com/claimlens/claimlens/internal/services/ocr"
)

// Orchestrator sequences split, per-page extraction, aggregation, and
// validation for one document, and is the single point where every
// lower-layer failure is normalized into the uniform result envelope.
// Nothing escapes Process as a raised fault.
type Orchestrator struct {
	splitter        interfaces.DocumentSplitter
	extractor       interfaces.PageExtractor
	validator       interfaces.Validator
	logger          arbor.ILogger
	defaultLanguage string
	pageWorkers     int
}

// Compile-time interface assertion
var _ interfaces.Orchestrator = (*Orchestrator)(nil)

// NewOrchestrator creates a pipeline orchestrator.
func NewOrchestrator(
	splitter interfaces.DocumentSplitter,
	extractor interfaces.PageExtractor,
	validator interfaces.Validator,
	defaultLanguage string,
	pageWorkers int,
	logger arbor.ILogger,
) *Orchestrator {
	if pageWorkers < 1 {
		pageWorkers = 1
	}
	return &Orchestrator{
		splitter:        splitter,
		extractor:       extractor,
		validator:       validator,
		logger:          logger,
		defaultLanguage: defaultLanguage,
		pageWorkers:     pageWorkers,
	}
}

// Process runs the full pipeline for one document path. Validation
// failures degrade inside the validator; extraction and format failures
// fail the whole document. The result envelope is always well formed.
func (o *Orchestrator) Process(ctx context.Context, documentPath, documentType, language string) (result models.PipelineResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().
				Str("path", documentPath).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Pipeline panic recovered")
			result = models.FailedPipelineResult(fmt.Sprintf("internal fault: %v", r))
		}
	}()

	requestID := uuid.NewString()
	if documentType == "" {
		documentType = ocr.DocTypeClaimForm
	}
	if language == "" {
		language = o.defaultLanguage
	}

	log := o.logger.WithCorrelationId(requestID)
	log.Info().
		Str("path", documentPath).
		Str("document_type", documentType).
		Str("language", language).
		Msg("Processing document")

	info, err := os.Stat(documentPath)
	if err != nil || info.IsDir() {
		msg := fmt.Sprintf("Document not found: %s", documentPath)
		log.Error().Msg(msg)
		return models.FailedPipelineResult(msg)
	}

	doc, err := o.extractDocument(ctx, documentPath, language)
	if err != nil {
		msg := failureMessage(err)
		log.Error().Str("path", documentPath).Msg(msg)
		return models.FailedPipelineResult(msg)
	}

	schema := ocr.ResolveFieldSchema(documentType)
	structured := o.validator.Validate(ctx, doc.Text, schema)

	log.Info().
		Int("pages", doc.PageCount).
		Float64("confidence", doc.Confidence).
		Bool("manual_review", structured.RequiresManualReview).
		Msg("Document processed")

	rawText := doc.Text
	return models.PipelineResult{
		Success:        true,
		RawText:        &rawText,
		StructuredData: &structured,
		Confidence:     doc.Confidence,
		Errors:         []string{},
	}
}

// extractDocument splits the document and extracts each page through a
// bounded worker pool, joining results in page-index order. A failure on
// any page fails the whole document.
func (o *Orchestrator) extractDocument(ctx context.Context, path, language string) (models.DocumentResult, error) {
	pages, release, err := o.splitter.Split(ctx, path)
	if err != nil {
		return models.DocumentResult{}, err
	}
	defer release()

	results := make([]models.PageResult, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.pageWorkers)
	for i, page := range pages {
		g.Go(func() error {
			res, err := o.extractor.ExtractPage(gctx, page, language)
			if err != nil {
				return fmt.Errorf("page %d: %w", page.Index, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.DocumentResult{}, err
	}

	return ocr.AggregatePages(results), nil
}

// failureMessage renders a stage error for the response envelope, keyed
// by error kind.
func failureMessage(err error) string {
	var formatErr *ocr.UnsupportedFormatError
	var engineErr *ocr.EngineError

	switch {
	case errors.As(err, &formatErr):
		return fmt.Sprintf("Unsupported file type: %s", formatErr.Extension)
	case errors.As(err, &engineErr):
		return fmt.Sprintf("OCR extraction failed: %v", err)
	default:
		return err.Error()
	}
}
