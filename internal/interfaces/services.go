package interfaces

import (
	"context"

	"github.com/claimlens/claimlens/internal/models"
)

// PageExtractor runs an OCR pass over a single raster page.
type PageExtractor interface {
	ExtractPage(ctx context.Context, page models.RasterPage, language string) (models.PageResult, error)
}

// DocumentSplitter turns a document file into an ordered sequence of
// raster pages. The returned release func removes any transient staging
// produced while rendering pages and must be called once the pages have
// been consumed, on every exit path.
type DocumentSplitter interface {
	Split(ctx context.Context, path string) (pages []models.RasterPage, release func(), err error)
}

// Validator transforms raw OCR text into a validated structured object
// via the remote inference endpoint. Implementations never fail the
// request: degraded results are expressed through the returned
// ValidationResult, not an error.
type Validator interface {
	Validate(ctx context.Context, rawText string, schema models.FieldSchema) models.ValidationResult
}

// Orchestrator runs the full document pipeline and normalizes every
// lower-layer failure into the uniform result envelope.
type Orchestrator interface {
	Process(ctx context.Context, documentPath, documentType, language string) models.PipelineResult
}

// CommandRunner executes an external command. Lets probes stub the OCR
// engine binary in tests.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}
