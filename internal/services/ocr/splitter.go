package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"

	"github.com/claimlens/claimlens/internal/interfaces"
	"github.com/claimlens/claimlens/internal/models"
)

// imageExtensions are the single-page raster types routed straight to the
// extractor without staging.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tiff": true,
	".bmp":  true,
}

// pdfcpu names extracted page images <base>_<pageNr>_<resourceID>.<ext>
var pageImagePattern = regexp.MustCompile(`_(\d+)_[^_.]+\.\w+$`)

// Splitter produces ordered raster pages from a document file.
// PDF pages are staged as image files in a request-scoped temp directory
// that the returned release func removes; single images pass through
// untouched.
type Splitter struct {
	logger  arbor.ILogger
	tempDir string
}

// Compile-time interface assertion
var _ interfaces.DocumentSplitter = (*Splitter)(nil)

// NewSplitter creates a new document splitter
func NewSplitter(logger arbor.ILogger) *Splitter {
	tempDir := filepath.Join(os.TempDir(), "claimlens-pages")
	os.MkdirAll(tempDir, 0755)

	return &Splitter{
		logger:  logger,
		tempDir: tempDir,
	}
}

// Split returns the document's pages in ascending page order starting at
// index 0. The release func must be called once extraction of all pages
// has completed, regardless of extraction success or failure.
func (s *Splitter) Split(ctx context.Context, path string) ([]models.RasterPage, func(), error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case ext == ".pdf":
		return s.splitPDF(ctx, path)
	case imageExtensions[ext]:
		page := models.RasterPage{
			Index:      0,
			Path:       path,
			DocumentID: filepath.Base(path),
		}
		return []models.RasterPage{page}, func() {}, nil
	default:
		return nil, func() {}, &UnsupportedFormatError{Extension: ext}
	}
}

// splitPDF stages each page's scanned image into a temp directory and maps
// the staged files back to pages by the page number encoded in their
// filenames.
func (s *Splitter) splitPDF(ctx context.Context, path string) ([]models.RasterPage, func(), error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to read PDF %s: %w", filepath.Base(path), err)
	}
	pageCount := pdfCtx.PageCount

	stagingDir, err := os.MkdirTemp(s.tempDir, "doc_*")
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to create staging directory: %w", err)
	}
	release := func() {
		if err := os.RemoveAll(stagingDir); err != nil {
			s.logger.Warn().Err(err).Str("dir", stagingDir).Msg("Failed to remove page staging directory")
		}
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractImagesFile(path, stagingDir, nil, conf); err != nil {
		release()
		return nil, func() {}, fmt.Errorf("failed to render PDF pages: %w", err)
	}

	select {
	case <-ctx.Done():
		release()
		return nil, func() {}, ctx.Err()
	default:
	}

	pageFiles, err := indexPageImages(stagingDir)
	if err != nil {
		release()
		return nil, func() {}, err
	}

	docID := filepath.Base(path)
	pages := make([]models.RasterPage, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		file, ok := pageFiles[pageNum]
		if !ok {
			continue
		}
		pages = append(pages, models.RasterPage{
			Index:      len(pages),
			Path:       file,
			DocumentID: docID,
		})
	}

	if len(pages) == 0 {
		release()
		return nil, func() {}, fmt.Errorf("no page images found in PDF %s", docID)
	}

	s.logger.Debug().
		Str("document", docID).
		Int("pages", len(pages)).
		Msg("Split PDF into raster pages")

	return pages, release, nil
}

// indexPageImages maps page numbers to staged image files. When a page
// carries more than one image the first one encountered wins; scanned
// claim documents render one image per page.
func indexPageImages(dir string) (map[int]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read staging directory: %w", err)
	}

	pageFiles := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := pageImagePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		pageNum, err := strconv.Atoi(m[1])
		if err != nil || pageNum < 1 {
			continue
		}
		if _, exists := pageFiles[pageNum]; !exists {
			pageFiles[pageNum] = filepath.Join(dir, entry.Name())
		}
	}

	return pageFiles, nil
}
