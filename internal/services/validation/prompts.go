package validation

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
)

// ocrValidationPromptFile is the override filename looked up in the
// prompts directory (typically a mounted ConfigMap).
const ocrValidationPromptFile = "ocr-validation.txt"

const defaultOCRValidationPrompt = `You are an expert at validating and structuring insurance claim documents.

Given the following OCR extracted text, extract and validate these fields: {expected_fields}

OCR Text:
` + "```" + `
{ocr_text}
` + "```" + `

Instructions:
1. Extract each requested field accurately
2. Correct obvious OCR errors (e.g., "0" vs "O", "1" vs "l")
3. Standardize formats (dates, amounts, names)
4. Flag any uncertain or missing fields

Return a JSON object with this structure:
{
    "fields": {
        "field_name": {
            "value": "extracted value or null",
            "confidence": 0.0-1.0,
            "raw_value": "original OCR text",
            "issues": ["list of any issues or corrections made"]
        }
    },
    "overall_confidence": 0.0-1.0,
    "requires_manual_review": boolean,
    "notes": "any additional observations"
}`

// PromptStore resolves prompt templates by name: a file in the configured
// directory overrides the compiled-in default.
type PromptStore struct {
	dir    string
	logger arbor.ILogger
}

// NewPromptStore creates a prompt store reading overrides from dir.
// An empty dir serves compiled-in defaults only.
func NewPromptStore(dir string, logger arbor.ILogger) *PromptStore {
	return &PromptStore{dir: dir, logger: logger}
}

// OCRValidationPrompt renders the validation prompt for the given raw text
// and expected field names.
func (s *PromptStore) OCRValidationPrompt(rawText string, fields []string) string {
	template := s.load(ocrValidationPromptFile, defaultOCRValidationPrompt)

	return strings.NewReplacer(
		"{expected_fields}", strings.Join(fields, ", "),
		"{ocr_text}", rawText,
	).Replace(template)
}

// load returns the template file's content or the fallback when the file
// is absent or unreadable.
func (s *PromptStore) load(filename, fallback string) string {
	if s.dir == "" {
		return fallback
	}

	path := filepath.Join(s.dir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", path).Msg("Failed to load prompt template, using default")
		}
		return fallback
	}

	return string(data)
}
