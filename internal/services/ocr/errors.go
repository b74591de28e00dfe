package ocr

import "fmt"

// UnsupportedFormatError reports a file extension no splitter route accepts.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.Extension)
}

// EngineError wraps a failure raised by the underlying OCR engine.
// The orchestrator treats it as a document-level failure.
type EngineError struct {
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("ocr engine failure: %v", e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
