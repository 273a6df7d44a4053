package pipeline

import "fmt"

// FailureKind tags which step of the pipeline failed.
type FailureKind int

const (
	OCRInitFailed FailureKind = iota + 1
	ExtractionEmpty
	TranslationFailed
)

func (k FailureKind) String() string {
	switch k {
	case OCRInitFailed:
		return "ocr_init"
	case ExtractionEmpty:
		return "extraction"
	case TranslationFailed:
		return "translation"
	default:
		return "unknown"
	}
}

// Hard reports whether a failure of this kind aborts the pipeline.
// TranslationFailed only degrades the result.
func (k FailureKind) Hard() bool {
	return k == OCRInitFailed || k == ExtractionEmpty
}

// Failure is returned by ProcessUpload for hard aborts and attached to the
// result for the soft translation failure.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s failed: %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("%s failed", f.Kind)
}

func (f *Failure) Unwrap() error { return f.Err }

// Message is the text shown to the user for this failure.
func (f *Failure) Message() string {
	switch f.Kind {
	case OCRInitFailed:
		return "Error: Failed to initialize the OCR engine. Please check the server logs for more details."
	case ExtractionEmpty:
		return "Error: Failed to extract text from the image."
	case TranslationFailed:
		return TranslationErrorText
	default:
		return "Error: request failed."
	}
}
