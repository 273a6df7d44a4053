package pipeline

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/models"
)

const (
	// FallbackLanguage replaces a detected language that failed or fell
	// outside the caller's set. It is forced even when the set lacks it.
	FallbackLanguage = "en"
	// DefaultDestLanguage is used when the caller leaves dest_lang empty.
	DefaultDestLanguage = "en"
	// TranslationErrorText stands in for the translated text on a soft failure.
	TranslationErrorText = "Translation Error"
)

var errEmptyText = errors.New("no text recognized")

// OCREngine builds a reader configured for a set of languages.
type OCREngine interface {
	NewReader(languages models.LanguageSet) (OCRReader, error)
}

// OCRReader returns the text fragments recognized in an image, in the
// engine's own order.
type OCRReader interface {
	ReadText(ctx context.Context, imagePath string) ([]string, error)
	Close() error
}

type LanguageDetector interface {
	Detect(text string) (string, error)
}

type Translator interface {
	Translate(ctx context.Context, text, src, dest string) (string, error)
}

// Pipeline runs OCR, language detection and translation in sequence.
type Pipeline struct {
	ocr        OCREngine
	detector   LanguageDetector
	translator Translator
}

func New(ocr OCREngine, detector LanguageDetector, translator Translator) *Pipeline {
	return &Pipeline{
		ocr:        ocr,
		detector:   detector,
		translator: translator,
	}
}

// ProcessUpload turns the image at imagePath into a PipelineResult. A non-nil
// error is always a *Failure with a hard kind.
func (p *Pipeline) ProcessUpload(ctx context.Context, imagePath string, languages models.LanguageSet, destLang string) (*models.PipelineResult, error) {
	if destLang == "" {
		destLang = DefaultDestLanguage
	}
	log.Printf("selected languages: %v", languages)

	reader, err := p.ocr.NewReader(languages)
	if err != nil {
		log.Printf("failed to initialize OCR with languages %v: %v", languages, err)
		return nil, &Failure{Kind: OCRInitFailed, Err: err}
	}
	defer reader.Close()

	text := p.extractText(ctx, reader, imagePath)
	if text == "" {
		return nil, &Failure{Kind: ExtractionEmpty, Err: errEmptyText}
	}

	detected, fallback := p.detectLanguage(text, languages)

	result := &models.PipelineResult{
		ExtractedText:       text,
		DetectedLanguage:    detected,
		DestinationLanguage: destLang,
		DetectionFallback:   fallback,
	}
	translated, err := p.translator.Translate(ctx, text, detected, destLang)
	if err != nil {
		log.Printf("failed to translate text %s->%s: %v", detected, destLang, err)
		result.TranslatedText = TranslationErrorText
		result.TranslationErr = &Failure{Kind: TranslationFailed, Err: err}
		return result, nil
	}
	log.Printf("translated text: %s", translated)
	result.TranslatedText = translated
	return result, nil
}

// extractText never fails: an engine error counts as an empty extraction.
func (p *Pipeline) extractText(ctx context.Context, reader OCRReader, imagePath string) string {
	fragments, err := reader.ReadText(ctx, imagePath)
	if err != nil {
		log.Printf("failed to extract text from image %s: %v", imagePath, err)
		return ""
	}
	text := strings.Join(fragments, " ")
	log.Printf("extracted text: %s", text)
	return text
}

func (p *Pipeline) detectLanguage(text string, languages models.LanguageSet) (string, bool) {
	detected, err := p.detector.Detect(text)
	if err != nil {
		log.Printf("failed to detect language: %v", err)
		detected = FallbackLanguage
	} else {
		log.Printf("detected language: %s", detected)
	}
	if !languages.Contains(detected) {
		return FallbackLanguage, true
	}
	return detected, err != nil
}
