package cmd

import (
	"context"
	"time"

	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/config"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/langdetect"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/ocr/ollama"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/ocr/tesseract"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/pipeline"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/translate"
)

// buildPipeline wires the configured OCR engine, detector and translator.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, error) {
	engine, err := newOCREngine(cfg.OCR)
	if err != nil {
		return nil, err
	}
	translator, err := translate.New(ctx, translate.Options{
		Provider: cfg.Translator.Provider,
		APIKey:   cfg.Translator.APIKey,
		URL:      cfg.Translator.URL,
		Timeout:  time.Duration(cfg.Translator.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return pipeline.New(engine, langdetect.NewDetector(cfg.Detector.RequireReliable), translator), nil
}

func newOCREngine(c config.OCR) (pipeline.OCREngine, error) {
	if c.Engine == "ollama" {
		return ollama.NewEngine(c.Ollama.URL, c.Ollama.Model, c.Ollama.MaxDim,
			time.Duration(c.Ollama.TimeoutSeconds)*time.Second)
	}
	return tesseract.NewEngine(tesseract.Options{
		TessdataPrefix: c.TessdataPrefix,
		Preprocess:     c.Preprocess,
		MinWidth:       c.MinWidth,
	}), nil
}
