package tesseract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/imageprep"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/models"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/ocr"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/pipeline"
)

type Options struct {
	//directory holding *.traineddata, empty means the tesseract default
	TessdataPrefix string
	//grayscale + upscale before recognition
	Preprocess bool
	MinWidth   int
}

// Engine creates gosseract clients configured for the selected languages.
type Engine struct {
	opts               Options
	clientFactory      func() *gosseract.Client
	availableLanguages func() ([]string, error)
}

func NewEngine(opts Options) *Engine {
	e := &Engine{opts: opts, clientFactory: gosseract.NewClient}
	if opts.TessdataPrefix != "" {
		e.availableLanguages = func() ([]string, error) { return languagesIn(opts.TessdataPrefix) }
	} else {
		e.availableLanguages = gosseract.GetAvailableLanguages
	}
	return e
}

// NewReader fails when a code cannot be mapped or its traineddata is not
// installed, so a bad selection surfaces before any recognition runs.
func (e *Engine) NewReader(languages models.LanguageSet) (pipeline.OCRReader, error) {
	codes, err := ocr.TesseractCodes(languages.Codes())
	if err != nil {
		return nil, err
	}
	available, err := e.availableLanguages()
	if err != nil {
		return nil, fmt.Errorf("failed to list tesseract languages: %w", err)
	}
	installed := make(map[string]bool, len(available))
	for _, a := range available {
		installed[a] = true
	}
	for _, c := range codes {
		if !installed[c] {
			return nil, fmt.Errorf("%w: traineddata %q not installed", ocr.ErrUnsupportedLanguage, c)
		}
	}

	client := e.clientFactory()
	if e.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.opts.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(codes...); err != nil {
		client.Close()
		return nil, fmt.Errorf("set languages: %w", err)
	}
	return &reader{client: client, opts: e.opts}, nil
}

type reader struct {
	client *gosseract.Client
	opts   Options
}

// ReadText returns one fragment per recognized text line.
func (r *reader) ReadText(ctx context.Context, imagePath string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.setImage(imagePath); err != nil {
		return nil, err
	}
	boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}
	fragments := make([]string, 0, len(boxes))
	for _, b := range boxes {
		if w := strings.TrimSpace(b.Word); w != "" {
			fragments = append(fragments, w)
		}
	}
	return fragments, nil
}

func (r *reader) setImage(imagePath string) error {
	if !r.opts.Preprocess {
		if err := r.client.SetImage(imagePath); err != nil {
			return fmt.Errorf("set image: %w", err)
		}
		return nil
	}
	img, err := imageprep.Load(imagePath)
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}
	data, err := imageprep.EncodePNG(imageprep.ForOCR(img, r.opts.MinWidth))
	if err != nil {
		return err
	}
	if err := r.client.SetImageFromBytes(data); err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	return nil
}

func (r *reader) Close() error {
	return r.client.Close()
}

func languagesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var langs []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && filepath.Ext(name) == ".traineddata" {
			langs = append(langs, strings.TrimSuffix(name, ".traineddata"))
		}
	}
	return langs, nil
}
