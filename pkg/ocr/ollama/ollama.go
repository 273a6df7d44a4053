package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/imageprep"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/models"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/ocr"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/pipeline"
)

// reply the prompt asks for when the image holds no text
const noTextMarker = "NO_TEXT"

type chatClient interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

// Engine transcribes images with a vision model served by Ollama.
type Engine struct {
	client  chatClient
	model   string
	maxDim  int
	timeout time.Duration
}

func NewEngine(ollamaURL, model string, maxDim int, timeout time.Duration) (*Engine, error) {
	parsedURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	//strip any path such as /api/chat, the client adds its own
	baseURL := &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
	}
	return &Engine{
		client:  api.NewClient(baseURL, http.DefaultClient),
		model:   model,
		maxDim:  maxDim,
		timeout: timeout,
	}, nil
}

func (e *Engine) NewReader(languages models.LanguageSet) (pipeline.OCRReader, error) {
	//the model does not need traineddata, the mapping only validates the codes
	if _, err := ocr.TesseractCodes(languages.Codes()); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(languages))
	for _, code := range languages {
		names = append(names, ocr.DisplayName(code))
	}
	return &reader{engine: e, prompt: buildPrompt(names)}, nil
}

func buildPrompt(languageNames []string) string {
	return fmt.Sprintf("Transcribe all text visible in this image exactly as written. "+
		"The text is expected to be in: %s. "+
		"Output only the text, one line of output per line of text in the image, without commentary or translation. "+
		"If the image contains no text, reply with %s.", strings.Join(languageNames, ", "), noTextMarker)
}

type reader struct {
	engine *Engine
	prompt string
}

func (r *reader) ReadText(ctx context.Context, imagePath string) ([]string, error) {
	if r.engine.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.engine.timeout)
		defer cancel()
	}

	img, err := imageprep.Load(imagePath)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	imgBytes, err := imageprep.EncodeJPEG(imageprep.Fit(img, r.engine.maxDim), 90)
	if err != nil {
		return nil, err
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: r.engine.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: r.prompt,
				Images:  []api.ImageData{api.ImageData(imgBytes)},
			},
		},
		Stream:  &streamFalse,
		Options: map[string]any{"temperature": 0},
	}

	var content strings.Builder
	err = r.engine.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat error: %v", err)
	}
	return splitTranscript(content.String()), nil
}

func (r *reader) Close() error { return nil }

// splitTranscript turns the model reply into line fragments, dropping code
// fences, blank lines and the no-text marker.
func splitTranscript(raw string) []string {
	var fragments []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") || line == noTextMarker {
			continue
		}
		fragments = append(fragments, line)
	}
	return fragments
}
