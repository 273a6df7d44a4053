package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/events"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/models"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/ocr"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/pipeline"
)

var (
	errNoFileProvided = errors.New("no file part in the request")
	errEmptyFilename  = errors.New("no file selected")
	errFileTooLarge   = errors.New("uploaded file is too large")
)

// upload is one accepted POST, already written to the fixed upload path.
type upload struct {
	imagePath string
	image     []byte
	languages models.LanguageSet
	destLang  string
	email     string
}

type outcome struct {
	requestID int
	result    *models.PipelineResult
	failure   *pipeline.Failure
}

func (s *Service) Index(c echo.Context) error {
	page := indexPage{
		DefaultDest:  pipeline.DefaultDestLanguage,
		EmailEnabled: s.notifier != nil,
	}
	for _, code := range s.cfg.OCR.Languages {
		page.Languages = append(page.Languages, languageOption{Code: code, Name: ocr.DisplayName(code)})
	}
	return c.Render(http.StatusOK, "index.html", page)
}

// Upload handles the form post and renders the result page. Hard pipeline
// failures are answered with their plain text message.
func (s *Service) Upload(c echo.Context) error {
	up, err := s.receiveUpload(c)
	if err != nil {
		if errors.Is(err, errNoFileProvided) || errors.Is(err, errEmptyFilename) {
			return c.Redirect(http.StatusFound, c.Request().URL.RequestURI())
		}
		if errors.Is(err, errFileTooLarge) {
			return c.String(http.StatusRequestEntityTooLarge, "Error: "+err.Error())
		}
		return err
	}

	out := s.run(c.Request().Context(), up)
	if out.failure != nil {
		return c.String(failureStatus(out.failure), out.failure.Message())
	}

	return c.Render(http.StatusOK, "result.html", resultPage{
		ExtractedText:  out.result.ExtractedText,
		LanguageID:     out.result.DetectedLanguage,
		Confidence:     "N/A",
		TranslatedText: out.result.TranslatedText,
		DestLang:       out.result.DestinationLanguage,
		ImagePath:      up.imagePath,
		ImageURL:       path.Join("/static/uploads", s.cfg.Upload.Filename),
	})
}

type translateResponse struct {
	RequestID int `json:"request_id,omitempty"`
	*models.PipelineResult
	TranslationError string `json:"translation_error,omitempty"`
	ImagePath        string `json:"image_path"`
}

type errorResponse struct {
	Stage string `json:"stage,omitempty"`
	Error string `json:"error"`
}

// Translate is the JSON flavour of Upload.
func (s *Service) Translate(c echo.Context) error {
	up, err := s.receiveUpload(c)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errFileTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		return c.JSON(status, errorResponse{Error: err.Error()})
	}

	out := s.run(c.Request().Context(), up)
	if out.failure != nil {
		return c.JSON(failureStatus(out.failure), errorResponse{Stage: out.failure.Kind.String(), Error: out.failure.Message()})
	}
	resp := translateResponse{
		RequestID:      out.requestID,
		PipelineResult: out.result,
		ImagePath:      up.imagePath,
	}
	if out.result.TranslationErr != nil {
		resp.TranslationError = out.result.TranslationErr.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Service) GetRequestStatus(c echo.Context) error {
	if s.RequestDatabase == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "request registry is disabled"})
	}
	intID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request id"})
	}
	request, err := s.RequestDatabase.GetRequestByID(c.Request().Context(), intID)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: fmt.Sprintf("request %d not found", intID)})
	}
	if err != nil {
		log.Printf("failed to get request %d: %v", intID, err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load request"})
	}
	return c.JSON(http.StatusOK, request)
}

func (s *Service) receiveUpload(c echo.Context) (*upload, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, errNoFileProvided
	}
	if fileHeader.Filename == "" {
		return nil, errEmptyFilename
	}
	maxBytes := int64(s.cfg.Upload.MaxSizeMB) << 20
	if fileHeader.Size > maxBytes {
		return nil, errFileTooLarge
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	//fixed name, every request overwrites the previous upload
	imagePath := filepath.Join(s.cfg.Upload.Dir, s.cfg.Upload.Filename)
	if err := os.WriteFile(imagePath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	form, err := c.FormParams()
	if err != nil {
		return nil, err
	}
	destLang := c.FormValue("dest_lang")
	if destLang == "" {
		destLang = pipeline.DefaultDestLanguage
	}
	return &upload{
		imagePath: imagePath,
		image:     data,
		languages: models.NewLanguageSet(form["languages[]"]...),
		destLang:  destLang,
		email:     c.FormValue("email"),
	}, nil
}

// run executes the pipeline and feeds the outcome to the enabled sinks.
// Sink errors are logged only, they never change the response.
func (s *Service) run(ctx context.Context, up *upload) outcome {
	var out outcome
	if s.RequestDatabase != nil {
		id, err := s.RequestDatabase.CreateRequest(ctx, up.languages.Codes(), up.destLang)
		if err != nil {
			log.Printf("failed to register request: %v", err)
		}
		out.requestID = id
	}

	result, err := s.processor.ProcessUpload(ctx, up.imagePath, up.languages, up.destLang)
	if err != nil {
		var f *pipeline.Failure
		if !errors.As(err, &f) {
			f = &pipeline.Failure{Kind: pipeline.OCRInitFailed, Err: err}
		}
		out.failure = f
	}
	out.result = result

	s.record(ctx, up, out)
	return out
}

func (s *Service) record(ctx context.Context, up *upload, out outcome) {
	status, detected, failure := models.TaskCompleted, "", ""
	switch {
	case out.failure != nil:
		status, failure = models.TaskFailed, out.failure.Kind.String()
	case out.result.Degraded():
		status, detected, failure = models.TaskDegraded, out.result.DetectedLanguage, pipeline.TranslationFailed.String()
	default:
		detected = out.result.DetectedLanguage
	}

	if s.RequestDatabase != nil && out.requestID > 0 {
		if err := s.RequestDatabase.CompleteRequest(ctx, out.requestID, status, detected, failure); err != nil {
			log.Printf("failed to update request %d: %v", out.requestID, err)
		}
	}

	if s.archive != nil {
		key, err := s.archive.Archive(ctx, out.requestID, up.image)
		if err != nil {
			log.Printf("failed to archive upload: %v", err)
		} else if s.RequestDatabase != nil && out.requestID > 0 {
			if err := s.RequestDatabase.SetImageKey(ctx, out.requestID, key); err != nil {
				log.Printf("failed to store image key for request %d: %v", out.requestID, err)
			}
		}
	}

	if s.publisher != nil {
		event := events.TranslationEvent{
			RequestID:        out.requestID,
			Status:           string(status),
			Languages:        up.languages.Codes(),
			DetectedLanguage: detected,
			DestLanguage:     up.destLang,
			Failure:          failure,
			OccurredAt:       time.Now().UTC(),
		}
		if out.result != nil {
			event.ExtractedText = out.result.ExtractedText
			event.TranslatedText = out.result.TranslatedText
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("failed to publish result event: %v", err)
		}
	}

	if s.notifier != nil && up.email != "" && out.result != nil {
		if err := s.notifier.SendResult(ctx, up.email, out.result); err != nil {
			log.Printf("failed to send email: %v", err)
		}
	}
}

func failureStatus(f *pipeline.Failure) int {
	switch f.Kind {
	case pipeline.ExtractionEmpty:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
