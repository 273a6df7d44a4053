package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/config"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/events"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/models"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/pipeline"
)

type fakeReader struct {
	fragments []string
}

func (r *fakeReader) ReadText(ctx context.Context, imagePath string) ([]string, error) {
	return r.fragments, nil
}

func (r *fakeReader) Close() error { return nil }

type fakeEngine struct {
	fragments []string
	err       error
}

func (e *fakeEngine) NewReader(languages models.LanguageSet) (pipeline.OCRReader, error) {
	if e.err != nil {
		return nil, e.err
	}
	return &fakeReader{fragments: e.fragments}, nil
}

type fakeDetector struct{ lang string }

func (d fakeDetector) Detect(text string) (string, error) { return d.lang, nil }

type fakeTranslator struct{ err error }

func (t fakeTranslator) Translate(ctx context.Context, text, src, dest string) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return strings.ToLower(text), nil
}

type fakeRegistry struct {
	nextID    int
	created   [][]string
	completed []models.TaskStatus
	failures  []string
	imageKeys map[int]string
	requests  map[int]*models.TranslationRequest
}

func (r *fakeRegistry) CreateRequest(ctx context.Context, languages []string, destLang string) (int, error) {
	r.nextID++
	r.created = append(r.created, languages)
	return r.nextID, nil
}

func (r *fakeRegistry) CompleteRequest(ctx context.Context, id int, status models.TaskStatus, detectedLang, failure string) error {
	r.completed = append(r.completed, status)
	r.failures = append(r.failures, failure)
	return nil
}

func (r *fakeRegistry) SetImageKey(ctx context.Context, id int, key string) error {
	if r.imageKeys == nil {
		r.imageKeys = map[int]string{}
	}
	r.imageKeys[id] = key
	return nil
}

func (r *fakeRegistry) GetRequestByID(ctx context.Context, id int) (*models.TranslationRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return req, nil
}

type fakeArchive struct{ images [][]byte }

func (a *fakeArchive) Archive(ctx context.Context, requestID int, image []byte) (string, error) {
	a.images = append(a.images, image)
	return "uploads/key", nil
}

type fakePublisher struct{ events []events.TranslationEvent }

func (p *fakePublisher) Publish(ctx context.Context, event events.TranslationEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeNotifier struct{ sent []string }

func (n *fakeNotifier) SendResult(ctx context.Context, to string, result *models.PipelineResult) error {
	n.sent = append(n.sent, to)
	return nil
}

func testService(t *testing.T, engine *fakeEngine, detector fakeDetector, translator fakeTranslator) *Service {
	t.Helper()
	cfg, err := config.InitConfig("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Upload.Dir = t.TempDir()
	cfg.OCR.Languages = []string{"en", "fr"}
	s := NewService(cfg, pipeline.New(engine, detector, translator))
	s.registerRoutes()
	return s
}

func multipartBody(t *testing.T, fileName string, fileData []byte, fields map[string][]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if fileData != nil {
		part, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(fileData)
	}
	for name, values := range fields {
		for _, v := range values {
			w.WriteField(name, v)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return body, w.FormDataContentType()
}

func do(s *Service, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestIndexRendersForm(t *testing.T) {
	s := testService(t, &fakeEngine{}, fakeDetector{lang: "en"}, fakeTranslator{})
	rec := do(s, http.MethodGet, "/", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`name="file"`, `name="languages[]"`, `value="fr"`, "French", `name="dest_lang"`} {
		if !strings.Contains(body, want) {
			t.Errorf("form missing %s", want)
		}
	}
}

func TestUploadRendersResult(t *testing.T) {
	s := testService(t, &fakeEngine{fragments: []string{"HELLO", "WORLD"}}, fakeDetector{lang: "en"}, fakeTranslator{})
	body, ct := multipartBody(t, "photo.png", []byte("image-bytes"), map[string][]string{
		"languages[]": {"en"},
		"dest_lang":   {"fr"},
	})
	rec := do(s, http.MethodPost, "/", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	page := rec.Body.String()
	for _, want := range []string{"HELLO WORLD", "hello world", "<strong>en</strong>", "N/A", "/static/uploads/uploaded_image.jpg"} {
		if !strings.Contains(page, want) {
			t.Errorf("result page missing %q", want)
		}
	}

	saved, err := os.ReadFile(filepath.Join(s.cfg.Upload.Dir, "uploaded_image.jpg"))
	if err != nil {
		t.Fatalf("upload not saved: %v", err)
	}
	if string(saved) != "image-bytes" {
		t.Errorf("unexpected saved content %q", saved)
	}
}

func TestUploadOverwritesFixedPath(t *testing.T) {
	s := testService(t, &fakeEngine{fragments: []string{"x"}}, fakeDetector{lang: "en"}, fakeTranslator{})
	for _, data := range []string{"first", "second"} {
		body, ct := multipartBody(t, "a.jpg", []byte(data), map[string][]string{"languages[]": {"en"}})
		if rec := do(s, http.MethodPost, "/", body, ct); rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	entries, _ := os.ReadDir(s.cfg.Upload.Dir)
	if len(entries) != 1 {
		t.Fatalf("expected a single upload file, got %d", len(entries))
	}
	saved, _ := os.ReadFile(filepath.Join(s.cfg.Upload.Dir, "uploaded_image.jpg"))
	if string(saved) != "second" {
		t.Errorf("last upload should win, got %q", saved)
	}
}

func TestUploadWithoutFileRedirects(t *testing.T) {
	s := testService(t, &fakeEngine{}, fakeDetector{lang: "en"}, fakeTranslator{})
	body, ct := multipartBody(t, "", nil, map[string][]string{"languages[]": {"en"}})
	rec := do(s, http.MethodPost, "/", body, ct)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q", loc)
	}
}

func TestUploadHardFailures(t *testing.T) {
	cases := []struct {
		name   string
		engine *fakeEngine
		status int
		text   string
	}{
		{"ocr init", &fakeEngine{err: errors.New("no traineddata")}, http.StatusInternalServerError, "Failed to initialize the OCR engine"},
		{"empty extraction", &fakeEngine{}, http.StatusUnprocessableEntity, "Failed to extract text from the image"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := testService(t, tc.engine, fakeDetector{lang: "en"}, fakeTranslator{})
			body, ct := multipartBody(t, "a.jpg", []byte("img"), map[string][]string{"languages[]": {"en"}})
			rec := do(s, http.MethodPost, "/", body, ct)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
				t.Errorf("expected plain text, got %q", rec.Header().Get("Content-Type"))
			}
			if !strings.Contains(rec.Body.String(), tc.text) {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	s := testService(t, &fakeEngine{fragments: []string{"x"}}, fakeDetector{lang: "en"}, fakeTranslator{})
	s.cfg.Upload.MaxSizeMB = 1
	body, ct := multipartBody(t, "a.jpg", bytes.Repeat([]byte("a"), 2<<20), map[string][]string{"languages[]": {"en"}})
	if rec := do(s, http.MethodPost, "/", body, ct); rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestTranslateAPI(t *testing.T) {
	s := testService(t, &fakeEngine{fragments: []string{"BONJOUR"}}, fakeDetector{lang: "es"}, fakeTranslator{err: errors.New("quota")})
	body, ct := multipartBody(t, "a.jpg", []byte("img"), map[string][]string{"languages[]": {"fr"}})
	rec := do(s, http.MethodPost, "/api/v1/translate", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ExtractedText     string `json:"extracted_text"`
		DetectedLanguage  string `json:"detected_language"`
		TranslatedText    string `json:"translated_text"`
		DestLang          string `json:"dest_lang"`
		DetectionFallback bool   `json:"detection_fallback"`
		TranslationError  string `json:"translation_error"`
		ImagePath         string `json:"image_path"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ExtractedText != "BONJOUR" || resp.DetectedLanguage != "en" || !resp.DetectionFallback {
		t.Errorf("unexpected detection result %+v", resp)
	}
	if resp.TranslatedText != pipeline.TranslationErrorText || resp.TranslationError == "" {
		t.Errorf("expected soft translation failure, got %+v", resp)
	}
	if resp.DestLang != "en" || !strings.HasSuffix(resp.ImagePath, "uploaded_image.jpg") {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestTranslateAPIErrors(t *testing.T) {
	s := testService(t, &fakeEngine{}, fakeDetector{lang: "en"}, fakeTranslator{})

	body, ct := multipartBody(t, "", nil, nil)
	if rec := do(s, http.MethodPost, "/api/v1/translate", body, ct); rec.Code != http.StatusBadRequest {
		t.Errorf("missing file status = %d, want 400", rec.Code)
	}

	body, ct = multipartBody(t, "a.jpg", []byte("img"), map[string][]string{"languages[]": {"en"}})
	rec := do(s, http.MethodPost, "/api/v1/translate", body, ct)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp errorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Stage != "extraction" {
		t.Errorf("stage = %q", resp.Stage)
	}
}

func TestSinksReceiveOutcome(t *testing.T) {
	s := testService(t, &fakeEngine{fragments: []string{"HELLO"}}, fakeDetector{lang: "en"}, fakeTranslator{})
	registry := &fakeRegistry{}
	archive := &fakeArchive{}
	publisher := &fakePublisher{}
	notifier := &fakeNotifier{}
	s.RequestDatabase, s.archive, s.publisher, s.notifier = registry, archive, publisher, notifier

	body, ct := multipartBody(t, "a.jpg", []byte("img"), map[string][]string{
		"languages[]": {"en", "fr"},
		"email":       {"user@example.com"},
	})
	if rec := do(s, http.MethodPost, "/", body, ct); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if len(registry.created) != 1 || len(registry.created[0]) != 2 {
		t.Errorf("unexpected registry creates %v", registry.created)
	}
	if len(registry.completed) != 1 || registry.completed[0] != models.TaskCompleted {
		t.Errorf("unexpected registry completion %v", registry.completed)
	}
	if registry.imageKeys[1] != "uploads/key" {
		t.Errorf("image key not stored: %v", registry.imageKeys)
	}
	if len(archive.images) != 1 || string(archive.images[0]) != "img" {
		t.Errorf("unexpected archived images %q", archive.images)
	}
	if len(publisher.events) != 1 || publisher.events[0].RequestID != 1 || publisher.events[0].TranslatedText != "hello" {
		t.Errorf("unexpected events %+v", publisher.events)
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != "user@example.com" {
		t.Errorf("unexpected notifications %v", notifier.sent)
	}
}

func TestSinksRecordFailure(t *testing.T) {
	s := testService(t, &fakeEngine{}, fakeDetector{lang: "en"}, fakeTranslator{})
	registry := &fakeRegistry{}
	notifier := &fakeNotifier{}
	s.RequestDatabase, s.notifier = registry, notifier

	body, ct := multipartBody(t, "a.jpg", []byte("img"), map[string][]string{
		"languages[]": {"en"},
		"email":       {"user@example.com"},
	})
	do(s, http.MethodPost, "/", body, ct)

	if len(registry.completed) != 1 || registry.completed[0] != models.TaskFailed || registry.failures[0] != "extraction" {
		t.Errorf("unexpected registry state %v %v", registry.completed, registry.failures)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("no email expected for a failed run")
	}
}

func TestGetRequestStatus(t *testing.T) {
	s := testService(t, &fakeEngine{}, fakeDetector{lang: "en"}, fakeTranslator{})
	if rec := do(s, http.MethodGet, "/api/v1/request/1", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("disabled registry status = %d, want 404", rec.Code)
	}

	s.RequestDatabase = &fakeRegistry{requests: map[int]*models.TranslationRequest{
		7: {ID: 7, Status: models.TaskDegraded, DestLanguage: "fr"},
	}}
	rec := do(s, http.MethodGet, "/api/v1/request/7", nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"degraded"`) {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec := do(s, http.MethodGet, "/api/v1/request/8", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}
	if rec := do(s, http.MethodGet, "/api/v1/request/abc", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestStaticServesUpload(t *testing.T) {
	s := testService(t, &fakeEngine{}, fakeDetector{lang: "en"}, fakeTranslator{})
	if err := os.WriteFile(filepath.Join(s.cfg.Upload.Dir, "uploaded_image.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := do(s, http.MethodGet, "/static/uploads/uploaded_image.jpg", nil, "")
	if rec.Code != http.StatusOK || rec.Body.String() != "jpeg" {
		t.Fatalf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
}
