package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LibreTranslator talks to a LibreTranslate compatible /translate endpoint.
type LibreTranslator struct {
	url    string
	apiKey string
	client *http.Client
}

func NewLibreTranslator(baseURL, apiKey string, timeout time.Duration) *LibreTranslator {
	return &LibreTranslator{
		url:    strings.TrimRight(baseURL, "/") + "/translate",
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

func (l *LibreTranslator) Translate(ctx context.Context, text, src, dest string) (string, error) {
	if src == "" {
		src = "auto"
	}
	reqBody, err := json.Marshal(libreRequest{Q: text, Source: src, Target: dest, Format: "text", APIKey: l.apiKey})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	var out libreResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(body, &out) == nil && out.Error != "" {
			return "", fmt.Errorf("API responded with status %d: %s", resp.StatusCode, out.Error)
		}
		return "", fmt.Errorf("API responded with status: %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}
	if out.TranslatedText == "" {
		return "", fmt.Errorf("no translation received")
	}
	return out.TranslatedText, nil
}
