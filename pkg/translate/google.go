package translate

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleTranslator uses the Cloud Translation v2 API.
type GoogleTranslator struct {
	client *translate.Client
}

func NewGoogleTranslator(ctx context.Context, apiKey string) (*GoogleTranslator, error) {
	var opts []option.ClientOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translate client: %w", err)
	}
	return &GoogleTranslator{client: client}, nil
}

func (g *GoogleTranslator) Translate(ctx context.Context, text, src, dest string) (string, error) {
	target, err := language.Parse(dest)
	if err != nil {
		return "", fmt.Errorf("invalid destination language %q: %w", dest, err)
	}
	opts := &translate.Options{Format: translate.Text}
	if src != "" {
		source, err := language.Parse(src)
		if err != nil {
			return "", fmt.Errorf("invalid source language %q: %w", src, err)
		}
		opts.Source = source
	}
	resp, err := g.client.Translate(ctx, []string{text}, target, opts)
	if err != nil {
		return "", err
	}
	if len(resp) == 0 {
		return "", errors.New("no translation received")
	}
	return resp[0].Text, nil
}

func (g *GoogleTranslator) Close() error {
	return g.client.Close()
}
