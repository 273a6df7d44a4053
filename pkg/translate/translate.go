package translate

import (
	"context"
	"fmt"
	"time"
)

const (
	ProviderGoogle         = "google"
	ProviderLibreTranslate = "libretranslate"
)

type Options struct {
	Provider string
	APIKey   string
	//LibreTranslate only
	URL     string
	Timeout time.Duration
}

// Translator translates plain text between two language codes.
type Translator interface {
	Translate(ctx context.Context, text, src, dest string) (string, error)
}

// New builds the translator named by opts.Provider.
func New(ctx context.Context, opts Options) (Translator, error) {
	switch opts.Provider {
	case ProviderGoogle:
		return NewGoogleTranslator(ctx, opts.APIKey)
	case ProviderLibreTranslate:
		return NewLibreTranslator(opts.URL, opts.APIKey, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown translation provider %q", opts.Provider)
	}
}
