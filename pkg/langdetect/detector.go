package langdetect

import (
	"errors"
	"strings"

	"github.com/abadojack/whatlanggo"
)

var ErrUndetermined = errors.New("language could not be determined")

// Detector guesses the language of OCR output and reports it as an
// ISO 639-1 code ("en", "fr").
type Detector struct {
	//treat guesses whatlanggo marks unreliable as undetermined
	RequireReliable bool
}

func NewDetector(requireReliable bool) *Detector {
	return &Detector{RequireReliable: requireReliable}
}

func (d *Detector) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrUndetermined
	}
	info := whatlanggo.Detect(text)
	if info.Lang < 0 {
		return "", ErrUndetermined
	}
	if d.RequireReliable && !info.IsReliable() {
		return "", ErrUndetermined
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return "", ErrUndetermined
	}
	return code, nil
}
