package ocr

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var (
	ErrNoLanguages         = errors.New("no OCR languages selected")
	ErrUnsupportedLanguage = errors.New("unsupported OCR language")
)

// tesseract traineddata names that are not plain ISO 639-3 codes. The ch_*
// forms are what the upload form historically sent for Chinese.
var tesseractOverrides = map[string]string{
	"ch_sim":  "chi_sim",
	"ch_tra":  "chi_tra",
	"zh":      "chi_sim",
	"zh-hans": "chi_sim",
	"zh-cn":   "chi_sim",
	"zh-hant": "chi_tra",
	"zh-tw":   "chi_tra",
	"sr":      "srp",
	"sr-latn": "srp_latn",
	"az-cyrl": "aze_cyrl",
	"uz-cyrl": "uzb_cyrl",
	"ms":      "msa",
	"fa":      "fas",
	"sq":      "sqi",
}

// TesseractCode maps a form language code ("en", "fr", "ch_sim") to the
// name of the tesseract traineddata file ("eng", "fra", "chi_sim").
func TesseractCode(code string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(code))
	if key == "" {
		return "", fmt.Errorf("%w: empty code", ErrUnsupportedLanguage)
	}
	if t, ok := tesseractOverrides[key]; ok {
		return t, nil
	}
	base, err := language.ParseBase(key)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	return base.ISO3(), nil
}

// TesseractCodes maps every code of a selection, failing on the first one
// that cannot be mapped.
func TesseractCodes(codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, ErrNoLanguages
	}
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		t, err := TesseractCode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// DisplayName returns the English name of a language code, falling back to
// the code itself. Used in prompts and on the upload form.
func DisplayName(code string) string {
	if t, ok := tesseractOverrides[strings.ToLower(code)]; ok && strings.HasPrefix(t, "chi_") {
		if t == "chi_tra" {
			return "Chinese (Traditional)"
		}
		return "Chinese (Simplified)"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, _ := tag.Base()
	name := display.English.Languages().Name(base)
	if name == "" {
		return code
	}
	return name
}
