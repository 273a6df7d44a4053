package models

import "strings"

// LanguageSet is the caller's selection of language codes. It configures the
// OCR engine and bounds the detected language. Order is kept, the first code
// is the primary OCR language.
type LanguageSet []string

// NewLanguageSet trims the codes, drops blanks and duplicates.
func NewLanguageSet(codes ...string) LanguageSet {
	set := make(LanguageSet, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		set = append(set, code)
	}
	return set
}

func (s LanguageSet) Contains(code string) bool {
	for _, c := range s {
		if c == code {
			return true
		}
	}
	return false
}

func (s LanguageSet) Codes() []string {
	return append([]string(nil), s...)
}
