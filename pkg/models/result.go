package models

// PipelineResult is what one pipeline run produces for the boundary to render.
type PipelineResult struct {
	ExtractedText       string `json:"extracted_text"`
	DetectedLanguage    string `json:"detected_language"`
	TranslatedText      string `json:"translated_text"`
	DestinationLanguage string `json:"dest_lang"`

	//true when the detector failed or its answer was outside the selected set
	DetectionFallback bool `json:"detection_fallback"`
	//set when translation failed and TranslatedText holds the error sentinel
	TranslationErr error `json:"-"`
}

// Degraded reports whether the translation step soft-failed.
func (r *PipelineResult) Degraded() bool {
	return r.TranslationErr != nil
}
