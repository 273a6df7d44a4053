package service

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

type templateRenderer struct {
	templates *template.Template
}

func newTemplateRenderer() *templateRenderer {
	return &templateRenderer{
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

func (t *templateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

type languageOption struct {
	Code string
	Name string
}

type indexPage struct {
	Languages    []languageOption
	DefaultDest  string
	EmailEnabled bool
}

type resultPage struct {
	ExtractedText  string
	LanguageID     string
	Confidence     string
	TranslatedText string
	DestLang       string
	ImagePath      string
	ImageURL       string
}
