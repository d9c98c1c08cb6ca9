package view

import (
	"fmt"
	"html/template"
	"io"

	"wrapped/internal/core"
	appweb "wrapped/web"
)

const (
	PageTemplate    = "index.html"
	PartialTemplate = "wrapped.html"
)

// Page is the data of the dashboard shell. The shell shows only the loading
// placeholder and pulls the partial from PartialURL.
type Page struct {
	Query      core.Query
	PartialURL string
}

// Renderer executes the embedded dashboard templates.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// RenderPartial writes the dashboard body for m. The heading and the footer
// controls for q are part of the body, so the loading model renders nothing
// but the placeholder.
func (r *Renderer) RenderPartial(w io.Writer, q core.Query, m Model) error {
	return r.templates.ExecuteTemplate(w, PartialTemplate, struct {
		Model
		Query core.Query
	}{m, q})
}

// RenderPage writes the full dashboard shell.
func (r *Renderer) RenderPage(w io.Writer, p Page) error {
	return r.templates.ExecuteTemplate(w, PageTemplate, struct {
		Page
		LoadingText string
	}{p, LoadingText})
}
