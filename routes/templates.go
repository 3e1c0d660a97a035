package routes

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/encuestapp/sist-evaluacion/httpx"
)

//go:embed templates
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// page carries the fields every template shares.
type page struct {
	Flash string
}

func renderHTML(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := templates.ExecuteTemplate(w, name, data)
	if err != nil {
		httpx.LogInternalError(w, "render."+name, err)
	}
}
