package http

import (
	"embed"
	"html/template"
	"io"

	"github.com/aretw0/concord/pkg/coordinator"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/onboarding.html"))

type pageData struct {
	Title string
	View  coordinator.View
}

func renderPage(w io.Writer, view coordinator.View) error {
	return pageTemplate.ExecuteTemplate(w, "onboarding.html", pageData{
		Title: "Onboarding",
		View:  view,
	})
}
