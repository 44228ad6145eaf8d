package rendering

import (
	"embed"
	"html/template"
	"strings"

	"github.com/jonathan/hash-resume/internal/types"
)

//go:embed templates/*
var templateFiles embed.FS

// ExportRegionID is the element id wrapping the printable resume.
const ExportRegionID = "resume-preview"

var htmlTemplate = template.Must(template.New("resume.html.tmpl").ParseFS(templateFiles, "templates/resume.html.tmpl"))

// RenderHTML renders doc as a standalone HTML page whose print stylesheet
// hides everything outside the export region.
func RenderHTML(doc types.ResumeDocument) (string, error) {
	var out strings.Builder
	if err := htmlTemplate.Execute(&out, BuildView(doc)); err != nil {
		return "", &TemplateError{Message: "failed to execute HTML template", Cause: err}
	}
	return out.String(), nil
}
