package rendering

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/jonathan/hash-resume/internal/types"
)

var latexFuncs = template.FuncMap{
	"escape":      EscapeLaTeX,
	"escapeLines": EscapeLaTeXLines,
}

// RenderLaTeX renders doc with the built-in LaTeX template.
func RenderLaTeX(doc types.ResumeDocument) (string, error) {
	content, err := templateFiles.ReadFile("templates/resume.tex.tmpl")
	if err != nil {
		return "", &TemplateError{Message: "failed to read built-in LaTeX template", Cause: err}
	}
	tmpl, err := parseLaTeX(string(content))
	if err != nil {
		return "", err
	}
	return executeLaTeX(tmpl, doc)
}

// RenderLaTeXFile renders doc with the LaTeX template at templatePath.
// Templates receive a View and may use the escape and escapeLines functions.
func RenderLaTeXFile(doc types.ResumeDocument, templatePath string) (string, error) {
	tmpl, err := parseTemplate(templatePath)
	if err != nil {
		return "", err
	}
	return executeLaTeX(tmpl, doc)
}

// parseTemplate reads and parses a LaTeX template file
func parseTemplate(templatePath string) (*template.Template, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", templatePath),
				Cause:   err,
			}
		}
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", templatePath),
			Cause:   err,
		}
	}
	return parseLaTeX(string(content))
}

func parseLaTeX(content string) (*template.Template, error) {
	// LaTeX uses braces heavily, so actions are delimited with << >>.
	tmpl, err := template.New("resume").Delims("<<", ">>").Funcs(latexFuncs).Parse(content)
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}
	return tmpl, nil
}

func executeLaTeX(tmpl *template.Template, doc types.ResumeDocument) (string, error) {
	var result strings.Builder
	if err := tmpl.Execute(&result, BuildView(doc)); err != nil {
		return "", &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}
	return result.String(), nil
}
