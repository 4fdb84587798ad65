package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/shindakun/storefront/internal/models"
	"github.com/shindakun/storefront/internal/web/templates"
)

// TemplateData holds common data passed to templates
type TemplateData struct {
	Session *models.Session
	Login   models.LoginPageData
	Version string
}

var pageNames = []string{"home", "login", "account", "404"}

// templateFuncs returns custom template functions
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Local().Format("Jan 2, 2006 15:04 MST")
		},
	}
}

// parseTemplates builds one template set per page, each with the base
// layout and every partial
func parseTemplates() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs()).ParseFS(templates.FS,
			"layouts/base.html",
			"partials/*.html",
			"pages/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// renderTemplate renders a page inside the base layout
func (h *Handlers) renderTemplate(w http.ResponseWriter, status int, templateName string, data TemplateData) error {
	tmpl, ok := h.pages[templateName]
	if !ok {
		return fmt.Errorf("unknown template %q", templateName)
	}
	data.Version = h.version
	return h.execute(w, status, tmpl, "base", data)
}

// renderPartial renders a partial template (for HTMX)
func (h *Handlers) renderPartial(w http.ResponseWriter, status int, partialName string, data any) error {
	// Every page set carries all partials
	return h.execute(w, status, h.pages["login"], partialName, data)
}

// execute buffers the output so a template error never leaves a half-written page
func (h *Handlers) execute(w http.ResponseWriter, status int, tmpl *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
