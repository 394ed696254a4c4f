package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates(markdown func(string) template.HTML) (*template.Template, error) {
	funcs := template.FuncMap{
		"markdown": markdown,
		"base":     filepath.Base,
		"orDash": func(s string) string {
			if strings.TrimSpace(s) == "" {
				return "Not specified"
			}
			return s
		},
	}
	return template.New("ui").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// markdown renders model prose (summaries, descriptions) as HTML. Raw HTML in the
// input is not passed through.
func (s *Server) markdown(in string) template.HTML {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(in), &buf); err != nil {
		s.logger.Warn("server.markdown.failed", "error", err)
		return template.HTML(template.HTMLEscapeString(in))
	}
	return template.HTML(buf.String())
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("server.render.failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
