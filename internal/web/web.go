// Package web holds the embedded HTML views.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"microblog/internal/models"
)

//go:embed templates/*.html templates/admin/*.html
var files embed.FS

var templates = template.Must(template.ParseFS(files, "templates/*.html", "templates/admin/*.html"))

// Page is the envelope every view receives.
type Page struct {
	Title   string
	User    *models.User
	Error   string
	Success string
	Data    any
}

// Render writes the named view. Flash messages ride in on the query
// string, so they are read here once for every page.
func Render(w http.ResponseWriter, r *http.Request, name string, p Page) error {
	if p.Error == "" {
		p.Error = r.URL.Query().Get("error")
	}
	if p.Success == "" {
		p.Success = r.URL.Query().Get("success")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return templates.ExecuteTemplate(w, name, p)
}
