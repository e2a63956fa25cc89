// ABOUTME: Template rendering functions for the admin console
// ABOUTME: Loads page templates from the embedded filesystem and renders them

package webadmin

import (
	"html/template"
	"net/http"
)

// Brand is the product name shown in page titles and headers.
const Brand = "TezYoz Admin"

// languageOption is one entry of a language <select>.
type languageOption struct {
	Value string
	Label string
}

type loginData struct {
	Title string
	Brand string
}

type dashboardData struct {
	Title          string
	Brand          string
	Email          string
	ExpiresAt      string
	PageSize       int
	MaxChars       int
	Languages      []languageOption
	LanguageLabels map[string]string
}

type helpData struct {
	Title   string
	Brand   string
	Topics  []helpTopic
	Content template.HTML
}

// render executes the named page inside base.html.
func (a *Admin) render(w http.ResponseWriter, page string, data any) {
	tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+page+".html")
	if err != nil {
		a.logger.Error("failed to parse template", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		a.logger.Error("failed to render page", "page", page, "error", err)
	}
}
