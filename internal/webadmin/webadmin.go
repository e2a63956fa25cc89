// ABOUTME: Admin web UI package for managing typing-test texts
// ABOUTME: Serves the login page, the texts dashboard, help pages, and static assets

package webadmin

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/2389/typing-console/internal/session"
	"github.com/2389/typing-console/internal/upstream"
)

const (
	// DashboardPageSize is how many texts the dashboard requests per page.
	DashboardPageSize = 50

	// MaxTextChars is the longest text the create dialog accepts.
	MaxTextChars = 10000
)

// languageLabels are the display names of each upstream language.
var languageLabels = map[upstream.Language]string{
	upstream.LanguageUzbek:   "O'zbek",
	upstream.LanguageRussian: "Русский",
	upstream.LanguageEnglish: "English",
	upstream.LanguageKrill:   "Ўзбек (Кирилл)",
}

// Config holds admin UI configuration
type Config struct {
	Cookies session.Options
}

// Admin serves the console's HTML pages. It holds no per-user state; all
// data is fetched by the browser through the /api endpoints.
type Admin struct {
	cookies session.Options
	logger  *slog.Logger
}

// New creates a new Admin handler
func New(cfg Config, logger *slog.Logger) *Admin {
	return &Admin{
		cookies: cfg.Cookies,
		logger:  logger.With("component", "webadmin"),
	}
}

// RegisterRoutes registers the page routes on the given mux. Access control
// is the session gate's job; only the login page looks at cookies. Static
// assets are mounted separately via StaticHandler, outside the gate.
func (a *Admin) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /login", a.cookies.Handle(a.handleLoginPage))
	mux.HandleFunc("GET /{$}", a.cookies.Handle(a.handleDashboard))
	mux.HandleFunc("GET /help", a.handleHelp)

	a.logger.Debug("admin routes registered")
}

// StaticHandler serves the embedded CSS and JS. Mount it at /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

// handleLoginPage renders the login page
func (a *Admin) handleLoginPage(w http.ResponseWriter, r *http.Request, jar *session.Jar) {
	if jar.HasSession() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	a.render(w, "login", loginData{Title: "Login", Brand: Brand})
}

// handleDashboard renders the texts dashboard
func (a *Admin) handleDashboard(w http.ResponseWriter, r *http.Request, jar *session.Jar) {
	data := dashboardData{
		Title:          "Texts",
		Brand:          Brand,
		PageSize:       DashboardPageSize,
		MaxChars:       MaxTextChars,
		Languages:      languageOptions(),
		LanguageLabels: make(map[string]string, len(languageLabels)),
	}
	for lang, label := range languageLabels {
		data.LanguageLabels[string(lang)] = label
	}

	if claims, ok := session.Peek(jar.AccessToken()); ok {
		data.Email = claims.Email
		if !claims.ExpiresAt.IsZero() {
			data.ExpiresAt = claims.ExpiresAt.Local().Format(time.DateTime)
		}
	}

	a.render(w, "dashboard", data)
}

func languageOptions() []languageOption {
	opts := make([]languageOption, 0, len(upstream.Languages))
	for _, l := range upstream.Languages {
		opts = append(opts, languageOption{Value: string(l), Label: languageLabels[l]})
	}
	return opts
}
