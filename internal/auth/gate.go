// ABOUTME: Session gate that decides whether each request may reach a handler
// ABOUTME: Runs an ordered chain of stages: public-path classifier, then session check

package auth

import (
	"log/slog"
	"net/http"

	"github.com/2389/typing-console/internal/envelope"
	"github.com/2389/typing-console/internal/session"
)

// LoginPath is where page requests without a session are sent.
const LoginPath = "/login"

// Decision is the gate's verdict for one request.
type Decision int

const (
	// Allow lets the request through.
	Allow Decision = iota
	// RedirectToLogin sends a page request to the login form.
	RedirectToLogin
	// Reject answers an API request with 401.
	Reject
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Verdict is what a single stage tells the chain.
type Verdict int

const (
	// Continue passes the request to the next stage.
	Continue Verdict = iota
	// Admit skips the remaining stages and runs the handler.
	Admit
	// Halt stops the chain; the stage has already written a response.
	Halt
)

// Stage is one link in the gate's chain of responsibility.
type Stage func(w http.ResponseWriter, r *http.Request, jar *session.Jar) Verdict

// PublicStage admits any request whose path the classifier marks public.
func PublicStage(c *Classifier) Stage {
	return func(w http.ResponseWriter, r *http.Request, jar *session.Jar) Verdict {
		if c.IsPublic(r.URL.Path) {
			return Admit
		}
		return Continue
	}
}

// SessionStage requires a non-empty access cookie. Without one it redirects
// page requests to the login form and rejects API requests with 401.
func SessionStage() Stage {
	return func(w http.ResponseWriter, r *http.Request, jar *session.Jar) Verdict {
		switch decide(false, jar.HasSession(), r.URL.Path) {
		case RedirectToLogin:
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return Halt
		case Reject:
			envelope.Error(w, http.StatusUnauthorized, "Authentication required")
			return Halt
		default:
			return Continue
		}
	}
}

// Gate runs its stages in order in front of a handler.
type Gate struct {
	classifier *Classifier
	stages     []Stage
	cookies    session.Options
	logger     *slog.Logger
}

// NewGate builds the standard chain: classifier, then session check.
func NewGate(classifier *Classifier, cookies session.Options, logger *slog.Logger) *Gate {
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Gate{
		classifier: classifier,
		stages:     []Stage{PublicStage(classifier), SessionStage()},
		cookies:    cookies,
		logger:     logger.With("component", "gate"),
	}
}

// Authorize classifies a request from its path and cookies without writing
// anything. It checks cookie presence only.
func (g *Gate) Authorize(r *http.Request) Decision {
	jar := session.NewJar(nil, r, g.cookies)
	return decide(g.classifier.IsPublic(r.URL.Path), jar.HasSession(), r.URL.Path)
}

// Wrap puts the gate in front of next.
func (g *Gate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jar := session.NewJar(w, r, g.cookies)
		for _, stage := range g.stages {
			switch stage(w, r, jar) {
			case Admit:
				next.ServeHTTP(w, r)
				return
			case Halt:
				g.logger.Debug("request stopped at gate", "method", r.Method, "path", r.URL.Path)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func decide(public, hasSession bool, path string) Decision {
	if public || hasSession {
		return Allow
	}
	if IsAPIPath(path) {
		return Reject
	}
	return RedirectToLogin
}
