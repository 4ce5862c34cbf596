package http

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"walletnote/internal/core"
	"walletnote/internal/log"
)

var templateFuncs = template.FuncMap{
	"money": func(m core.Money) string { return m.String() },
}

type pageData struct {
	Title string
	User  *core.User
	Data  any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.FromContext(r.Context()).LogError(r.Context(), "Template execution failed", err, log.OpRender, log.ErrorTypeInternal, "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// optionalUser resolves the session without requiring one.
func (s *Server) optionalUser(r *http.Request) *core.User {
	u, err := s.authenticate(r)
	if err != nil {
		return nil
	}
	return &u
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index.html", pageData{Title: "WalletNote", User: s.optionalUser(r)})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.optionalUser(r) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, "login.html", pageData{Title: "Log in"})
}

func (s *Server) handleSignUpPage(w http.ResponseWriter, r *http.Request) {
	if s.optionalUser(r) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, "signup.html", pageData{Title: "Sign up"})
}

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	d, err := s.deps.Reports.Dashboard(r.Context(), user.ID, dashboardRecent)
	if err != nil {
		log.FromContext(r.Context()).LogError(r.Context(), "Dashboard load failed", err, log.OpRead, log.ErrorTypeDatabase)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.render(w, r, "dashboard.html", pageData{Title: "Dashboard", User: &user, Data: d})
}

func (s *Server) handleSettingPage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	settings, err := s.deps.Settings.Get(r.Context(), user.ID)
	if err != nil {
		log.FromContext(r.Context()).LogError(r.Context(), "Settings load failed", err, log.OpRead, log.ErrorTypeDatabase)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.render(w, r, "setting.html", pageData{Title: "Settings", User: &user, Data: settings})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks the database; templates are parsed at startup so a
// running server always has them.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{"templates": "ok"}

	switch {
	case s.deps.DB == nil:
		checks["database"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	default:
		if err := s.deps.DB.Ping(ctx); err != nil {
			checks["database"] = "failed: " + err.Error()
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	limits := s.limiter.GetMetrics()

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", s.tracer.TotalRequests())

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", limits.TotalHits)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", limits.ClientCount)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.started).Seconds())
}
