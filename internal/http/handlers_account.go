package http

import (
	"net/http"
	"time"

	"walletnote/internal/core"
	"walletnote/internal/log"
)

type sessionResponse struct {
	User      core.User `json:"user"`
	ExpiresAt string    `json:"expires_at"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, r, log.OpSignUp, err)
		return
	}

	user, sess, err := s.deps.Auth.SignUp(r.Context(), p.Get("username"), p.Get("email"), p.Get("password"))
	if err != nil {
		writeError(w, r, log.OpSignUp, err)
		return
	}

	s.setSessionCookie(w, sess)
	log.FromContext(r.Context()).InfoContext(r.Context(), "User signed up", log.FieldUserID, user.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{User: user, ExpiresAt: sess.ExpiresAt.UTC().Format(time.RFC3339)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, r, log.OpLogin, err)
		return
	}

	user, sess, err := s.deps.Auth.Login(r.Context(), p.Get("email"), p.Get("password"))
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Login failed",
			log.FieldClientIP, s.ipExtractor.ClientIP(r),
			log.FieldError, err)
		writeError(w, r, log.OpLogin, err)
		return
	}

	s.setSessionCookie(w, sess)
	writeJSON(w, http.StatusOK, sessionResponse{User: user, ExpiresAt: sess.ExpiresAt.UTC().Format(time.RFC3339)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Auth.Logout(r.Context(), sessionToken(r)); err != nil {
		writeError(w, r, log.OpLogout, err)
		return
	}
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogoutPage(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Auth.Logout(r.Context(), sessionToken(r)); err != nil {
		log.FromContext(r.Context()).LogError(r.Context(), "Logout failed", err, log.OpLogout, log.ErrorTypeDatabase)
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	settings, err := s.deps.Settings.Get(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}

	currency, err := s.deps.Settings.SetCurrency(r.Context(), currentUser(r).ID, p.Get("currency"))
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]core.Currency{"currency": currency})
}
