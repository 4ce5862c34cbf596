package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"walletnote/internal/core"
	"walletnote/internal/log"
	"walletnote/internal/middleware/security"
	"walletnote/internal/services"
)

// SessionCookie carries the opaque session token.
const SessionCookie = "walletnote_session"

type userContextKey struct{}

func withUser(ctx context.Context, u core.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// currentUser returns the user installed by requireAPI or requirePage.
func currentUser(r *http.Request) core.User {
	u, _ := r.Context().Value(userContextKey{}).(core.User)
	return u
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sess services.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// authenticate resolves the session cookie. A database failure is reported
// separately from a missing or expired session.
func (s *Server) authenticate(r *http.Request) (core.User, error) {
	token := sessionToken(r)
	if token == "" {
		return core.User{}, services.ErrUnauthenticated
	}
	return s.deps.Auth.Authenticate(r.Context(), token)
}

// requireAPI answers 401 JSON for anonymous requests.
func (s *Server) requireAPI(next http.HandlerFunc) http.Handler {
	return security.NoStore(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthenticated) {
				writeError(w, r, log.OpRead, err)
				return
			}
			writeMessage(w, http.StatusUnauthorized, "login required")
			return
		}
		ctx := withUser(r.Context(), user)
		ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldUserID, user.ID))
		next(w, r.WithContext(ctx))
	}))
}

// requirePage redirects anonymous visitors to the login page.
func (s *Server) requirePage(next http.HandlerFunc) http.Handler {
	return security.NoStore(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthenticated) {
				log.FromContext(r.Context()).LogError(r.Context(), "Session lookup failed", err, log.OpRead, log.ErrorTypeDatabase)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r.WithContext(withUser(r.Context(), user)))
	}))
}
