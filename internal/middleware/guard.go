package middleware

import (
	"errors"
	"net/http"
	"strings"

	"quizforge-backend/internal/models"
)

type Decision int

const (
	Allow Decision = iota
	RedirectToSignIn
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToSignIn:
		return "redirect_to_sign_in"
	case RedirectHome:
		return "redirect_home"
	}
	return "unknown"
}

const (
	SignInPath = "/api/v1/auth/google/login"
	HomePath   = "/"
)

// Evaluate decides access to admin routes. Anonymous callers go to sign-in,
// signed-in non-admins go home.
func Evaluate(s *models.Session) Decision {
	if s == nil {
		return RedirectToSignIn
	}
	if !s.IsAdmin() {
		return RedirectHome
	}
	return Allow
}

type Guard struct {
	jwt *JWTAuth
}

func NewGuard(jwt *JWTAuth) *Guard {
	return &Guard{jwt: jwt}
}

// RequireAdmin guards the admin prefix. Browser navigations are redirected,
// API callers get a JSON error naming the redirect target.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := g.jwt.SessionFromRequest(r)
		if err != nil {
			session = nil
		}

		switch Evaluate(session) {
		case Allow:
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		case RedirectToSignIn:
			if wantsHTML(r) {
				http.Redirect(w, r, SignInPath, http.StatusFound)
				return
			}
			code, msg := "UNAUTHENTICATED", "Sign in required"
			if errors.Is(err, ErrTokenExpired) {
				code, msg = "TOKEN_EXPIRED", "Session has expired"
			}
			writeError(w, http.StatusUnauthorized, code, msg, SignInPath, r)
		case RedirectHome:
			if wantsHTML(r) {
				http.Redirect(w, r, HomePath, http.StatusFound)
				return
			}
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Admin access required", HomePath, r)
		}
	})
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("Upgrade") != "" {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
