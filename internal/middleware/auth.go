package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"quizforge-backend/internal/models"
)

type contextKey string

const SessionKey contextKey = "session"

// SessionCookie carries the access token for browser clients.
const SessionCookie = "session_token"

const (
	tokenIssuer = "quizforge"
	keyInfo     = "quizforge session token signing key"
)

var (
	ErrMissingToken = errors.New("missing session token")
	ErrTokenExpired = errors.New("session token expired")
	ErrInvalidToken = errors.New("invalid session token")
)

type sessionClaims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

type JWTAuth struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewJWTAuth derives the HS256 signing key from secret with HKDF-SHA256.
func NewJWTAuth(secret string, ttl time.Duration) (*JWTAuth, error) {
	if secret == "" {
		return nil, errors.New("auth secret is empty")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	return &JWTAuth{key: key, ttl: ttl, now: time.Now}, nil
}

func (j *JWTAuth) TTL() time.Duration {
	return j.ttl
}

func (j *JWTAuth) GenerateAccessToken(s models.Session) (string, error) {
	now := j.now()
	claims := sessionClaims{
		Name:    s.Name,
		Email:   s.Email,
		Picture: s.Image,
		Role:    s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.key)
}

func (j *JWTAuth) ParseToken(tokenStr string) (*models.Session, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return j.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, ErrInvalidToken
	}

	role := claims.Role
	if role != models.RoleAdmin {
		role = models.RoleUser
	}
	return &models.Session{
		UserID: claims.Subject,
		Name:   claims.Name,
		Email:  claims.Email,
		Image:  claims.Picture,
		Role:   role,
	}, nil
}

// tokenFromRequest prefers the Authorization header over the session cookie.
func tokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", ErrInvalidToken
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", ErrMissingToken
}

// SessionFromRequest returns (nil, ErrMissingToken) for anonymous requests.
func (j *JWTAuth) SessionFromRequest(r *http.Request) (*models.Session, error) {
	tokenStr, err := tokenFromRequest(r)
	if err != nil {
		return nil, err
	}
	return j.ParseToken(tokenStr)
}

// Middleware rejects anonymous requests with 401 and attaches the session otherwise.
func (j *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := j.SessionFromRequest(r)
		switch {
		case errors.Is(err, ErrMissingToken):
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session token", "", r)
			return
		case errors.Is(err, ErrTokenExpired):
			writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Session has expired", "", r)
			return
		case err != nil:
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session token", "", r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// GetSession returns nil when the request was not authenticated.
func GetSession(ctx context.Context) *models.Session {
	s, _ := ctx.Value(SessionKey).(*models.Session)
	return s
}

func writeError(w http.ResponseWriter, status int, code, message, redirect string, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: models.APIError{
		Code:      code,
		Message:   message,
		Redirect:  redirect,
		RequestID: GetRequestID(r.Context()),
	}})
}
