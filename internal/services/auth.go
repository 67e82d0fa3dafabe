package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"quizforge-backend/internal/logger"
	"quizforge-backend/internal/middleware"
	"quizforge-backend/internal/models"
	"quizforge-backend/internal/repository"
)

const (
	refreshTokenTTL = 7 * 24 * time.Hour
	oauthStateTTL   = 10 * time.Minute
)

// UserStore is implemented by repository.UserRepo and mongostore.UserStore.
type UserStore interface {
	UpsertIdentity(ctx context.Context, id models.Identity) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// IdentityProvider runs the Google sign-in: consent URL, code exchange and
// ID token verification.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (rawIDToken string, err error)
	Verify(ctx context.Context, rawIDToken string) (*models.Identity, error)
}

type AuthService struct {
	users UserStore
	kv    KeyValueStore
	jwt   *middleware.JWTAuth
	idp   IdentityProvider
	log   *logger.Logger
}

func NewAuthService(users UserStore, kv KeyValueStore, jwt *middleware.JWTAuth, idp IdentityProvider, log *logger.Logger) *AuthService {
	return &AuthService{
		users: users,
		kv:    kv,
		jwt:   jwt,
		idp:   idp,
		log:   log,
	}
}

// AuthCodeURL starts the OAuth code flow. returnTo is where the browser lands
// after the callback; anything but a local path falls back to "/".
func (s *AuthService) AuthCodeURL(ctx context.Context, returnTo string) (string, error) {
	state, err := generateToken(24)
	if err != nil {
		return "", err
	}
	if err := s.kv.Set(ctx, "oauth_state:"+state, safeReturnPath(returnTo), oauthStateTTL); err != nil {
		return "", &PersistenceError{Op: "store oauth state", Err: err}
	}
	return s.idp.AuthCodeURL(state), nil
}

// CompleteGoogleLogin consumes the state, exchanges the code and signs the
// user in. It returns the tokens and the path stored with the state.
func (s *AuthService) CompleteGoogleLogin(ctx context.Context, state, code string) (*models.AuthTokens, string, error) {
	if state == "" || code == "" {
		return nil, "", &ValidationError{Fields: map[string]string{"code": "Missing OAuth state or code"}}
	}

	returnTo, err := s.kv.GetDel(ctx, "oauth_state:"+state)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, "", &UnauthorizedError{Message: "Sign-in request expired. Please try again."}
	}
	if err != nil {
		return nil, "", &PersistenceError{Op: "consume oauth state", Err: err}
	}

	rawIDToken, err := s.idp.Exchange(ctx, code)
	if err != nil {
		s.log.Warn("google code exchange failed", "error", err)
		return nil, "", &UnauthorizedError{Message: "Google sign-in failed"}
	}

	tokens, err := s.GoogleLogin(ctx, rawIDToken)
	if err != nil {
		return nil, "", err
	}
	return tokens, returnTo, nil
}

// GoogleLogin verifies a Google ID token and signs the user in, creating the
// user on first login. The stored role is never changed here.
func (s *AuthService) GoogleLogin(ctx context.Context, rawIDToken string) (*models.AuthTokens, error) {
	if strings.TrimSpace(rawIDToken) == "" {
		return nil, &ValidationError{Fields: map[string]string{"id_token": "is required"}}
	}

	identity, err := s.idp.Verify(ctx, rawIDToken)
	if err != nil {
		s.log.Warn("google id token rejected", "error", err)
		return nil, &UnauthorizedError{Message: "Invalid Google token"}
	}

	user, err := s.users.UpsertIdentity(ctx, *identity)
	if err != nil {
		return nil, storeError(s.log, "upsert user", "User not found", err)
	}

	s.log.Info("user signed in", "user_id", user.ID.String(), "role", user.Role)
	return s.issueTokens(ctx, user)
}

// Refresh rotates the refresh token. The role is re-read from the store, so an
// out-of-band role change takes effect on the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	if refreshToken == "" {
		return nil, &ValidationError{Fields: map[string]string{"refresh_token": "is required"}}
	}

	userID, err := s.kv.GetDel(ctx, "refresh:"+refreshToken)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, &UnauthorizedError{Message: "Invalid or expired refresh token. Please sign in again."}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "consume refresh token", Err: err}
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &UnauthorizedError{Message: "Account no longer exists"}
	}
	if err != nil {
		return nil, storeError(s.log, "get user", "User not found", err)
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.kv.Del(ctx, "refresh:"+refreshToken); err != nil {
		return &PersistenceError{Op: "revoke refresh token", Err: err}
	}
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*models.AuthTokens, error) {
	session := models.SessionFor(user)
	accessToken, err := s.jwt.GenerateAccessToken(session)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := generateToken(32)
	if err != nil {
		return nil, err
	}

	if err := s.kv.Set(ctx, "refresh:"+refreshToken, user.ID.String(), refreshTokenTTL); err != nil {
		return nil, &PersistenceError{Op: "store refresh token", Err: err}
	}

	return &models.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwt.TTL().Seconds()),
		Session:      session,
	}, nil
}

func safeReturnPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return "/"
	}
	return p
}

func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
