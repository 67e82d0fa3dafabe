package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID          uuid.UUID  `json:"id"`
	GoogleSub   string     `json:"-"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Image       string     `json:"image"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// Identity is what the identity provider hands back after a successful sign-in.
type Identity struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Image   string `json:"image"`
}

// Session is the caller identity carried in the signed access token.
type Session struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Image  string `json:"image"`
	Role   string `json:"role"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

func SessionFor(u *User) Session {
	role := u.Role
	if role == "" {
		role = RoleUser
	}
	return Session{
		UserID: u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Image:  u.Image,
		Role:   role,
	}
}

type AuthTokens struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    int     `json:"expires_in"`
	Session      Session `json:"session"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
}
