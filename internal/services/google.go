package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"quizforge-backend/internal/models"
)

// GoogleProvider implements IdentityProvider with x/oauth2 for the code flow
// and idtoken for signature and audience checks.
type GoogleProvider struct {
	oauth     *oauth2.Config
	validator *idtoken.Validator
}

func NewGoogleProvider(ctx context.Context, clientID, clientSecret, redirectURL string) (*GoogleProvider, error) {
	v, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create id token validator: %w", err)
	}
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		validator: v,
	}, nil
}

func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (g *GoogleProvider) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("code exchange: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return "", errors.New("token response has no id_token")
	}
	return raw, nil
}

func (g *GoogleProvider) Verify(ctx context.Context, rawIDToken string) (*models.Identity, error) {
	payload, err := g.validator.Validate(ctx, rawIDToken, g.oauth.ClientID)
	if err != nil {
		return nil, err
	}
	return identityFromClaims(payload.Subject, payload.Claims)
}

func identityFromClaims(subject string, claims map[string]interface{}) (*models.Identity, error) {
	email, _ := claims["email"].(string)
	if subject == "" || email == "" {
		return nil, errors.New("id token has no subject or email")
	}
	if verified, _ := claims["email_verified"].(bool); !verified {
		return nil, errors.New("google email is not verified")
	}

	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	return &models.Identity{
		Subject: subject,
		Name:    name,
		Email:   email,
		Image:   picture,
	}, nil
}
