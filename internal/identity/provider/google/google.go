package google

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tourneybase-web/internal/identity"
	"tourneybase-web/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const providerName = "google"

type Provider struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

func New(
	ctx context.Context,
	clientID string,
	clientSecret string,
	redirectURL string,
) (*Provider, error) {

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes: []string{
			oidc.ScopeOpenID,
			"profile",
			"email",
		},
	}

	return &Provider{
		oauthConfig: oauthCfg,
		verifier:    verifier,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// AuthCodeURL builds the authorization URL with PKCE parameters.
// Offline access is requested so the credential can be refreshed for
// the lifetime of the session.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*identity.Identity, string, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, "", fmt.Errorf("google token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, "", errors.New("google did not return id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, "", fmt.Errorf("google id_token verification failed: %w", err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}

	if err := idToken.Claims(&claims); err != nil {
		return nil, "", fmt.Errorf("google id_token claims parse failed: %w", err)
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, "", errors.New("google id_token missing required claims")
	}

	logger.Info("google oidc verified", map[string]any{
		"issuer":         idToken.Issuer,
		"email_verified": claims.EmailVerified,
		"expiry_unix":    idToken.Expiry.Unix(),
	})

	source := &idTokenSource{
		cfg:      p.oauthConfig,
		verifier: p.verifier,
		base:     token,
		raw:      rawIDToken,
		expiry:   idToken.Expiry,
	}

	id := identity.New(providerName, claims.Subject, claims.Email, claims.Name, source)

	return id, token.RefreshToken, nil
}

// Rebind rebuilds an identity from a persisted refresh token.
// The first Credential call performs the actual refresh; a revoked
// token surfaces there as a credential acquisition failure.
func (p *Provider) Rebind(
	ctx context.Context,
	subject string,
	email string,
	name string,
	refreshToken string,
) (*identity.Identity, error) {

	if refreshToken == "" {
		return nil, errors.New("google rebind requires a refresh token")
	}

	source := &idTokenSource{
		cfg:      p.oauthConfig,
		verifier: p.verifier,
		base:     &oauth2.Token{RefreshToken: refreshToken},
	}

	return identity.New(providerName, subject, email, name, source), nil
}

// idTokenSource produces the bearer credential sent to the backend: the
// provider's ID token, refreshed through the OAuth refresh flow when the
// cached one is close to expiry.
type idTokenSource struct {
	cfg      *oauth2.Config
	verifier *oidc.IDTokenVerifier

	mu     sync.Mutex
	base   *oauth2.Token
	raw    string
	expiry time.Time
}

const expirySlack = 30 * time.Second

func (s *idTokenSource) Credential(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.raw != "" && time.Until(s.expiry) > expirySlack {
		return s.raw, nil
	}

	token, err := s.cfg.TokenSource(ctx, s.base).Token()
	if err != nil {
		return "", fmt.Errorf("google credential refresh failed: %w", err)
	}
	s.base = token

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", errors.New("google refresh response missing id_token")
	}

	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return "", fmt.Errorf("google refreshed id_token invalid: %w", err)
	}

	s.raw = rawIDToken
	s.expiry = idToken.Expiry

	return s.raw, nil
}
