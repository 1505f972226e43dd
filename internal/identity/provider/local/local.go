// Package local implements a self-issued identity provider for development
// and tests: it mints and verifies its own HS256 tokens instead of talking
// to an external issuer. The login flow is the same shape as a real OIDC
// provider so the rest of the client cannot tell the difference.
package local

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"tourneybase-web/internal/identity"

	"github.com/golang-jwt/jwt/v5"
)

const (
	providerName = "local"

	codeTTL       = 2 * time.Minute
	credentialTTL = 15 * time.Minute
)

type Provider struct {
	secret      []byte
	redirectURL string

	// the single principal this provider signs in
	subject string
	email   string
	name    string
}

func New(secret, redirectURL string) (*Provider, error) {
	if secret == "" {
		return nil, errors.New("local issuer secret is required")
	}
	if redirectURL == "" {
		return nil, errors.New("local issuer redirect url is required")
	}

	return &Provider{
		secret:      []byte(secret),
		redirectURL: redirectURL,
		subject:     "local-dev-player",
		email:       "dev@tourneybase.local",
		name:        "Dev Player",
	}, nil
}

func (p *Provider) Name() string {
	return providerName
}

// AuthCodeURL sends the browser straight back to the callback with a
// short-lived signed code. There is no consent screen to visit.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	code, err := p.mint(codeTTL)
	if err != nil {
		// surfaces as an invalid-code failure at the callback
		code = "unmintable"
	}

	q := url.Values{}
	q.Set("state", state)
	q.Set("code", code)

	return p.redirectURL + "?" + q.Encode()
}

func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*identity.Identity, string, error) {

	claims, err := p.parse(code)
	if err != nil {
		return nil, "", fmt.Errorf("local code rejected: %w", err)
	}

	id := identity.New(providerName, claims.Subject, claims.Email, claims.Name, &tokenSource{provider: p})

	// no refresh token: the provider can always mint anew
	return id, "", nil
}

func (p *Provider) Rebind(
	ctx context.Context,
	subject string,
	email string,
	name string,
	refreshToken string,
) (*identity.Identity, error) {

	if subject == "" {
		return nil, errors.New("local rebind requires a subject")
	}

	return identity.New(providerName, subject, email, name, &tokenSource{provider: p}), nil
}

type localClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

func (p *Provider) mint(ttl time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, localClaims{
		Email: p.email,
		Name:  p.name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.subject,
			Issuer:    providerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	return token.SignedString(p.secret)
}

func (p *Provider) parse(raw string) (*localClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &localClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*localClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// tokenSource mints a fresh short-lived credential per acquisition.
type tokenSource struct {
	provider *Provider
}

func (s *tokenSource) Credential(ctx context.Context) (string, error) {
	return s.provider.mint(credentialTTL)
}
