package provider

import (
	"context"

	"tourneybase-web/internal/identity"
)

// Provider defines the contract every external auth provider must
// implement. Implementations return identity facts only and must not
// perform profile resolution or session management.
type Provider interface {
	// Name returns the provider identifier (e.g. "google", "local").
	Name() string

	// AuthCodeURL returns the authorization URL the browser is sent to.
	// State and PKCE parameters are provided by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode exchanges the authorization code for provider
	// credentials and returns a normalized identity with a live
	// credential source.
	ExchangeCode(
		ctx context.Context,
		code string,
		codeVerifier string,
	) (*identity.Identity, string, error)

	// Rebind reconstructs an identity from a persisted binding
	// (subject plus refresh token) after a process restart.
	Rebind(
		ctx context.Context,
		subject string,
		email string,
		name string,
		refreshToken string,
	) (*identity.Identity, error)
}
