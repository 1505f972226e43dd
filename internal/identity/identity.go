package identity

import "context"

// Identity represents a signed-in principal as recognized by an external
// authentication provider. It contains facts only, no decisions: the
// backend decides what (if any) profile the principal maps to.
type Identity struct {
	Provider string // e.g. "google", "local"
	Subject  string // provider-scoped unique identifier (sub)
	Email    string
	Name     string // display name asserted by the provider, may be empty

	source CredentialSource
}

// CredentialSource yields a short-lived bearer credential for outbound
// backend calls. Implementations refresh under the hood; callers always
// receive a currently valid token or an error.
type CredentialSource interface {
	Credential(ctx context.Context) (string, error)
}

func New(provider, subject, email, name string, source CredentialSource) *Identity {
	return &Identity{
		Provider: provider,
		Subject:  subject,
		Email:    email,
		Name:     name,
		source:   source,
	}
}

// Credential acquires a fresh bearer credential from the provider.
func (i *Identity) Credential(ctx context.Context) (string, error) {
	return i.source.Credential(ctx)
}
