// Package auth holds the session manager and its provider boundary. The
// hosted auth service owns credentials and session persistence; this package
// only derives the client's Session value from it.
package auth

import (
	"context"
	"errors"
)

// ErrEmailRegistered is returned by SignUp when the address already has an
// account.
var ErrEmailRegistered = errors.New("email already registered")

// User is the provider's view of an identity.
type User struct {
	ID       string
	Email    string
	Metadata map[string]interface{}
}

// Name extracts a display name from the identity metadata, trying the same
// keys the registration flow writes.
func (u *User) Name() string {
	for _, key := range []string{"name", "full_name"} {
		if v, ok := u.Metadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// ProviderSession is a live session as reported by the auth provider.
type ProviderSession struct {
	AccessToken string
	User        User
}

// Provider is the external auth service contract. Implementations must not
// panic; transport failures come back as errors.
type Provider interface {
	// GetSession reports an existing session, or (nil, nil) when there is
	// none to restore.
	GetSession(ctx context.Context) (*ProviderSession, error)
	SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error)
	SignOut(ctx context.Context) error
	SignUp(ctx context.Context, email, password, name string) (*User, error)
	// UserFromToken resolves the identity behind a bearer token. Used by the
	// API server to authorize requests.
	UserFromToken(ctx context.Context, token string) (*User, error)
}
