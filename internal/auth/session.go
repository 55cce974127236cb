package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/pro-prioritet/tracker/internal/logx"
)

// Session is the client's authentication state. There is at most one per
// running client; it is cleared on logout and never persisted in plaintext
// by this package.
type Session struct {
	IsLoggedIn  bool
	UserEmail   string
	UserName    string
	AccessToken string
	Roles       []string
}

// HasRole reports whether the session carries a role.
func (s *Session) HasRole(role string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Kind classifies login failures for the caller's prompt logic.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidCredentials
	KindNetwork
)

// AuthError is a classified login failure.
type AuthError struct {
	Kind Kind
	Err  error
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case KindInvalidCredentials:
		return fmt.Sprintf("invalid credentials: %v", e.Err)
	case KindNetwork:
		return fmt.Sprintf("network failure: %v", e.Err)
	default:
		return fmt.Sprintf("authentication failed: %v", e.Err)
	}
}

func (e *AuthError) Unwrap() error { return e.Err }

// KindOf classifies err, defaulting to KindUnknown for non-auth errors.
func KindOf(err error) Kind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// Manager derives Session values from the auth provider. It holds no
// persistence of its own.
type Manager struct {
	provider Provider
	log      *logx.Logger
}

func NewManager(provider Provider) *Manager {
	return &Manager{provider: provider, log: logx.New("auth")}
}

// Restore queries the provider for an existing session. A session counts
// only when both a bearer token and a user email are present; on absence or
// any error the caller falls back to anonymous mode.
func (m *Manager) Restore(ctx context.Context) *Session {
	ps, err := m.provider.GetSession(ctx)
	if err != nil {
		m.log.Warnf("restore", "session check failed: %v", err)
		return nil
	}
	if ps == nil || ps.AccessToken == "" || ps.User.Email == "" {
		return nil
	}
	return sessionFrom(ps)
}

// Login delegates to the provider and returns a populated Session, or a
// classified *AuthError.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	ps, err := m.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		m.log.Warnf("login", "email=%s failed: %v", email, err)
		var ae *AuthError
		if errors.As(err, &ae) {
			return nil, ae
		}
		return nil, &AuthError{Kind: KindUnknown, Err: err}
	}
	if ps == nil || ps.AccessToken == "" {
		return nil, &AuthError{Kind: KindUnknown, Err: errors.New("provider returned no session")}
	}
	return sessionFrom(ps), nil
}

// Logout signs out at the provider. Remote failure is logged, not surfaced:
// the caller clears its local session regardless.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.provider.SignOut(ctx); err != nil {
		m.log.Warnf("logout", "remote sign-out failed: %v", err)
	}
}

func sessionFrom(ps *ProviderSession) *Session {
	return &Session{
		IsLoggedIn:  true,
		UserEmail:   ps.User.Email,
		UserName:    ps.User.Name(),
		AccessToken: ps.AccessToken,
		Roles:       RolesFromToken(ps.AccessToken),
	}
}
