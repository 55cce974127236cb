package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// HTTPProvider implements Provider against a hosted password-grant auth
// service (GoTrue-style REST endpoints under a base URL). It keeps the
// current session in memory only; durable session storage belongs to the
// service's own refresh-token machinery.
type HTTPProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu      sync.Mutex
	current *ProviderSession
}

func NewHTTPProvider(baseURL, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type providerUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

func (u providerUser) toUser() User {
	return User{ID: u.ID, Email: u.Email, Metadata: u.UserMetadata}
}

func (p *HTTPProvider) GetSession(ctx context.Context) (*ProviderSession, error) {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()
	if current == nil {
		return nil, nil
	}

	// Revalidate the held token against the service before reporting a
	// restorable session.
	user, err := p.UserFromToken(ctx, current.AccessToken)
	if err != nil {
		var ae *AuthError
		if errors.As(err, &ae) && ae.Kind == KindNetwork {
			return nil, err
		}
		p.mu.Lock()
		p.current = nil
		p.mu.Unlock()
		return nil, nil
	}
	current.User = *user
	return current, nil
}

func (p *HTTPProvider) SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error) {
	body := map[string]string{"email": email, "password": password}
	var out struct {
		AccessToken string       `json:"access_token"`
		User        providerUser `json:"user"`
	}
	status, err := p.post(ctx, "/token?grant_type=password", "", body, &out)
	if err != nil {
		return nil, &AuthError{Kind: KindNetwork, Err: err}
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return nil, &AuthError{Kind: KindInvalidCredentials, Err: fmt.Errorf("status %d", status)}
	}
	if status < 200 || status > 299 || out.AccessToken == "" {
		return nil, &AuthError{Kind: KindUnknown, Err: fmt.Errorf("status %d", status)}
	}

	session := &ProviderSession{AccessToken: out.AccessToken, User: out.User.toUser()}
	p.mu.Lock()
	p.current = session
	p.mu.Unlock()
	return session, nil
}

func (p *HTTPProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	current := p.current
	p.current = nil
	p.mu.Unlock()
	if current == nil {
		return nil
	}

	status, err := p.post(ctx, "/logout", current.AccessToken, nil, nil)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	if (status < 200 || status > 299) && status != http.StatusUnauthorized {
		return fmt.Errorf("sign out: status %d", status)
	}
	return nil
}

func (p *HTTPProvider) SignUp(ctx context.Context, email, password, name string) (*User, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     map[string]string{"name": name},
	}
	var out struct {
		providerUser
		Msg string `json:"msg"`
	}
	status, err := p.post(ctx, "/signup", "", body, &out)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	if status == http.StatusConflict || strings.Contains(strings.ToLower(out.Msg), "already registered") {
		return nil, ErrEmailRegistered
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("sign up: status %d: %s", status, out.Msg)
	}
	user := out.providerUser.toUser()
	return &user, nil
}

func (p *HTTPProvider) UserFromToken(ctx context.Context, token string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/user", nil)
	if err != nil {
		return nil, &AuthError{Kind: KindUnknown, Err: err}
	}
	p.setHeaders(req, token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &AuthError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &AuthError{Kind: KindInvalidCredentials, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AuthError{Kind: KindUnknown, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var u providerUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, &AuthError{Kind: KindUnknown, Err: fmt.Errorf("decode user: %w", err)}
	}
	user := u.toUser()
	return &user, nil
}

func (p *HTTPProvider) post(ctx context.Context, path, token string, body, out interface{}) (int, error) {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	p.setHeaders(req, token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if out != nil {
		// Decode failures on error statuses are fine; the status code is the
		// signal then.
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode, nil
}

func (p *HTTPProvider) setHeaders(req *http.Request, token string) {
	req.Header.Set("apikey", p.apiKey)
	if token == "" {
		token = p.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
}
