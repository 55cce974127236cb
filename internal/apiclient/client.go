// Package apiclient is the typed wrapper over the remote project service.
// Every call returns either a decoded payload or a classified error; network
// and parse failures are converted at this boundary and never panic past it.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pro-prioritet/tracker/internal/logx"
	"github.com/pro-prioritet/tracker/internal/projects/domain"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx response from the remote service, carrying the
// error string from the response body when one was present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the remote service.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client talks to the project/team/profile API. Requests without a user
// token authenticate with the public anon credential, which the service
// treats as anonymous access.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	log        *logx.Logger
}

func New(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		log: logx.New("apiclient"),
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		msg := http.StatusText(resp.StatusCode)
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil && errBody.Error != "" {
			msg = errBody.Error
		}
		c.log.Warnf("request", "method=%s path=%s status=%d error=%s", method, path, resp.StatusCode, msg)
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ListProjects fetches the authenticated user's project list.
func (c *Client) ListProjects(ctx context.Context, token string) ([]domain.Project, error) {
	var out struct {
		Projects []domain.Project `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/projects", token, nil, &out); err != nil {
		return nil, err
	}
	if out.Projects == nil {
		out.Projects = []domain.Project{}
	}
	return out.Projects, nil
}

// CreateProject creates a project; the service assigns id, owner and
// creation timestamp.
func (c *Client) CreateProject(ctx context.Context, draft domain.Draft, token string) (*domain.Project, error) {
	var out struct {
		Project domain.Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodPost, "/projects", token, draft, &out); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

// UpdateProject replaces a project's fields by id.
func (c *Client) UpdateProject(ctx context.Context, p domain.Project, token string) (*domain.Project, error) {
	var out struct {
		Project domain.Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodPut, "/projects/"+p.ID, token, p, &out); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

// DeleteProject removes a project by id.
func (c *Client) DeleteProject(ctx context.Context, id, token string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+id, token, nil, nil)
}

// Teams fetches the teams the authenticated user belongs to.
func (c *Client) Teams(ctx context.Context, token string) ([]domain.Team, error) {
	var out struct {
		Teams []domain.Team `json:"teams"`
	}
	if err := c.do(ctx, http.MethodGet, "/teams", token, nil, &out); err != nil {
		return nil, err
	}
	if out.Teams == nil {
		out.Teams = []domain.Team{}
	}
	return out.Teams, nil
}

// CreateTeam creates a team owned by the authenticated user.
func (c *Client) CreateTeam(ctx context.Context, name, description, token string) (*domain.Team, error) {
	body := map[string]string{"name": name, "description": description}
	var out struct {
		Team domain.Team `json:"team"`
	}
	if err := c.do(ctx, http.MethodPost, "/teams", token, body, &out); err != nil {
		return nil, err
	}
	return &out.Team, nil
}

// JoinTeam adds the authenticated user to an existing team.
func (c *Client) JoinTeam(ctx context.Context, teamID, token string) error {
	body := map[string]string{"teamId": teamID}
	return c.do(ctx, http.MethodPost, "/teams/join", token, body, nil)
}

// Profile fetches the user's profile, creating a default one server-side on
// first access.
func (c *Client) Profile(ctx context.Context, token string) (*domain.Profile, error) {
	var out struct {
		Profile domain.Profile `json:"profile"`
	}
	if err := c.do(ctx, http.MethodGet, "/profile", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.Profile, nil
}

// UpdateProfile replaces the user's profile; identity fields are pinned
// server-side.
func (c *Client) UpdateProfile(ctx context.Context, profile domain.Profile, token string) (*domain.Profile, error) {
	var out struct {
		Profile domain.Profile `json:"profile"`
	}
	if err := c.do(ctx, http.MethodPut, "/profile", token, profile, &out); err != nil {
		return nil, err
	}
	return &out.Profile, nil
}

// Signup registers a new account through the service.
func (c *Client) Signup(ctx context.Context, email, password, name string) error {
	body := map[string]string{"email": email, "password": password, "name": name}
	return c.do(ctx, http.MethodPost, "/signup", "", body, nil)
}

// Health probes the service.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}
