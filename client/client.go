// Package client is a Go client for the portfolio API. The access token is
// held in memory only.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/rpupo63/portfolio-backend/models"
)

// ErrNotLoggedIn is returned locally, without a request, when a mutation is
// attempted with no token.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Field      string
	Details    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%d %s", e.StatusCode, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type loginForm struct {
	Username string `url:"username"`
	Password string `url:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field"`
	Details string `json:"details"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges username and password for a token and keeps it. A failed
// login leaves the client logged out.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form, err := query.Values(loginForm{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("encoding login form: %w", err)
	}

	c.setToken("")

	var token tokenResponse
	err = c.do(ctx, http.MethodPost, "/auth/login", "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()), false, &token)
	if err != nil {
		return err
	}
	if token.AccessToken == "" {
		return errors.New("login response carried no access token")
	}

	c.setToken(token.AccessToken)
	return nil
}

// Logout forgets the token.
func (c *Client) Logout() {
	c.setToken("")
}

func (c *Client) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	if err := c.do(ctx, http.MethodGet, "/projects", "", nil, false, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodGet, projectPath(id), "", nil, false, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) CreateProject(ctx context.Context, input models.ProjectCreate) (*models.Project, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	var project models.Project
	if err := c.do(ctx, http.MethodPost, "/projects", "application/json", bytes.NewReader(body), true, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject sends a sparse update. Columns mapped to nil are cleared.
func (c *Client) UpdateProject(ctx context.Context, id int64, patch models.ProjectPatch) (*models.Project, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}

	var project models.Project
	if err := c.do(ctx, http.MethodPatch, projectPath(id), "application/json", bytes.NewReader(body), true, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject returns the confirmation message sent by the server.
func (c *Client) DeleteProject(ctx context.Context, id int64) (string, error) {
	var msg messageResponse
	if err := c.do(ctx, http.MethodDelete, projectPath(id), "", nil, true, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

func projectPath(id int64) string {
	return "/projects/" + strconv.FormatInt(id, 10)
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, authenticated bool, out any) error {
	token := c.currentToken()
	if authenticated && token == "" {
		return ErrNotLoggedIn
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.setToken("")
		}
		return newAPIError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}

	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		apiErr.Message = parsed.Error
		apiErr.Field = parsed.Field
		apiErr.Details = parsed.Details
	}
	return apiErr
}
