// Package client is a typed Go client for the dm-lab HTTP API.
package client

import (
	"bytes"
	"context"
	"dm-lab/domain"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client talks to one dm-lab server. Register and Login keep the session
// token for the calls that follow.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	trace   func(method, path string, status int, body []byte)
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithTrace calls fn after every request with the raw response body.
func WithTrace(fn func(method, path string, status int, body []byte)) Option {
	return func(cl *Client) { cl.trace = fn }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx answer of the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type AuthResult struct {
	Message string            `json:"message"`
	User    domain.PublicUser `json:"user"`
	Token   string            `json:"token"`
}

func (c *Client) Token() string { return c.token }

func (c *Client) Register(ctx context.Context, username, password, fullName string) (AuthResult, error) {
	var out AuthResult
	in := map[string]string{"username": username, "password": password, "fullName": fullName}
	if err := c.do(ctx, http.MethodPost, "/api/register", in, &out); err != nil {
		return AuthResult{}, err
	}
	c.token = out.Token
	return out, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (AuthResult, error) {
	var out AuthResult
	in := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login", in, &out); err != nil {
		return AuthResult{}, err
	}
	c.token = out.Token
	return out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

func (c *Client) Users(ctx context.Context) ([]domain.PublicUser, error) {
	var out []domain.PublicUser
	err := c.do(ctx, http.MethodGet, "/api/users", nil, &out)
	return out, err
}

func (c *Client) User(ctx context.Context, id string) (domain.PublicUser, error) {
	var out domain.PublicUser
	err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) Send(ctx context.Context, receiverID, content string) (domain.Message, error) {
	var out struct {
		Data domain.Message `json:"data"`
	}
	in := map[string]string{"receiverId": receiverID, "content": content}
	if err := c.do(ctx, http.MethodPost, "/api/messages", in, &out); err != nil {
		return domain.Message{}, err
	}
	return out.Data, nil
}

func (c *Client) Conversation(ctx context.Context, otherID string) ([]domain.Message, error) {
	var out []domain.Message
	err := c.do(ctx, http.MethodGet, "/api/messages/"+url.PathEscape(otherID), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if c.trace != nil {
		c.trace(method, path, resp.StatusCode, data)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err = json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
