// Package transport is the HTTP client the loaders fetch endpoint documents
// with: per-request authentication, a bounded timeout and status handling.
package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/agentstation/bidcompare/pkg/constants"
	"github.com/agentstation/bidcompare/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication.
type Client struct {
	http  *http.Client
	auth  Authenticator
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultHTTPTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient uses a copy of hc for requests, so later options such as
// WithTimeout never change the caller's client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.http = &cp
		}
	}
}

// New creates a new transport client. token is handed to auth on every
// request; an empty token skips authentication.
func New(auth Authenticator, token string, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		http:  &http.Client{Timeout: DefaultHTTPTimeout},
		auth:  auth,
		token: token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the request timeout in effect.
func (c *Client) Timeout() time.Duration {
	return c.http.Timeout
}

// Do performs an HTTP request with authentication applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		c.auth.Apply(req, c.token)
	}
	req.Header.Set("Accept", "application/json")
	return c.http.Do(req)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, errors.WrapIO("request", url, err)
	}
	return resp, nil
}
