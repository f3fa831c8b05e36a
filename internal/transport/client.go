// Package transport provides the HTTP plumbing shared by registry adapters:
// a small client with registry-friendly defaults and lazy page traversal.
package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/louib/panbuild/pkg/constants"
	"github.com/louib/panbuild/pkg/errors"
)

// Client performs unauthenticated GET requests against a registry.
type Client struct {
	http      *http.Client
	source    string
	userAgent string
	accept    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d, Transport: c.http.Transport}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithAccept sets the Accept header.
func WithAccept(accept string) Option {
	return func(c *Client) {
		c.accept = accept
	}
}

// New creates a client whose errors are attributed to source.
func New(source string, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: constants.DefaultHTTPTimeout},
		source:    source,
		userAgent: constants.UserAgent,
		accept:    constants.AcceptJSON,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source returns the name errors are attributed to.
func (c *Client) Source() string {
	return c.source
}

// Get performs a GET request. Any non-2xx status is returned as an APIError
// and the body is closed.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapAPI(c.source, url, 0, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.accept != "" {
		req.Header.Set("Accept", c.accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapAPI(c.source, url, 0, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		apiErr := errors.NewAPIError(c.source, resp.StatusCode, strings.TrimSpace(string(body)))
		apiErr.Endpoint = url
		return nil, apiErr
	}
	return resp, nil
}

// GetBody performs a GET request and returns the whole response body.
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, http.Header, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseSize))
	if err != nil {
		return nil, nil, errors.WrapAPI(c.source, url, resp.StatusCode, err)
	}
	return body, resp.Header, nil
}

// DecodeJSON unmarshals a registry body, reporting failures as ParseErrors.
func DecodeJSON(body []byte, url string, target any) error {
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", url, err)
	}
	return nil
}
