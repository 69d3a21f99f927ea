// Package api is the HTTP client for the TubeTip REST backend.
//
// Everything the app knows, it learns through this package: identity,
// profiles, tips, and the one-shot Stripe URLs for the external redirect
// flows. The client is deliberately dumb — it translates Go calls into
// HTTP requests and backend error bodies into apperror values, and nothing
// else. Session state, routing decisions, and pagination policy all live
// in the packages that call it.
//
// ERROR TRANSLATION:
// The backend reports failures in one of two JSON shapes:
//
//	{"error":"not_found","message":"..."}          — whole-request errors
//	{"errors":[{"field":"username","message":"taken"}]} — form rejections
//
// decodeError maps these (plus the status code) onto the apperror taxonomy
// so callers never inspect HTTP status codes themselves.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenPair is the backend credential this gateway holds for one browser
// session. Access is attached as a bearer token on authenticated calls;
// Refresh trades for a new pair when the access token expires.
type TokenPair struct {
	Access  string
	Refresh string
}

// Zero reports whether the pair carries no credential at all.
func (p TokenPair) Zero() bool {
	return p.Access == "" && p.Refresh == ""
}

// Client talks to the TubeTip backend.
//
// It is stateless and safe for concurrent use: credentials are passed per
// call, never stored, so one Client serves every browser session.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// New creates a Client for the backend at baseURL (including any path
// prefix, e.g. "http://localhost:8000/api/v1").
func New(baseURL string, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parsing base URL %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: base URL %q must be absolute", baseURL)
	}

	return &Client{
		base:   base,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}, nil
}

// endpoint joins the base URL with a backend path.
func (c *Client) endpoint(path string) string {
	return c.base.String() + "/" + strings.TrimPrefix(path, "/")
}

// newRequest builds a request with the common headers. pair may be the zero
// TokenPair for public endpoints.
func (c *Client) newRequest(ctx context.Context, method, path string, pair TokenPair, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("api: building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if pair.Access != "" {
		req.Header.Set("Authorization", "Bearer "+pair.Access)
	}
	return req, nil
}

// do sends the request and decodes a JSON success body into out (skipped
// when out is nil). Non-2xx responses are translated via decodeError;
// transport failures become apperror.Transient.
func (c *Client) do(req *http.Request, out any, resource string) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			slog.String("method", req.Method),
			slog.String("url", req.URL.Path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("api: %s %s: %w", req.Method, req.URL.Path,
			transientf("could not reach the server, please try again"))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp, resource)
	}

	if out == nil {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decoding %s response: %w", resource, err)
	}
	return nil
}

// postJSON marshals body and POSTs it.
func (c *Client) postJSON(ctx context.Context, path string, pair TokenPair, body, out any, resource string) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("api: encoding %s request: %w", resource, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, pair, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out, resource)
}

// getJSON GETs and decodes.
func (c *Client) getJSON(ctx context.Context, path string, pair TokenPair, out any, resource string) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, pair, nil)
	if err != nil {
		return err
	}
	return c.do(req, out, resource)
}
