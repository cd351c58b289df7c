// Package shopapi provides a typed client for the album shop REST API.
//
// Every operation maps to exactly one remote call and is safe to retry.
// Failures are normalized: a non-2xx response becomes a *RemoteError
// carrying the server's error message, and a request that never got a
// response becomes a *TransportError. Raw transport errors never leak
// to callers unparsed.
package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const defaultTimeout = 10 * time.Second

// Client talks to the album shop API at a fixed base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// authClient returns an http.Client that injects the bearer token on
// every request, built on top of the base client's transport.
func (c *Client) authClient(ctx context.Context, token string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	})
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(ctx, src)
}

// do performs one API call. token may be empty for public routes.
// payload (if non-nil) is sent as a JSON body; out (if non-nil)
// receives the decoded 2xx response body.
func (c *Client) do(ctx context.Context, token, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hc := c.httpClient
	if token != "" {
		hc = c.authClient(ctx, token)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newRemoteError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
