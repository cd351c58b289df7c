package shopapi

import (
	"context"
	"fmt"
	"net/http"
)

// Register creates a new account. Registering with the admin role
// requires the matching admin code in the request.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, "", http.MethodPost, "/register", req, nil)
}

// Login exchanges credentials for an access token and the account's
// username.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	payload := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var resp LoginResponse
	if err := c.do(ctx, "", http.MethodPost, "/login", payload, &resp); err != nil {
		return LoginResponse{}, err
	}
	return resp, nil
}

// Logout invalidates the token server-side.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, token, http.MethodPost, "/logout", nil, nil)
}

// CheckToken probes /protected. A nil return means the token is
// currently valid; any error (remote or transport) means it must not
// be trusted.
func (c *Client) CheckToken(ctx context.Context, token string) error {
	return c.do(ctx, token, http.MethodGet, "/protected", nil, nil)
}

// CheckAdmin probes /admin-only, which succeeds only for admin tokens.
func (c *Client) CheckAdmin(ctx context.Context, token string) error {
	return c.do(ctx, token, http.MethodGet, "/admin-only", nil, nil)
}

// GetUser fetches the public profile for a user id.
func (c *Client) GetUser(ctx context.Context, id int) (User, error) {
	var u User
	if err := c.do(ctx, "", http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// CurrentUser fetches the profile of the token's owner.
func (c *Client) CurrentUser(ctx context.Context, token string) (User, error) {
	var u User
	if err := c.do(ctx, token, http.MethodGet, "/users/me", nil, &u); err != nil {
		return User{}, err
	}
	return u, nil
}
