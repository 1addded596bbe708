package api

import (
	"context"
	"errors"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	if err := c.postJSON(ctx, "users/login/", loginRequest{Username: username, Password: password}, &resp); err != nil {
		return "", err
	}
	if resp.Access == "" {
		return "", errors.New("login response has no access token")
	}
	return resp.Access, nil
}

// Signup creates an account. The caller logs in separately.
func (c *Client) Signup(ctx context.Context, username, email, password string) error {
	return c.postJSON(ctx, "users/signup/", signupRequest{Username: username, Email: email, Password: password}, nil)
}
