package pilotsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Signup registers an account. The server emails a verification link.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signup", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail redeems the token from a verification email and returns a
// session token.
func (c *Client) VerifyEmail(ctx context.Context, token string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/auth/verify/"+url.PathEscape(token), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResendVerification(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	req := ResendVerificationRequest{Email: email}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/resend-verification", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user behind the client's token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
