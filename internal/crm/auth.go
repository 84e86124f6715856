package crm

import (
	"context"
	"net/http"
)

// AuthResult is returned by login and signup.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	UserName    string `json:"user_name"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var result AuthResult
	if err := c.Do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Signup creates an operator account and returns its access token.
func (c *Client) Signup(ctx context.Context, email, password, name string) (*AuthResult, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}{Email: email, Password: password, Name: name}

	var result AuthResult
	if err := c.Do(ctx, http.MethodPost, "/auth/signup", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
