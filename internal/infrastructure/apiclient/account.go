package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/lastcallsoftware/trackeats/internal/ports/outbound"
	"github.com/lastcallsoftware/trackeats/pkg/errors"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type confirmedResponse struct {
	Confirmed bool `json:"confirmed"`
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "/login",
		path:     "/login",
		body:     loginRequest{Username: username, Password: password},
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", errors.NewAppError(errors.CodeExternalServiceError, "Login failed", "no access token in response")
	}
	return resp.AccessToken, nil
}

// Register creates a new user account. The backend sends a confirmation
// email; the account cannot log in until it is confirmed.
func (c *Client) Register(ctx context.Context, req outbound.RegisterRequest) error {
	return c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "/register",
		path:     "/register",
		body:     req,
	}, nil)
}

// IsConfirmed reports whether the user has followed the confirmation link
func (c *Client) IsConfirmed(ctx context.Context, username string) (bool, error) {
	var resp confirmedResponse
	err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "/user/{username}/confirmed",
		path:     "/user/" + url.PathEscape(username) + "/confirmed",
	}, &resp)
	if err != nil {
		return false, err
	}
	return resp.Confirmed, nil
}
