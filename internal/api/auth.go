package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/tubetip/tubetip/internal/model"
)

// loginResponse is what the backend returns from login, register, and
// refresh: the account's funnel state plus a fresh token pair.
type loginResponse struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	HasProfile      bool   `json:"has_profile"`
	IsBankConnected bool   `json:"is_bank_connected"`
	AccessToken     string `json:"access_token"`
	RefreshToken    string `json:"refresh_token"`
}

func (r loginResponse) user() *model.User {
	return &model.User{
		ID:              r.ID,
		Username:        r.Username,
		Email:           r.Email,
		HasProfile:      r.HasProfile,
		IsBankConnected: r.IsBankConnected,
	}
}

func (r loginResponse) tokens() TokenPair {
	return TokenPair{Access: r.AccessToken, Refresh: r.RefreshToken}
}

// Login exchanges credentials for the account record and a token pair.
//
// The backend's login endpoint is OAuth2-password-grant shaped: it takes
// form-encoded username/password, where "username" carries the email.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.User, TokenPair, error) {
	form := url.Values{}
	form.Set("username", creds.Email)
	form.Set("password", creds.Password)

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login", TokenPair{},
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, TokenPair{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var res loginResponse
	if err := c.do(req, &res, "session"); err != nil {
		return nil, TokenPair{}, err
	}

	user := res.user()
	if user.Email == "" {
		// Login responses omit the email; it is known from the form.
		user.Email = creds.Email
	}
	return user, res.tokens(), nil
}

// Register creates a creator account. The backend logs the new account in
// as part of creation, so the response carries a token pair too.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.User, TokenPair, error) {
	var res loginResponse
	if err := c.postJSON(ctx, "/creator/create", TokenPair{}, reg, &res, "account"); err != nil {
		return nil, TokenPair{}, err
	}
	return res.user(), res.tokens(), nil
}

// Refresh trades the refresh token for a new pair. The old pair is dead
// either way: on failure the caller must treat the session as ended.
func (c *Client) Refresh(ctx context.Context, pair TokenPair) (TokenPair, error) {
	body := map[string]string{"refresh_token": pair.Refresh}

	var res loginResponse
	if err := c.postJSON(ctx, "/auth/refresh", TokenPair{}, body, &res, "session"); err != nil {
		return TokenPair{}, err
	}
	return res.tokens(), nil
}

// Logout invalidates the backend session for this token pair.
func (c *Client) Logout(ctx context.Context, pair TokenPair) error {
	return c.postJSON(ctx, "/auth/logout", pair, struct{}{}, nil, "session")
}

// CurrentUser fetches the identity behind the token pair. An expired or
// missing credential comes back as apperror.ErrAuth.
func (c *Client) CurrentUser(ctx context.Context, pair TokenPair) (*model.User, error) {
	var user model.User
	if err := c.getJSON(ctx, "/creator/me", pair, &user, "user"); err != nil {
		return nil, err
	}
	return &user, nil
}
