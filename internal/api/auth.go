package api

import (
	"context"
	"errors"
	"strings"

	"ratemyrecipe/internal/model"
)

// ErrNoToken is returned when the backend accepted the credentials but sent
// no token back.
var ErrNoToken = errors.New("login response carried no token")

// Login exchanges a username and password for a session.
func (c *Client) Login(ctx context.Context, username, password string) (model.Session, error) {
	var resp sessionDTO
	err := c.do(ctx, request{
		method:   "POST",
		endpoint: "/auth/login",
		path:     "/auth/login",
		body: map[string]string{
			"username": strings.TrimSpace(username),
			"password": password,
		},
	}, &resp)
	if err != nil {
		return model.Session{}, err
	}
	return resp.session()
}

// Signup registers a new account. The backend signs the new user in, so a
// session is returned as well.
func (c *Client) Signup(ctx context.Context, username, email, password string) (model.Session, error) {
	var resp sessionDTO
	err := c.do(ctx, request{
		method:   "POST",
		endpoint: "/auth/signup",
		path:     "/auth/signup",
		body: map[string]string{
			"username": strings.TrimSpace(username),
			"email":    strings.TrimSpace(email),
			"password": password,
		},
	}, &resp)
	if err != nil {
		return model.Session{}, err
	}
	return resp.session()
}

type sessionDTO struct {
	Token       string   `json:"token"`
	AccessToken string   `json:"accessToken"`
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
}

func (s sessionDTO) session() (model.Session, error) {
	token := s.Token
	if token == "" {
		token = s.AccessToken
	}
	if token == "" {
		return model.Session{}, ErrNoToken
	}
	return model.Session{
		Token:    token,
		UserID:   s.ID,
		Username: s.Username,
		Email:    s.Email,
		Roles:    s.Roles,
	}, nil
}
