package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"expo-admin/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Authenticate exchanges credentials for a session token.
func (c *Client) Authenticate(ctx context.Context, email, password string) (domain.Session, error) {
	resp, err := c.request(ctx).
		SetBody(loginRequest{Email: email, Password: password}).
		Post("/auth/login")
	if err != nil {
		return domain.Session{}, c.check("login", resp, err)
	}
	switch resp.StatusCode() {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	if err := c.check("login", resp, nil); err != nil {
		return domain.Session{}, err
	}

	var session domain.Session
	if err := json.Unmarshal(resp.Body(), &session); err != nil {
		return domain.Session{}, fmt.Errorf("decode login: %w", err)
	}
	if strings.TrimSpace(session.Token) == "" {
		return domain.Session{}, fmt.Errorf("login: %w: empty token", domain.ErrServer)
	}
	if session.Email == "" {
		session.Email = email
	}
	return session, nil
}

// VerifySession checks a token against GET /auth/me without touching the
// configured token source.
func (c *Client) VerifySession(ctx context.Context, token string) error {
	resp, err := c.request(ctx).SetAuthToken(token).Get("/auth/me")
	if err != nil {
		return c.check("verify session", resp, err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return fmt.Errorf("verify session: %w", domain.ErrUnauthorized)
	}
	return c.check("verify session", resp, nil)
}
