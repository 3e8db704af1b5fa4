package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	pgerrors "github.com/tmarchal/pagegrid/pkg/errors"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is an authenticated session returned by [Login].
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login exchanges credentials for a bearer token at the service's
// /auth/login endpoint. Pass the token to [New].
func Login(ctx context.Context, baseURL, username, password string) (*Session, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, pgerrors.Wrap(pgerrors.ErrCodeInternal, err, "encode login")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, pgerrors.Wrap(pgerrors.ErrCodeInternal, err, "build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	httpc := &http.Client{Timeout: 15 * time.Second}
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, pgerrors.Wrap(pgerrors.ErrCodeNetwork, err, "login %s", baseURL)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, pgerrors.New(pgerrors.ErrCodeUnauthorized, "invalid credentials")
	default:
		return nil, pgerrors.New(pgerrors.ErrCodeNetwork, "login failed with status %d", resp.StatusCode)
	}

	var sess Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return nil, pgerrors.Wrap(pgerrors.ErrCodeNetwork, err, "decode login response")
	}
	return &sess, nil
}
