package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tmarchal/pagegrid/internal/config"
	pgerrors "github.com/tmarchal/pagegrid/pkg/errors"
)

// tokenStore holds issued bearer tokens in memory. Tokens do not survive a
// restart; clients re-login and retry.
type tokenStore struct {
	mu       sync.Mutex
	sessions map[string]tokenSession
}

type tokenSession struct {
	username string
	expires  time.Time
}

func newTokenStore() *tokenStore {
	return &tokenStore{sessions: make(map[string]tokenSession)}
}

// Issue creates a token for username valid for ttl.
func (t *tokenStore) Issue(username string, ttl time.Duration) (string, time.Time) {
	token := uuid.NewString()
	expires := time.Now().Add(ttl)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[token] = tokenSession{username: username, expires: expires}
	return token, expires
}

// Lookup resolves a token to its username. Expired tokens are removed.
func (t *tokenStore) Lookup(token string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess, ok := t.sessions[token]
	if !ok {
		return "", false
	}
	if time.Now().After(sess.expires) {
		delete(t.sessions, token)
		return "", false
	}
	return sess.username, true
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, pgerrors.ErrCodeInvalidConfig, "malformed login body")
		return
	}

	user := s.cfg.FindUser(req.Username)
	if user == nil || subtle.ConstantTimeCompare([]byte(user.Password), []byte(req.Password)) != 1 {
		writeError(w, http.StatusUnauthorized, pgerrors.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	token, expires := s.tokens.Issue(user.Username, s.cfg.Server.SessionTTL.Duration)
	s.logger.Info("login", "user", user.Username)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires})
}

type ctxKey int

const userKey ctxKey = 0

// requireAuth resolves the bearer token and attaches the user to the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, pgerrors.ErrCodeUnauthorized, "missing bearer token")
			return
		}

		username, ok := s.tokens.Lookup(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, pgerrors.ErrCodeUnauthorized, "invalid or expired token")
			return
		}
		user := s.cfg.FindUser(username)
		if user == nil {
			// Account removed while the token was live.
			writeError(w, http.StatusUnauthorized, pgerrors.ErrCodeUnauthorized, "unknown account")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// userFrom returns the authenticated user attached by requireAuth.
func userFrom(ctx context.Context) *config.User {
	u, _ := ctx.Value(userKey).(*config.User)
	return u
}
