// Package auth keeps the signed-in user's bearer token on disk.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ratemyrecipe/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// FileName is the credential file inside the config directory.
const FileName = "credentials.json"

// Credentials is the persisted form of a session.
type Credentials struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	UserID   int64  `json:"user_id,omitempty"`
	Email    string `json:"email,omitempty"`
}

// FromSession converts a login result.
func FromSession(s model.Session) Credentials {
	return Credentials{
		Token:    s.Token,
		Username: s.Username,
		UserID:   s.UserID,
		Email:    s.Email,
	}
}

// Store reads and writes the credential file. Every read goes to disk, so a
// login from another terminal is picked up without restarting.
type Store struct {
	path string
	log  *zap.Logger
	now  func() time.Time
}

// NewStore creates a store for <dir>/credentials.json.
func NewStore(dir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		path: filepath.Join(dir, FileName),
		log:  log.Named("auth"),
		now:  time.Now,
	}
}

// Path returns the credential file path.
func (s *Store) Path() string {
	return s.path
}

// Save writes the credentials with owner-only permissions.
func (s *Store) Save(c Credentials) error {
	if strings.TrimSpace(c.Token) == "" {
		return errors.New("refusing to save empty token")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	s.log.Info("credentials saved", zap.String("user", c.Username))
	return nil
}

// Load returns the stored credentials. A missing file yields ok == false.
func (s *Store) Load() (Credentials, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, false, nil
	}
	if err != nil {
		return Credentials{}, false, fmt.Errorf("failed to read credentials: %w", err)
	}

	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return Credentials{}, false, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if c.Token == "" {
		return Credentials{}, false, nil
	}
	return c, true, nil
}

// Clear removes the credential file. Clearing when signed out is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	s.log.Info("credentials cleared")
	return nil
}

// Credential returns the stored token. Unreadable files and expired JWTs
// count as signed out.
func (s *Store) Credential() (string, bool) {
	c, ok, err := s.Load()
	if err != nil {
		s.log.Warn("ignoring unreadable credentials", zap.Error(err))
		return "", false
	}
	if !ok {
		return "", false
	}
	if claims, isJWT := Inspect(c.Token); isJWT && claims.Expired(s.now()) {
		s.log.Debug("stored token expired", zap.Time("expires_at", claims.ExpiresAt))
		return "", false
	}
	return c.Token, true
}

// Claims is the part of a JWT the client cares about.
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp
}

// Expired reports whether the token expired before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Inspect reads the claims of a JWT without verifying its signature; the
// backend does that. ok is false for tokens that are not JWTs.
func Inspect(token string) (Claims, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, false
	}

	var c Claims
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		c.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, true
}

// Local is the AuthContext used with the on-disk favorite store: the
// credential is simply the local user name.
type Local struct {
	User string
}

// Credential implements collection.AuthContext.
func (l Local) Credential() (string, bool) {
	return l.User, l.User != ""
}
