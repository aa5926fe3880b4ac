package auth

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"ratemyrecipe/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSaveLoadClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "config")
	s := NewStore(dir, nil)

	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	want := FromSession(model.Session{Token: "abc", Username: "bruno", UserID: 7, Email: "b@example.com"})
	require.NoError(t, s.Save(want))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
	_, ok, err = s.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveRejectsEmptyToken(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	assert.Error(t, s.Save(Credentials{Username: "bruno"}))
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, nil)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	_, _, err := s.Load()
	assert.Error(t, err)

	_, ok := s.Credential()
	assert.False(t, ok)
}

func TestCredentialOpaqueToken(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	require.NoError(t, s.Save(Credentials{Token: "opaque-token"}))

	tok, ok := s.Credential()
	assert.True(t, ok)
	assert.Equal(t, "opaque-token", tok)
}

func TestCredentialExpiredJWT(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(t.TempDir(), nil)
	s.now = func() time.Time { return now }

	live := signed(t, jwt.MapClaims{"sub": "bruno", "exp": now.Add(time.Hour).Unix()})
	require.NoError(t, s.Save(Credentials{Token: live}))
	tok, ok := s.Credential()
	assert.True(t, ok)
	assert.Equal(t, live, tok)

	expired := signed(t, jwt.MapClaims{"sub": "bruno", "exp": now.Add(-time.Minute).Unix()})
	require.NoError(t, s.Save(Credentials{Token: expired}))
	_, ok = s.Credential()
	assert.False(t, ok)
}

func TestInspect(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	claims, ok := Inspect(signed(t, jwt.MapClaims{"sub": "anna", "exp": exp.Unix()}))
	require.True(t, ok)
	assert.Equal(t, "anna", claims.Subject)
	assert.True(t, claims.ExpiresAt.Equal(exp))
	assert.False(t, claims.Expired(exp.Add(-time.Second)))
	assert.True(t, claims.Expired(exp))

	claims, ok = Inspect(signed(t, jwt.MapClaims{"sub": "anna"}))
	require.True(t, ok)
	assert.True(t, claims.ExpiresAt.IsZero())
	assert.False(t, claims.Expired(time.Now()))

	_, ok = Inspect("not-a-jwt")
	assert.False(t, ok)
}

func TestLocal(t *testing.T) {
	tok, ok := Local{User: "me"}.Credential()
	assert.True(t, ok)
	assert.Equal(t, "me", tok)

	_, ok = Local{}.Credential()
	assert.False(t, ok)
}

func TestWatchReportsChanges(t *testing.T) {
	s := NewStore(t.TempDir(), nil)

	var calls atomic.Int32
	stop, err := s.Watch(context.Background(), func() { calls.Add(1) })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, s.Save(Credentials{Token: "one"}))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	before := calls.Load()
	require.NoError(t, s.Clear())
	require.Eventually(t, func() bool { return calls.Load() > before }, 2*time.Second, 10*time.Millisecond)
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, nil)

	var calls atomic.Int32
	stop, err := s.Watch(context.Background(), func() { calls.Add(1) })
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api_url: x"), 0o600))
	time.Sleep(3 * watchDebounce)
	stop()
	stop()

	assert.Zero(t, calls.Load())
}
