package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewManager(Config{Secret: testSecret, Algorithm: "HS256"})
	require.NoError(t, err)
	return m
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	_, err := NewManager(Config{Secret: nil})
	require.Error(t, err)

	_, err = NewManager(Config{Secret: testSecret, Algorithm: "RS256"})
	require.Error(t, err)

	_, err = NewManager(Config{Secret: testSecret, Leeway: -time.Second})
	require.Error(t, err)
}

func TestIssueAccessClaims(t *testing.T) {
	m := newTestManager(t)
	before := time.Now()

	tok, err := m.IssueAccess("user@example.com", 20*time.Minute)
	require.NoError(t, err)

	claims, err := m.VerifyAccess(tok)
	require.NoError(t, err)
	require.Equal(t, "user@example.com", claims.Subject)
	require.Empty(t, claims.Type)
	require.NotEmpty(t, claims.ID)

	wantExpiry := before.Add(20 * time.Minute)
	require.WithinDuration(t, wantExpiry, claims.ExpiresAt.Time, 5*time.Second)
	require.WithinDuration(t, before, claims.IssuedAt.Time, 5*time.Second)
}

func TestJTIUniquePerIssuance(t *testing.T) {
	m := newTestManager(t)

	a, err := m.IssueAccess("user@example.com", time.Minute)
	require.NoError(t, err)
	b, err := m.IssueAccess("user@example.com", time.Minute)
	require.NoError(t, err)

	ca, err := m.VerifyAccess(a)
	require.NoError(t, err)
	cb, err := m.VerifyAccess(b)
	require.NoError(t, err)
	require.NotEqual(t, ca.ID, cb.ID)
}

func TestIssueEmptySubject(t *testing.T) {
	m := newTestManager(t)

	_, err := m.IssueAccess("", time.Minute)
	require.Error(t, err)
	_, err = m.IssueRefresh("", time.Minute)
	require.Error(t, err)
}

func TestTypeDiscriminatorEnforced(t *testing.T) {
	m := newTestManager(t)

	access, err := m.IssueAccess("user@example.com", time.Minute)
	require.NoError(t, err)
	refresh, err := m.IssueRefresh("user@example.com", time.Minute)
	require.NoError(t, err)

	// A refresh token is never accepted where an access token is required.
	_, err = m.VerifyAccess(refresh)
	require.ErrorIs(t, err, ErrInvalid)

	// And vice versa.
	_, err = m.VerifyRefresh(access)
	require.ErrorIs(t, err, ErrInvalid)

	claims, err := m.VerifyRefresh(refresh)
	require.NoError(t, err)
	require.Equal(t, TypeRefresh, claims.Type)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := newTestManager(t)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	tok, err := m.IssueAccess("user@example.com", time.Minute)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.VerifyAccess(tok)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestTamperedTokenRejected(t *testing.T) {
	m := newTestManager(t)

	tok, err := m.IssueAccess("user@example.com", time.Minute)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = m.VerifyAccess(tampered)
	require.ErrorIs(t, err, ErrInvalid)

	_, err = m.VerifyAccess("not-a-token")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestWrongSecretRejected(t *testing.T) {
	m := newTestManager(t)

	other, err := NewManager(Config{Secret: []byte("ffffffffffffffffffffffffffffffff")})
	require.NoError(t, err)

	tok, err := m.IssueAccess("user@example.com", time.Minute)
	require.NoError(t, err)

	_, err = other.VerifyAccess(tok)
	require.ErrorIs(t, err, ErrInvalid)
}
