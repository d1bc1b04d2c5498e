package authpad_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/authpad/authpad"
)

func TestRegisterSuccess(t *testing.T) {
	eng, _, _ := newTestEngine(t, testConfig())

	info, err := eng.Register(context.Background(), authpad.RegisterRequest{
		Email:    "Alice@Example.com",
		Username: "alice",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, info.ID)
	require.Equal(t, "alice@example.com", info.Email)
	require.Equal(t, "alice", info.Username)
	require.False(t, info.IsVerified)
	require.False(t, info.CreatedAt.IsZero())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	eng, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	_, err := eng.Register(ctx, authpad.RegisterRequest{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	_, err = eng.Register(ctx, authpad.RegisterRequest{
		Email:    "ALICE@example.com",
		Password: "another password entirely",
	})
	require.ErrorIs(t, err, authpad.ErrDuplicateEmail)
}

func TestRegisterRejectsBadEmail(t *testing.T) {
	eng, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	for _, email := range []string{"", "plainstring", "a@", "@example.com", "a b@example.com"} {
		_, err := eng.Register(ctx, authpad.RegisterRequest{
			Email:    email,
			Password: "correct horse battery",
		})
		require.ErrorIs(t, err, authpad.ErrInvalidInput, "email %q", email)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	eng, _, _ := newTestEngine(t, testConfig())

	_, err := eng.Register(context.Background(), authpad.RegisterRequest{
		Email:    "alice@example.com",
		Password: "short",
	})
	require.ErrorIs(t, err, authpad.ErrInvalidInput)
}

func TestRegisterLongPasswordRoundTrips(t *testing.T) {
	eng, _, capture := newTestEngine(t, testConfig())
	ctx := context.Background()

	long := strings.Repeat("a", 100)
	registerVerified(t, eng, capture, "alice@example.com", long)

	_, err := eng.Login(ctx, "alice@example.com", long)
	require.NoError(t, err)

	// Only the first 72 bytes are significant to the hash.
	_, err = eng.Login(ctx, "alice@example.com", strings.Repeat("a", 72))
	require.NoError(t, err)
	_, err = eng.Login(ctx, "alice@example.com", strings.Repeat("a", 71))
	require.ErrorIs(t, err, authpad.ErrInvalidCredentials)
}
