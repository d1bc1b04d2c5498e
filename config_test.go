package authpad

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("test-secret-key-0123456789abcdef")
	return cfg
}

func TestDefaultConfigNeedsSecret(t *testing.T) {
	require.Error(t, DefaultConfig().Validate())
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsShortSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Token.Secret = []byte("too short")
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownAlgorithm(t *testing.T) {
	cfg := validConfig()
	cfg.Token.Algorithm = "RS256"
	require.Error(t, cfg.Validate())

	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		cfg.Token.Algorithm = alg
		require.NoError(t, cfg.Validate())
	}
}

func TestValidateTokenTTLs(t *testing.T) {
	cfg := validConfig()
	cfg.Token.AccessTTL = 0
	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Token.RefreshTTL = cfg.Token.AccessTTL - time.Minute
	require.Error(t, cfg.Validate())
}

func TestValidatePasswordBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Password.MinBytes = 0
	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Password.MaxBytes = 100
	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Password.MinBytes = 80
	cfg.Password.MaxBytes = 72
	require.Error(t, cfg.Validate())
}

func TestValidateOTPBounds(t *testing.T) {
	cfg := validConfig()
	cfg.OTP.Digits = 3
	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.OTP.Digits = 11
	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.OTP.MaxAttempts = 0
	require.Error(t, cfg.Validate())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret-key-0123456789abcdef")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")
	t.Setenv("REFRESH_TOKEN_EXPIRE_DAYS", "7")
	t.Setenv("OTP_LENGTH", "8")
	t.Setenv("MAX_LOGIN_ATTEMPTS", "10")
	t.Setenv("FROM_EMAIL", "hello@example.com")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, cfg.Token.AccessTTL)
	require.Equal(t, 7*24*time.Hour, cfg.Token.RefreshTTL)
	require.Equal(t, 8, cfg.OTP.Digits)
	require.Equal(t, 10, cfg.Lockout.MaxAttempts)
	require.Equal(t, "hello@example.com", cfg.Mail.From)

	// Untouched settings keep their defaults.
	require.Equal(t, "HS256", cfg.Token.Algorithm)
	require.Equal(t, 3, cfg.OTP.MaxAttempts)
}

func TestFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := FromEnv()
	require.Error(t, err)
}
