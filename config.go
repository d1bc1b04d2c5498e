package authpad

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries every tunable the engine recognizes. Zero values are not
// usable; start from [DefaultConfig] or [FromEnv] and override.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	OTP      OTPConfig
	Lockout  LockoutConfig
	Mail     MailConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig configures the signed-claims token layer. Secret and Algorithm
// are fixed at process configuration time, never negotiated per request.
type TokenConfig struct {
	// Secret is the shared HMAC key. Fewer than 32 bytes aborts startup.
	Secret    []byte
	Algorithm string // "HS256" (default), "HS384", "HS512"

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig bounds accepted password lengths in bytes after UTF-8
// encoding and whitespace trim. MaxBytes is capped at 72 by the underlying
// hash primitive.
type PasswordConfig struct {
	MinBytes int
	MaxBytes int
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig configures the email-verification codes.
type OTPConfig struct {
	Digits      int
	TTL         time.Duration
	MaxAttempts int
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig configures the progressive account lockout applied on
// credential failures.
type LockoutConfig struct {
	MaxAttempts int
	Duration    time.Duration
}

/*
====================================
MAIL CONFIG
====================================
*/

// MailConfig configures outbound verification mail.
type MailConfig struct {
	From string
}

// DefaultConfig returns the documented defaults: 60-minute access tokens,
// 30-day refresh tokens, 6-digit codes valid 10 minutes with 3 attempts, and
// a 15-minute lockout after 5 failed logins. The token secret is left empty
// and must be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			Algorithm:  "HS256",
			AccessTTL:  60 * time.Minute,
			RefreshTTL: 30 * 24 * time.Hour,
		},
		Password: PasswordConfig{
			MinBytes: 8,
			MaxBytes: 72,
		},
		OTP: OTPConfig{
			Digits:      6,
			TTL:         10 * time.Minute,
			MaxAttempts: 3,
		},
		Lockout: LockoutConfig{
			MaxAttempts: 5,
			Duration:    15 * time.Minute,
		},
		Mail: MailConfig{
			From: "noreply@authpad.com",
		},
	}
}

// envConfig mirrors the environment surface of the deployment. Names follow
// the conventional SCREAMING_SNAKE settings this engine has always shipped
// with.
type envConfig struct {
	SecretKey                string `env:"SECRET_KEY,required"`
	Algorithm                string `env:"ALGORITHM" envDefault:"HS256"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"60"`
	RefreshTokenExpireDays   int    `env:"REFRESH_TOKEN_EXPIRE_DAYS" envDefault:"30"`

	OTPLength        int `env:"OTP_LENGTH" envDefault:"6"`
	OTPExpireMinutes int `env:"OTP_EXPIRE_MINUTES" envDefault:"10"`
	OTPMaxAttempts   int `env:"OTP_MAX_ATTEMPTS" envDefault:"3"`

	MaxLoginAttempts   int `env:"MAX_LOGIN_ATTEMPTS" envDefault:"5"`
	LockoutTimeMinutes int `env:"LOCKOUT_TIME_MINUTES" envDefault:"15"`

	FromEmail string `env:"FROM_EMAIL" envDefault:"noreply@authpad.com"`
}

// FromEnv builds a Config from process environment variables and validates
// it. A missing or short SECRET_KEY is a startup error, not a per-request
// degradation.
func FromEnv() (Config, error) {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Token.Secret = []byte(e.SecretKey)
	cfg.Token.Algorithm = e.Algorithm
	cfg.Token.AccessTTL = time.Duration(e.AccessTokenExpireMinutes) * time.Minute
	cfg.Token.RefreshTTL = time.Duration(e.RefreshTokenExpireDays) * 24 * time.Hour
	cfg.OTP.Digits = e.OTPLength
	cfg.OTP.TTL = time.Duration(e.OTPExpireMinutes) * time.Minute
	cfg.OTP.MaxAttempts = e.OTPMaxAttempts
	cfg.Lockout.MaxAttempts = e.MaxLoginAttempts
	cfg.Lockout.Duration = time.Duration(e.LockoutTimeMinutes) * time.Minute
	cfg.Mail.From = e.FromEmail

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that must abort startup.
func (c Config) Validate() error {
	if len(c.Token.Secret) < 32 {
		return errors.New("config: token secret must be at least 32 bytes")
	}
	switch c.Token.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("config: unsupported signing algorithm %q", c.Token.Algorithm)
	}
	if c.Token.AccessTTL <= 0 || c.Token.RefreshTTL <= 0 {
		return errors.New("config: token TTLs must be positive")
	}
	if c.Token.RefreshTTL < c.Token.AccessTTL {
		return errors.New("config: refresh TTL must not be shorter than access TTL")
	}
	if c.Password.MinBytes < 1 || c.Password.MinBytes > c.Password.MaxBytes {
		return errors.New("config: invalid password length bounds")
	}
	if c.Password.MaxBytes > 72 {
		return errors.New("config: password max bytes cannot exceed 72")
	}
	if c.OTP.Digits < 4 || c.OTP.Digits > 10 {
		return errors.New("config: otp digits must be between 4 and 10")
	}
	if c.OTP.TTL <= 0 {
		return errors.New("config: otp TTL must be positive")
	}
	if c.OTP.MaxAttempts < 1 {
		return errors.New("config: otp max attempts must be at least 1")
	}
	if c.Lockout.MaxAttempts < 1 {
		return errors.New("config: lockout max attempts must be at least 1")
	}
	if c.Lockout.Duration <= 0 {
		return errors.New("config: lockout duration must be positive")
	}
	if c.Mail.From == "" {
		return errors.New("config: mail from address required")
	}
	return nil
}
