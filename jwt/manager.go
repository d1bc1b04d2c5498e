// Package jwt issues and verifies the engine's signed access and refresh
// tokens. Tokens are stateless and self-verifying: subject, expiry, issue
// time, a unique token id, and a type discriminator, signed with a single
// process-wide HMAC secret.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TypeRefresh is the claim value carried by refresh tokens. Access tokens
// omit the field entirely.
const TypeRefresh = "refresh"

// ErrInvalid covers every verification failure: bad signature, malformed
// structure, expiry, wrong type. Sub-checks are deliberately collapsed so a
// caller probing tokens learns nothing about which check failed.
var ErrInvalid = errors.New("invalid token")

// Config fixes the signing parameters at construction time.
type Config struct {
	Secret    []byte
	Algorithm string // "HS256", "HS384", "HS512"
	Leeway    time.Duration
}

// Claims is the signed payload. Subject is the user's normalized email.
type Claims struct {
	Type string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens. Safe for concurrent use.
type Manager struct {
	config Config
	method jwt.SigningMethod
	now    func() time.Time
}

// NewManager validates the signing configuration. The secret length policy
// lives in the engine config; here only structural requirements are checked.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt: secret required")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("jwt: invalid leeway")
	}

	var method jwt.SigningMethod
	switch cfg.Algorithm {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, errors.New("jwt: unsupported signing algorithm")
	}

	return &Manager{config: cfg, method: method, now: time.Now}, nil
}

// IssueAccess signs an access token for subject expiring after ttl. A fresh
// jti goes into every token so two otherwise identical issuances stay
// distinguishable and revocable by id.
func (m *Manager) IssueAccess(subject string, ttl time.Duration) (string, error) {
	return m.issue(subject, ttl, "")
}

// IssueRefresh signs a refresh token: same shape as access plus the type
// discriminator.
func (m *Manager) IssueRefresh(subject string, ttl time.Duration) (string, error) {
	return m.issue(subject, ttl, TypeRefresh)
}

func (m *Manager) issue(subject string, ttl time.Duration, tokenType string) (string, error) {
	if subject == "" {
		return "", errors.New("jwt: empty subject")
	}
	if ttl <= 0 {
		return "", errors.New("jwt: non-positive ttl")
	}

	now := m.now()
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(m.method, claims).SignedString(m.config.Secret)
}

// VerifyAccess validates signature and expiry and rejects refresh tokens.
func (m *Manager) VerifyAccess(tokenStr string) (*Claims, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Type != "" {
		return nil, ErrInvalid
	}
	return claims, nil
}

// VerifyRefresh validates signature and expiry and requires the refresh type
// discriminator.
func (m *Manager) VerifyRefresh(tokenStr string) (*Claims, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Type != TypeRefresh {
		return nil, ErrInvalid
	}
	return claims, nil
}

func (m *Manager) parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, ErrInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalid
	}

	return claims, nil
}
