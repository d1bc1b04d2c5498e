package authpad

import (
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"time"

	"crypto/rand"

	"github.com/authpad/authpad/jwt"
	"github.com/authpad/authpad/mail"
	"github.com/authpad/authpad/password"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the engine methods are called.
type Builder struct {
	config  Config
	store   Store
	mailer  mail.Sender
	revoker Revoker
	logger  *slog.Logger

	built bool
}

// New starts a Builder with [DefaultConfig]. The token secret still has to be
// supplied through [Builder.WithConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore sets the persistence implementation. Required.
func (b *Builder) WithStore(s Store) *Builder {
	b.store = s
	return b
}

// WithMailer sets the outbound mail transport. Required for the
// email-verification flow.
func (b *Builder) WithMailer(m mail.Sender) *Builder {
	b.mailer = m
	return b
}

// WithRevoker enables the optional server-side token denylist. Without it,
// logout is a confirmation only and tokens expire naturally.
func (b *Builder) WithRevoker(r Revoker) *Builder {
	b.revoker = r
	return b
}

// WithLogger sets the structured logger. Defaults to a discard logger.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// Build validates the configuration and wires the engine. A missing or short
// token secret fails here, at startup, never per-request.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, errors.New("store is required")
	}
	if b.mailer == nil {
		return nil, errors.New("mailer is required")
	}

	tokens, err := jwt.NewManager(jwt.Config{
		Secret:    b.config.Token.Secret,
		Algorithm: b.config.Token.Algorithm,
	})
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	policy := password.New(b.config.Password.MinBytes)

	// Hash of a throwaway random value, verified on the unknown-email login
	// path so its latency matches the known-email path.
	dummyHash, err := makeDummyHash(policy)
	if err != nil {
		return nil, err
	}

	return &Engine{
		config:    b.config,
		store:     b.store,
		mailer:    b.mailer,
		revoker:   b.revoker,
		tokens:    tokens,
		policy:    policy,
		log:       logger,
		now:       time.Now,
		dummyHash: dummyHash,
	}, nil
}

func makeDummyHash(policy *password.Policy) (string, error) {
	buf := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}
	return policy.Hash(hex.EncodeToString(buf))
}
