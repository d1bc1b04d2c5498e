package authpad

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/authpad/authpad/jwt"
	apmail "github.com/authpad/authpad/mail"
	"github.com/authpad/authpad/password"
)

// Engine composes the password policy, login guard, token issuer, and OTP
// engine into the register / login / refresh / verify-email / logout
// operations. Configure it once through [Builder] and treat it as immutable.
type Engine struct {
	config  Config
	store   Store
	mailer  apmail.Sender
	revoker Revoker
	tokens  *jwt.Manager
	policy  *password.Policy
	log     *slog.Logger

	// Injection points for tests.
	now       func() time.Time
	dummyHash string
}

// Login authenticates by email and password and returns an access+refresh
// pair. Unknown emails and wrong passwords are indistinguishable in both
// error and, as far as the hash cost dominates, latency. Credential failures
// against an existing account feed the lockout counter; once the account is
// locked, attempts are rejected before any password evaluation.
func (e *Engine) Login(ctx context.Context, email, plainPassword string) (*TokenPair, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := e.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn a hash verification so this path costs the same as a
			// wrong password against a real account. No row is touched, so
			// enumeration cannot be told apart by side effects either.
			e.policy.Verify(plainPassword, e.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := e.lockoutPrecheck(user); err != nil {
		// The locked branch does the same dummy work as the unknown-email
		// branch so the two 401-class rejections stay near-identical in cost.
		e.policy.Verify(plainPassword, e.dummyHash)
		return nil, err
	}

	if !e.policy.Verify(plainPassword, user.PasswordHash) {
		if recErr := e.lockoutOnFailure(ctx, user); recErr != nil {
			return nil, recErr
		}
		return nil, ErrInvalidCredentials
	}

	if err := e.lockoutOnSuccess(ctx, user); err != nil {
		return nil, err
	}

	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	pair, err := e.issuePair(user.Email)
	if err != nil {
		return nil, err
	}

	e.log.InfoContext(ctx, "login succeeded", "user_id", user.ID)
	return pair, nil
}

// Refresh exchanges a valid refresh token for a fresh access+refresh pair.
// When a [Revoker] is configured the rotated-out refresh token is denylisted
// for the remainder of its lifetime.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if err := e.checkRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}

	user, err := e.store.GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	pair, err := e.issuePair(user.Email)
	if err != nil {
		return nil, err
	}

	e.revokeRemainder(ctx, claims)

	e.log.InfoContext(ctx, "token pair rotated", "user_id", user.ID)
	return pair, nil
}

// Logout requires a currently valid access token. With a configured
// [Revoker] the token id is denylisted until its natural expiry; otherwise
// the result is a confirmation only and the token remains valid.
func (e *Engine) Logout(ctx context.Context, accessToken string) (*LogoutResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if err := e.checkRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}
	if _, err := e.identityFromClaims(ctx, claims); err != nil {
		return nil, err
	}

	revoked := false
	if e.revoker != nil {
		if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
			if err := e.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
				return nil, err
			}
			revoked = true
		}
	}

	return &LogoutResult{
		Message:   "Successfully logged out",
		Revoked:   revoked,
		Timestamp: e.now().UTC(),
	}, nil
}

// CurrentUser validates an access token and resolves it to a typed
// [Identity]. Missing, unverified, and deactivated users all collapse into
// [ErrTokenInvalid] so the response leaks nothing about account state.
func (e *Engine) CurrentUser(ctx context.Context, accessToken string) (*Identity, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if err := e.checkRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}

	return e.identityFromClaims(ctx, claims)
}

func (e *Engine) identityFromClaims(ctx context.Context, claims *jwt.Claims) (*Identity, error) {
	user, err := e.store.GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsVerified || !user.IsActive {
		return nil, ErrTokenInvalid
	}

	return &Identity{
		ID:        user.ID,
		Email:     user.Email,
		Verified:  user.IsVerified,
		Active:    user.IsActive,
		Superuser: user.IsSuperuser,
	}, nil
}

func (e *Engine) issuePair(subject string) (*TokenPair, error) {
	access, err := e.tokens.IssueAccess(subject, e.config.Token.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := e.tokens.IssueRefresh(subject, e.config.Token.RefreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(e.config.Token.AccessTTL.Seconds()),
	}, nil
}

// checkRevoked consults the denylist when one is configured. A backend error
// fails closed: a token that cannot be proven live is not accepted.
func (e *Engine) checkRevoked(ctx context.Context, jti string) error {
	if e.revoker == nil {
		return nil
	}
	revoked, err := e.revoker.IsRevoked(ctx, jti)
	if err != nil || revoked {
		return ErrTokenInvalid
	}
	return nil
}

// revokeRemainder denylists a rotated-out token for the rest of its
// lifetime. Best-effort: the new pair is already issued and rotation must
// not fail because the denylist write did.
func (e *Engine) revokeRemainder(ctx context.Context, claims *jwt.Claims) {
	if e.revoker == nil || claims.ExpiresAt == nil {
		return
	}
	if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
		if err := e.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
			e.log.WarnContext(ctx, "rotated refresh token not denylisted", "error", err)
		}
	}
}

// normalizeEmail lowercases and trims the address and rejects anything that
// is not a plain addr-spec.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidInput
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidInput
	}
	return email, nil
}
