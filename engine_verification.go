package authpad

import (
	"context"
	"errors"
	"fmt"

	apmail "github.com/authpad/authpad/mail"
	"github.com/authpad/authpad/otp"
)

// RequestEmailVerification issues a fresh verification code for the user and
// hands the plaintext to the mail transport. Any previously active token of
// the same type is closed first, so at most one token is live per user.
//
// A delivery failure surfaces as [ErrDeliveryFailed] but the token row is
// kept: the code may still arrive late, and a retry is always available by
// calling this operation again.
func (e *Engine) RequestEmailVerification(ctx context.Context, email string) error {
	if e == nil || e.store == nil || e.mailer == nil {
		return ErrEngineNotReady
	}

	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := e.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := otp.Generate(e.config.OTP.Digits)
	if err != nil {
		return err
	}

	now := e.now()
	token := &OTPToken{
		ID:          NewID(),
		UserID:      user.ID,
		Type:        OTPTypeEmailVerification,
		TokenHash:   otp.Hash(code),
		Destination: email,
		ExpiresAt:   now.Add(e.config.OTP.TTL),
		Attempts:    0,
		CreatedAt:   now,
	}
	if err := e.store.CreateOTP(ctx, token); err != nil {
		return err
	}

	subject, html, text := apmail.VerificationMessage(email, code, e.config.OTP.TTL)
	if err := e.mailer.Send(ctx, email, subject, html, text); err != nil {
		e.log.WarnContext(ctx, "verification mail not delivered", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	e.log.InfoContext(ctx, "verification code issued", "user_id", user.ID)
	return nil
}

// ConfirmEmailVerification checks a submitted code against the active token
// and, on a match, marks the user verified in the same step that closes the
// token. Expiry and attempt exhaustion are detected lazily here, not by a
// background sweep. Re-checking an already-verified user succeeds without
// touching token rows.
func (e *Engine) ConfirmEmailVerification(ctx context.Context, email, code string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := e.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return nil
	}

	token, err := e.store.ActiveOTP(ctx, user.ID, OTPTypeEmailVerification, email)
	if err != nil {
		return err
	}

	now := e.now()
	if !token.ExpiresAt.After(now) {
		if closeErr := e.store.CloseOTP(ctx, token.ID, now); closeErr != nil {
			return closeErr
		}
		return ErrTokenExpired
	}
	if token.Attempts >= e.config.OTP.MaxAttempts {
		if closeErr := e.store.CloseOTP(ctx, token.ID, now); closeErr != nil {
			return closeErr
		}
		return ErrTooManyAttempts
	}

	ok, err := otp.Verify(code, token.TokenHash, e.config.OTP.Digits)
	if err != nil {
		if errors.Is(err, otp.ErrFormat) {
			// Malformed input is a client bug, not an attack signal: no
			// attempt is consumed.
			return ErrInvalidInput
		}
		return err
	}
	if !ok {
		if _, recErr := e.store.RecordOTPFailure(ctx, token.ID); recErr != nil {
			return recErr
		}
		return ErrInvalidToken
	}

	if err := e.store.ConsumeOTP(ctx, token.ID, user.ID, now); err != nil {
		return err
	}

	e.log.InfoContext(ctx, "email verified", "user_id", user.ID)
	return nil
}
