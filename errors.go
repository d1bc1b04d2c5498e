package authpad

import "errors"

// Sentinel errors returned by Engine operations. All are recoverable at the
// caller boundary; the HTTP layer maps them to whatever status codes it wants.
var (
	// ErrInvalidInput marks malformed request data: bad email shape, password
	// outside the length policy, or a malformed OTP code. Safe to report
	// verbatim to the caller.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateEmail is returned by Register when the normalized email is
	// already taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUserNotFound is returned when no user exists for the given key.
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyVerified is returned when requesting verification for a user
	// whose email is already confirmed.
	ErrAlreadyVerified = errors.New("email already verified")
	// ErrInvalidCredentials covers both unknown email and wrong password; the
	// message must not reveal which field was wrong.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrAccountLocked is returned while the lockout window is open. The
	// attempt is rejected before any password evaluation.
	ErrAccountLocked = errors.New("account temporarily locked")
	// ErrEmailNotVerified rejects login until the email-verification flow
	// completes.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrAccountDeactivated rejects login for deactivated users.
	ErrAccountDeactivated = errors.New("account deactivated")
	// ErrTokenInvalid covers bad signature, malformed structure, expiry, and
	// wrong token type. Sub-checks are never distinguished.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when the active OTP token has passed its
	// expiry; the token is closed as part of the check.
	ErrTokenExpired = errors.New("verification code expired")
	// ErrNoActiveToken is returned when no open OTP token exists for the user.
	ErrNoActiveToken = errors.New("no active verification code")
	// ErrTooManyAttempts is returned once the OTP attempt budget is exhausted;
	// the token is closed and a fresh request is required.
	ErrTooManyAttempts = errors.New("too many verification attempts")
	// ErrInvalidToken is returned for a well-formed but wrong OTP code. One
	// attempt is consumed.
	ErrInvalidToken = errors.New("invalid verification code")
	// ErrDeliveryFailed signals a mail transport failure. The OTP row already
	// written is retained so the caller can retry out-of-band.
	ErrDeliveryFailed = errors.New("verification mail delivery failed")
	// ErrEngineNotReady is returned when the Engine is used before Build
	// completed or with missing dependencies.
	ErrEngineNotReady = errors.New("engine not initialized")
)
