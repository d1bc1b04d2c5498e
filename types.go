package authpad

import (
	"context"
	"time"
)

// OTPTypeEmailVerification is the otp_type stored on verification token rows.
const OTPTypeEmailVerification = "email_verification"

// User is the full account record exchanged with the [Store]. The engine
// never stores or logs PasswordHash-bearing records beyond what a single
// operation needs.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string

	IsVerified  bool
	IsActive    bool
	IsSuperuser bool

	FailedLoginAttempts int
	LockedUntil         *time.Time

	CreatedAt       time.Time
	LastLogin       *time.Time
	EmailVerifiedAt *time.Time
}

// NewUser carries the fields the engine persists on registration. Accounts
// start unverified, active, with a zero failure counter.
type NewUser struct {
	Email        string
	Username     string
	PasswordHash string
}

// OTPToken is one issued verification code. Only the hash of the code is
// stored; the plaintext goes to the mail transport and nowhere else.
type OTPToken struct {
	ID          string
	UserID      string
	Type        string
	TokenHash   string
	Destination string
	ExpiresAt   time.Time
	Attempts    int
	UsedAt      *time.Time
	CreatedAt   time.Time
}

// Active reports whether the token is still open: not consumed, not expired
// at the given instant, and under the attempt budget.
func (t *OTPToken) Active(now time.Time, maxAttempts int) bool {
	return t.UsedAt == nil && t.ExpiresAt.After(now) && t.Attempts < maxAttempts
}

// Store is the persistence interface callers must implement to integrate the
// engine with their database. Implementations return [ErrUserNotFound],
// [ErrDuplicateEmail], and [ErrNoActiveToken] for the corresponding
// conditions and must make each method atomic with respect to concurrent
// calls on the same row.
//
// RecordLoginFailure in particular must be a single atomic increment at the
// storage layer (not read-then-write), so that two concurrent failed attempts
// cannot under-count.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	// CreateUser inserts an unverified, active user row and returns it with
	// ID and CreatedAt populated.
	CreateUser(ctx context.Context, u NewUser) (*User, error)
	// RecordLoginFailure atomically increments the failure counter and, when
	// the new count reaches maxAttempts, sets locked_until to lockUntil.
	RecordLoginFailure(ctx context.Context, userID string, maxAttempts int, lockUntil time.Time) error
	// RecordLoginSuccess resets the failure counter, clears any lock, and
	// stamps last_login, all in one write.
	RecordLoginSuccess(ctx context.Context, userID string, at time.Time) error

	// CreateOTP closes any still-open token of the same (user, type) and
	// inserts the new row, keeping at most one active token per pair.
	CreateOTP(ctx context.Context, t *OTPToken) error
	// ActiveOTP returns the most recently created open token for the triple,
	// or ErrNoActiveToken.
	ActiveOTP(ctx context.Context, userID, otpType, destination string) (*OTPToken, error)
	// CloseOTP stamps used_at, retiring the token.
	CloseOTP(ctx context.Context, tokenID string, at time.Time) error
	// RecordOTPFailure atomically increments the attempt counter and returns
	// the new count.
	RecordOTPFailure(ctx context.Context, tokenID string) (int, error)
	// ConsumeOTP closes the token and marks the owning user verified in one
	// step; a concurrent reader must never observe one write without the
	// other.
	ConsumeOTP(ctx context.Context, tokenID, userID string, at time.Time) error
}

// Revoker is an optional server-side token denylist. When configured, Logout
// makes the presented token unusable before its natural expiry and Refresh
// retires the rotated-out refresh token. A nil Revoker keeps the default
// stateless fast path.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// UserInfo is the public view of an account: everything a client may see,
// nothing it may not.
type UserInfo struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username,omitempty"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// Identity is the typed current-user value constructed once at the
// authentication boundary and passed to downstream logic.
type Identity struct {
	ID        string
	Email     string
	Verified  bool
	Active    bool
	Superuser bool
}

// TokenPair is the result of a successful Login or Refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LogoutResult confirms a logout. Revoked reports whether a denylist entry
// was actually written; without a configured [Revoker] the token stays valid
// until natural expiry.
type LogoutResult struct {
	Message   string    `json:"message"`
	Revoked   bool      `json:"revoked"`
	Timestamp time.Time `json:"timestamp"`
}

// RegisterRequest is the input to [Engine.Register].
type RegisterRequest struct {
	Email    string
	Username string
	Password string
}
