package authpad

import "context"

// Login guard: pure state transitions over the User lockout fields, applied
// around each credential check. The counters live on the user row; the
// atomicity of the increment is the Store's responsibility.

// lockoutPrecheck rejects while the lockout window is open. No attempt is
// consumed and the password is not evaluated, so polling a locked account
// neither extends the lock nor reveals whether the guess was right.
func (e *Engine) lockoutPrecheck(user *User) error {
	if user.LockedUntil != nil && user.LockedUntil.After(e.now()) {
		return ErrAccountLocked
	}
	return nil
}

// lockoutOnFailure records a wrong credential against an existing account.
// The increment and the conditional lock are one atomic storage write,
// persisted before the caller reports ErrInvalidCredentials.
func (e *Engine) lockoutOnFailure(ctx context.Context, user *User) error {
	lockUntil := e.now().Add(e.config.Lockout.Duration)
	return e.store.RecordLoginFailure(ctx, user.ID, e.config.Lockout.MaxAttempts, lockUntil)
}

// lockoutOnSuccess clears the counter, drops any expired lock, and stamps
// last_login in the same write, so a successful login never leaves stale
// lockout state behind for the next attempt.
func (e *Engine) lockoutOnSuccess(ctx context.Context, user *User) error {
	return e.store.RecordLoginSuccess(ctx, user.ID, e.now())
}
