package authpad

import (
	"context"
	"errors"

	"github.com/authpad/authpad/password"
)

// Register creates a new account from a normalized email and a hashed
// password. New users start unverified and active; the email-verification
// flow flips them to verified. Returns the public view of the created row.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	hash, err := e.policy.Hash(req.Password)
	if err != nil {
		var policyErr *password.PolicyError
		if errors.As(err, &policyErr) {
			return nil, ErrInvalidInput
		}
		return nil, err
	}

	user, err := e.store.CreateUser(ctx, NewUser{
		Email:        email,
		Username:     req.Username,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	e.log.InfoContext(ctx, "user registered", "user_id", user.ID)

	return &UserInfo{
		ID:         user.ID,
		Email:      user.Email,
		Username:   user.Username,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
	}, nil
}
