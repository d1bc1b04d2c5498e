// Package memory implements the engine's Store on in-process maps. It is the
// reference implementation used by the test suite and the runnable example;
// state is lost on restart, so production deployments use the postgres store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/authpad/authpad"
)

// Store keeps users and verification tokens in memory behind a single mutex,
// which makes every method trivially atomic.
type Store struct {
	mu     sync.Mutex
	users  map[string]*authpad.User     // by id
	emails map[string]string            // lowercased email -> id
	otps   map[string]*authpad.OTPToken // by id
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:  make(map[string]*authpad.User),
		emails: make(map[string]string),
		otps:   make(map[string]*authpad.OTPToken),
	}
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*authpad.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, authpad.ErrUserNotFound
	}
	return copyUser(s.users[id]), nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*authpad.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, authpad.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (s *Store) CreateUser(_ context.Context, nu authpad.NewUser) (*authpad.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(nu.Email)
	if _, exists := s.emails[key]; exists {
		return nil, authpad.ErrDuplicateEmail
	}

	u := &authpad.User{
		ID:           authpad.NewID(),
		Email:        nu.Email,
		Username:     nu.Username,
		PasswordHash: nu.PasswordHash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	s.emails[key] = u.ID
	return copyUser(u), nil
}

func (s *Store) RecordLoginFailure(_ context.Context, userID string, maxAttempts int, lockUntil time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return authpad.ErrUserNotFound
	}
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		until := lockUntil
		u.LockedUntil = &until
	}
	return nil
}

func (s *Store) RecordLoginSuccess(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return authpad.ErrUserNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	last := at
	u.LastLogin = &last
	return nil
}

func (s *Store) CreateOTP(_ context.Context, t *authpad.OTPToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, prev := range s.otps {
		if prev.UserID == t.UserID && prev.Type == t.Type && prev.UsedAt == nil {
			used := now
			prev.UsedAt = &used
		}
	}

	stored := *t
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	s.otps[stored.ID] = &stored
	return nil
}

func (s *Store) ActiveOTP(_ context.Context, userID, otpType, destination string) (*authpad.OTPToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var open []*authpad.OTPToken
	for _, t := range s.otps {
		if t.UserID == userID && t.Type == otpType && t.Destination == destination && t.UsedAt == nil {
			open = append(open, t)
		}
	}
	if len(open) == 0 {
		return nil, authpad.ErrNoActiveToken
	}
	sort.Slice(open, func(i, j int) bool {
		return open[i].CreatedAt.After(open[j].CreatedAt)
	})
	return copyOTP(open[0]), nil
}

func (s *Store) CloseOTP(_ context.Context, tokenID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.otps[tokenID]
	if !ok {
		return authpad.ErrNoActiveToken
	}
	used := at
	t.UsedAt = &used
	return nil
}

func (s *Store) RecordOTPFailure(_ context.Context, tokenID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.otps[tokenID]
	if !ok {
		return 0, authpad.ErrNoActiveToken
	}
	t.Attempts++
	return t.Attempts, nil
}

func (s *Store) ConsumeOTP(_ context.Context, tokenID, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.otps[tokenID]
	if !ok {
		return authpad.ErrNoActiveToken
	}
	u, ok := s.users[userID]
	if !ok {
		return authpad.ErrUserNotFound
	}
	used := at
	t.UsedAt = &used
	u.IsVerified = true
	verified := at
	u.EmailVerifiedAt = &verified
	return nil
}

// SetActive toggles the account's active flag. Not part of the engine's
// Store interface; exposed for operator tooling and tests.
func (s *Store) SetActive(_ context.Context, userID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return authpad.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func copyUser(u *authpad.User) *authpad.User {
	c := *u
	if u.LockedUntil != nil {
		v := *u.LockedUntil
		c.LockedUntil = &v
	}
	if u.LastLogin != nil {
		v := *u.LastLogin
		c.LastLogin = &v
	}
	if u.EmailVerifiedAt != nil {
		v := *u.EmailVerifiedAt
		c.EmailVerifiedAt = &v
	}
	return &c
}

func copyOTP(t *authpad.OTPToken) *authpad.OTPToken {
	c := *t
	if t.UsedAt != nil {
		v := *t.UsedAt
		c.UsedAt = &v
	}
	return &c
}
