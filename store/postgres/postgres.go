// Package postgres implements the engine's Store on PostgreSQL via pgx. The
// counter updates that back lockout and OTP attempt tracking run as single
// SQL statements, so they are atomic under concurrent logins without
// row-level locks in application code.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/authpad/authpad"
	"github.com/authpad/authpad/store/postgres/migrations"
)

const pgUniqueViolation = "23505"

// Store is a PostgreSQL-backed implementation of the engine's persistence
// interface.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to dsn, applies pending migrations, and returns the store.
func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return goose.UpContext(ctx, db, ".")
}

const userColumns = `id, email, username, password_hash, is_verified, is_active,
	is_superuser, failed_login_attempts, locked_until, created_at, last_login,
	email_verified_at`

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*authpad.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return s.scanUser(s.pool.QueryRow(ctx, q, email))
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*authpad.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) scanUser(row pgx.Row) (*authpad.User, error) {
	var (
		u        authpad.User
		username sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.Email, &username, &u.PasswordHash,
		&u.IsVerified, &u.IsActive, &u.IsSuperuser,
		&u.FailedLoginAttempts, &u.LockedUntil,
		&u.CreatedAt, &u.LastLogin, &u.EmailVerifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authpad.ErrUserNotFound
		}
		return nil, err
	}
	u.Username = username.String
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, nu authpad.NewUser) (*authpad.User, error) {
	q := `INSERT INTO users (id, email, username, password_hash)
	      VALUES ($1, $2, NULLIF($3, ''), $4)
	      RETURNING ` + userColumns

	row := s.pool.QueryRow(ctx, q, authpad.NewID(), nu.Email, nu.Username, nu.PasswordHash)
	u, err := s.scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, authpad.ErrDuplicateEmail
		}
		return nil, err
	}
	return u, nil
}

func (s *Store) RecordLoginFailure(ctx context.Context, userID string, maxAttempts int, lockUntil time.Time) error {
	// One statement, so two concurrent failures cannot both read the same
	// pre-increment count.
	q := `UPDATE users
	      SET failed_login_attempts = failed_login_attempts + 1,
	          locked_until = CASE WHEN failed_login_attempts + 1 >= $2 THEN $3 ELSE locked_until END
	      WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q, userID, maxAttempts, lockUntil)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return authpad.ErrUserNotFound
	}
	return nil
}

func (s *Store) RecordLoginSuccess(ctx context.Context, userID string, at time.Time) error {
	q := `UPDATE users
	      SET failed_login_attempts = 0, locked_until = NULL, last_login = $2
	      WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q, userID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return authpad.ErrUserNotFound
	}
	return nil
}

// SetActive toggles the account's active flag. Not part of the engine's
// Store interface; exposed for operator tooling.
func (s *Store) SetActive(ctx context.Context, userID string, active bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET is_active = $2 WHERE id = $1`, userID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return authpad.ErrUserNotFound
	}
	return nil
}

func (s *Store) CreateOTP(ctx context.Context, t *authpad.OTPToken) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE otp_tokens SET used_at = NOW()
			 WHERE user_id = $1 AND otp_type = $2 AND used_at IS NULL`,
			t.UserID, t.Type)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO otp_tokens (id, user_id, otp_type, token_hash, destination, expires_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			t.ID, t.UserID, t.Type, t.TokenHash, t.Destination, t.ExpiresAt)
		return err
	})
}

func (s *Store) ActiveOTP(ctx context.Context, userID, otpType, destination string) (*authpad.OTPToken, error) {
	q := `SELECT id, user_id, otp_type, token_hash, destination, expires_at, attempts, used_at, created_at
	      FROM otp_tokens
	      WHERE user_id = $1 AND otp_type = $2 AND destination = $3 AND used_at IS NULL
	      ORDER BY created_at DESC
	      LIMIT 1`

	var t authpad.OTPToken
	err := s.pool.QueryRow(ctx, q, userID, otpType, destination).Scan(
		&t.ID, &t.UserID, &t.Type, &t.TokenHash, &t.Destination,
		&t.ExpiresAt, &t.Attempts, &t.UsedAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authpad.ErrNoActiveToken
		}
		return nil, err
	}
	return &t, nil
}

func (s *Store) CloseOTP(ctx context.Context, tokenID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE otp_tokens SET used_at = $2 WHERE id = $1 AND used_at IS NULL`,
		tokenID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return authpad.ErrNoActiveToken
	}
	return nil
}

func (s *Store) RecordOTPFailure(ctx context.Context, tokenID string) (int, error) {
	var attempts int
	err := s.pool.QueryRow(ctx,
		`UPDATE otp_tokens SET attempts = attempts + 1 WHERE id = $1 RETURNING attempts`,
		tokenID).Scan(&attempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, authpad.ErrNoActiveToken
		}
		return 0, err
	}
	return attempts, nil
}

func (s *Store) ConsumeOTP(ctx context.Context, tokenID, userID string, at time.Time) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE otp_tokens SET used_at = $2 WHERE id = $1 AND used_at IS NULL`,
			tokenID, at)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return authpad.ErrNoActiveToken
		}

		tag, err = tx.Exec(ctx,
			`UPDATE users SET is_verified = TRUE, email_verified_at = $2 WHERE id = $1`,
			userID, at)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return authpad.ErrUserNotFound
		}
		return nil
	})
}
