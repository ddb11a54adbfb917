package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *repository) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "create_user", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.CreateUser")
	defer span.End()

	user := User{Username: username, PasswordHash: passwordHash}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`,
		username, passwordHash).Scan(&user.Id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			err = ErrUsernameTaken
			return nil, err
		}

		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "get_user_by_username", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.GetUserByUsername")
	defer span.End()

	var user User

	err = r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, COALESCE(invite_code, '')
		 FROM users WHERE lower(username) = lower($1)`,
		username).Scan(&user.Id, &user.Username, &user.PasswordHash, &user.InviteCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrUserNotFound
			return nil, err
		}

		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *repository) SetInviteCode(ctx context.Context, username, code string) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "set_invite_code", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.SetInviteCode")
	defer span.End()

	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET invite_code = $2 WHERE lower(username) = lower($1)`,
		username, code)
	if err != nil {
		return fmt.Errorf("failed to set invite code: %w", err)
	}

	if tag.RowsAffected() == 0 {
		err = ErrUserNotFound
		return err
	}

	return nil
}

func (r *repository) GetUserByInviteCode(ctx context.Context, code string) (*User, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "get_user_by_invite_code", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.GetUserByInviteCode")
	defer span.End()

	var user User

	err = r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, COALESCE(invite_code, '')
		 FROM users WHERE invite_code = $1`,
		code).Scan(&user.Id, &user.Username, &user.PasswordHash, &user.InviteCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrUserNotFound
			return nil, err
		}

		return nil, fmt.Errorf("failed to get user by invite code: %w", err)
	}

	return &user, nil
}

// GetProfile returns the stored profile document, or an empty one when the
// user has never saved a profile.
func (r *repository) GetProfile(ctx context.Context, username string) (Profile, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "get_profile", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.GetProfile")
	defer span.End()

	var raw []byte

	err = r.pool.QueryRow(ctx,
		`SELECT profile FROM user_profiles WHERE lower(username) = lower($1)`,
		username).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = nil
			return Profile{}, nil
		}

		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile := Profile{}

	err = json.Unmarshal(raw, &profile)
	if err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	return profile, nil
}

func (r *repository) SaveProfile(ctx context.Context, username string, profile Profile) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "save_profile", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.SaveProfile")
	defer span.End()

	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO user_profiles (username, profile) VALUES ($1, $2)
		 ON CONFLICT (username) DO UPDATE SET profile = EXCLUDED.profile`,
		username, raw)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}
