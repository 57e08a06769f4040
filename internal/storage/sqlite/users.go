package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/mattn/go-sqlite3"
)

// ErrDuplicate is returned when an insert collides with an existing key.
var ErrDuplicate = errors.New("duplicate key")

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) CreateUser(ctx context.Context, user core.User) error {
	keys := user.APIKeys
	if keys == nil {
		keys = map[string]string{}
	}
	keysJSON, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("failed to marshal api keys: %w", err)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	query := `INSERT INTO users (username, password_hash, email, first_name, last_name, api_keys, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		user.Username, user.PasswordHash, user.Email, user.FirstName, user.LastName, string(keysJSON), user.CreatedAt.UTC())
	if isConstraintErr(err) {
		return fmt.Errorf("user %q: %w", user.Username, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UsersRepo) GetUser(ctx context.Context, username string) (core.User, error) {
	query := `SELECT username, password_hash, email, first_name, last_name, api_keys, created_at FROM users WHERE username = ?`

	var u core.User
	var keysJSON string
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&u.Username, &u.PasswordHash, &u.Email, &u.FirstName, &u.LastName, &keysJSON, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("failed to query user: %w", err)
	}

	if err := json.Unmarshal([]byte(keysJSON), &u.APIKeys); err != nil {
		return core.User{}, fmt.Errorf("failed to unmarshal api keys: %w", err)
	}
	if u.APIKeys == nil {
		u.APIKeys = map[string]string{}
	}
	return u, nil
}

// SetAPIKey stores key under service, replacing any previous value.
func (r *UsersRepo) SetAPIKey(ctx context.Context, username, service, key string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var keysJSON string
	err = tx.QueryRowContext(ctx, `SELECT api_keys FROM users WHERE username = ?`, username).Scan(&keysJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query api keys: %w", err)
	}

	keys := map[string]string{}
	if err := json.Unmarshal([]byte(keysJSON), &keys); err != nil {
		return fmt.Errorf("failed to unmarshal api keys: %w", err)
	}
	if keys == nil {
		keys = map[string]string{}
	}
	keys[service] = key

	updated, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("failed to marshal api keys: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET api_keys = ? WHERE username = ?`, string(updated), username); err != nil {
		return fmt.Errorf("failed to update api keys: %w", err)
	}
	return tx.Commit()
}

func isConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
