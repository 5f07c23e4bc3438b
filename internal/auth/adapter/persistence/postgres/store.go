package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"helfy-server/internal/auth/domain/model"
	"helfy-server/internal/auth/domain/repository"
	apperrors "helfy-server/internal/shared/errors"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolationCode = "23505"

// Store is the Postgres-backed credential store.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle. The caller owns the handle's
// lifecycle; the store never opens or closes connections itself.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to Postgres and verifies reachability with a ping.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. Concurrent duplicate registrations surface here: exactly one
// insert wins, the rest observe this error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (email, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if IsUniqueViolation(err) {
			return apperrors.ErrIdentifierTaken
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (s *Store) GetUserByIdentifier(ctx context.Context, emailOrUsername string) (*model.User, error) {
	query := `
		SELECT id, email, username, password_hash, created_at
		FROM users
		WHERE email = $1 OR username = $1`

	user := &model.User{}
	err := s.db.QueryRowContext(ctx, query, emailOrUsername).Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error {
	query := `UPDATE users SET password_hash = $2 WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, userID, newHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

func (s *Store) CreateToken(ctx context.Context, token *model.Token) error {
	query := `
		INSERT INTO user_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := s.db.QueryRowContext(ctx, query,
		token.Value, token.UserID, token.ExpiresAt,
	).Scan(&token.CreatedAt)

	if err != nil {
		if IsUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (s *Store) GetValidToken(ctx context.Context, value string) (*model.User, *model.Token, error) {
	query := `
		SELECT u.id, u.email, u.username, u.password_hash, u.created_at,
		       t.token, t.user_id, t.expires_at, t.created_at
		FROM user_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token = $1 AND t.expires_at > now()`

	user := &model.User{}
	token := &model.Token{}
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt,
		&token.Value, &token.UserID, &token.ExpiresAt, &token.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("db error: %w", err)
	}

	return user, token, nil
}

func (s *Store) DeleteToken(ctx context.Context, value string) error {
	query := `DELETE FROM user_tokens WHERE token = $1`

	// Deleting an absent token is not an error.
	if _, err := s.db.ExecContext(ctx, query, value); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

var _ repository.CredentialStore = (*Store)(nil)
