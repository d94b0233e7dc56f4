package auth

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it as well.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository interface {
	// Register stores a new user with a HASHED password plus a default
	// profile row. Returns the new user id.
	Register(ctx context.Context, username, email, hashedPassword string) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.UserAuth, error)
	GetUserByID(ctx context.Context, userID string) (*models.UserAuth, error)
	UpdatePassword(ctx context.Context, userID, newHashedPassword string) error
}

type RepositoryImpl struct {
	db DB
}

var _ Repository = (*RepositoryImpl)(nil)

func NewRepository(db DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Register(ctx context.Context, username, email, hashedPassword string) (string, error) {
	var userID string
	query := `INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id`
	err := r.db.QueryRow(ctx, query, username, email, hashedPassword).Scan(&userID)
	if err != nil {
		return "", errors.Wrap(err, "failed to insert user")
	}

	profileQuery := `INSERT INTO profiles (id, username, email) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(ctx, profileQuery, userID, username, email); err != nil {
		return "", errors.Wrap(err, "failed to insert profile")
	}
	return userID, nil
}

func (r *RepositoryImpl) GetUserByEmail(ctx context.Context, email string) (*models.UserAuth, error) {
	query := `SELECT id, username, email, password_hash, created_at FROM users WHERE email = $1`
	return scanUserAuth(r.db.QueryRow(ctx, query, email))
}

func (r *RepositoryImpl) GetUserByID(ctx context.Context, userID string) (*models.UserAuth, error) {
	query := `SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`
	return scanUserAuth(r.db.QueryRow(ctx, query, userID))
}

func (r *RepositoryImpl) UpdatePassword(ctx context.Context, userID, newHashedPassword string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, newHashedPassword)
	if err != nil {
		return errors.Wrap(err, "failed to update password")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanUserAuth(row pgx.Row) (*models.UserAuth, error) {
	var u models.UserAuth
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to scan user")
	}
	return &u, nil
}
