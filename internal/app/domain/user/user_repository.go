package user

import (
	"context"

	sq "github.com/Masterminds/squirrel"
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
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	ListProfiles(ctx context.Context) ([]models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.UserProfile, error)
	UpdateRole(ctx context.Context, userID, role string) error
	CountByRole(ctx context.Context) (map[string]int, error)
}

type RepositoryImpl struct {
	db DB
}

var _ Repository = (*RepositoryImpl)(nil)

func NewRepository(db DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const profileColumns = `id, username, email, full_name, avatar_url, role, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.UserProfile, error) {
	var p models.UserProfile
	err := row.Scan(
		&p.ID,
		&p.Username,
		&p.Email,
		&p.FullName,
		&p.AvatarURL,
		&p.Role,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RepositoryImpl) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get profile")
	}
	return p, nil
}

func (r *RepositoryImpl) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list profiles")
	}
	defer rows.Close()

	var profiles []models.UserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan profile")
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// UpdateProfile applies only the fields present in the update.
func (r *RepositoryImpl) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.UserProfile, error) {
	builder := sq.Update("profiles").
		PlaceholderFormat(sq.Dollar).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": userID}).
		Suffix("RETURNING " + profileColumns)

	if update.Username != nil {
		builder = builder.Set("username", *update.Username)
	}
	if update.FullName != nil {
		builder = builder.Set("full_name", *update.FullName)
	}
	if update.AvatarURL != nil {
		builder = builder.Set("avatar_url", *update.AvatarURL)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build profile update")
	}

	p, err := scanProfile(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to update profile")
	}
	return p, nil
}

func (r *RepositoryImpl) UpdateRole(ctx context.Context, userID, role string) error {
	tag, err := r.db.Exec(ctx, `UPDATE profiles SET role = $2, updated_at = now() WHERE id = $1`, userID, role)
	if err != nil {
		return errors.Wrap(err, "failed to update role")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *RepositoryImpl) CountByRole(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT role, COUNT(*) FROM profiles GROUP BY role`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count roles")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan role count")
		}
		counts[role] = n
	}
	return counts, rows.Err()
}
