package suggestion

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository interface {
	Insert(ctx context.Context, locationID *string, suggestedBy string, sType models.SuggestionType, data models.LocationFormData) (*models.EditSuggestion, error)
	Get(ctx context.Context, id string) (*models.EditSuggestion, error)
	List(ctx context.Context, status *models.SuggestionStatus) ([]models.EditSuggestion, error)
	ListByProposer(ctx context.Context, proposerID string) ([]models.EditSuggestion, error)
	CountPending(ctx context.Context) (int, error)
	// UpdateStatus marks a pending suggestion reviewed. It affects only rows
	// still pending, so a second review of the same suggestion hits zero rows.
	UpdateStatus(ctx context.Context, id string, status models.SuggestionStatus, reviewerID string, notes *string) (*models.EditSuggestion, error)
	Delete(ctx context.Context, id string) error
}

type RepositoryImpl struct {
	db DB
}

var _ Repository = (*RepositoryImpl)(nil)

func NewRepository(db DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const suggestionColumns = `id, location_id, suggested_by, suggestion_type, suggested_data, status, reviewed_by, review_notes, created_at, reviewed_at`

func scanSuggestion(row pgx.Row) (*models.EditSuggestion, error) {
	var s models.EditSuggestion
	var rawData []byte
	err := row.Scan(
		&s.ID,
		&s.LocationID,
		&s.SuggestedBy,
		&s.Type,
		&rawData,
		&s.Status,
		&s.ReviewedBy,
		&s.ReviewNotes,
		&s.CreatedAt,
		&s.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawData, &s.SuggestedData); err != nil {
		return nil, errors.Wrap(err, "failed to decode suggested data")
	}
	return &s, nil
}

func (r *RepositoryImpl) Insert(ctx context.Context, locationID *string, suggestedBy string, sType models.SuggestionType, data models.LocationFormData) (*models.EditSuggestion, error) {
	rawData, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode suggested data")
	}

	query := `
		INSERT INTO edit_suggestions (id, location_id, suggested_by, suggestion_type, suggested_data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + suggestionColumns

	s, err := scanSuggestion(r.db.QueryRow(ctx, query,
		uuid.New().String(),
		locationID,
		suggestedBy,
		sType,
		rawData,
	))
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert suggestion")
	}
	return s, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id string) (*models.EditSuggestion, error) {
	query := `
		SELECT ` + suggestionColumns + `
		FROM edit_suggestions
		WHERE id = $1
	`

	s, err := scanSuggestion(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get suggestion")
	}
	return s, nil
}

// List returns suggestions newest-first, optionally filtered by status.
func (r *RepositoryImpl) List(ctx context.Context, status *models.SuggestionStatus) ([]models.EditSuggestion, error) {
	builder := sq.Select(suggestionColumns).
		PlaceholderFormat(sq.Dollar).
		From("edit_suggestions").
		OrderBy("created_at DESC")

	if status != nil {
		builder = builder.Where(sq.Eq{"status": *status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build list query")
	}

	return r.queryMany(ctx, query, args...)
}

func (r *RepositoryImpl) ListByProposer(ctx context.Context, proposerID string) ([]models.EditSuggestion, error) {
	query := `
		SELECT ` + suggestionColumns + `
		FROM edit_suggestions
		WHERE suggested_by = $1
		ORDER BY created_at DESC
	`
	return r.queryMany(ctx, query, proposerID)
}

func (r *RepositoryImpl) queryMany(ctx context.Context, query string, args ...any) ([]models.EditSuggestion, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list suggestions")
	}
	defer rows.Close()

	var suggestions []models.EditSuggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan suggestion")
		}
		suggestions = append(suggestions, *s)
	}

	return suggestions, rows.Err()
}

func (r *RepositoryImpl) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM edit_suggestions WHERE status = 'pending'`).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count pending suggestions")
	}
	return count, nil
}

func (r *RepositoryImpl) UpdateStatus(ctx context.Context, id string, status models.SuggestionStatus, reviewerID string, notes *string) (*models.EditSuggestion, error) {
	query := `
		UPDATE edit_suggestions
		SET status = $2, reviewed_by = $3, review_notes = $4, reviewed_at = $5
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + suggestionColumns

	s, err := scanSuggestion(r.db.QueryRow(ctx, query, id, status, reviewerID, notes, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the suggestion does not exist or it has already been
			// reviewed; distinguishing requires a second look.
			if _, getErr := r.Get(ctx, id); errors.Is(getErr, models.ErrNotFound) {
				return nil, models.ErrNotFound
			}
			return nil, models.ErrAlreadyReviewed
		}
		return nil, errors.Wrap(err, "failed to update suggestion status")
	}
	return s, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM edit_suggestions WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete suggestion")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
