package search

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
)

// Provider is the external ranked full-text search collaborator plus the
// plain substring fallback both backed by the same store here.
type Provider interface {
	RankedSearch(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error)
	SubstringSearch(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error)
}

// DB is the subset of pgxpool.Pool the provider needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresProvider implements both rungs of the degradation ladder against
// Postgres: a ranked ts_rank function with highlights, and an ILIKE scan.
type PostgresProvider struct {
	db DB
}

var _ Provider = (*PostgresProvider)(nil)

func NewPostgresProvider(db DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

func (p *PostgresProvider) RankedSearch(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, name, description, latitude, longitude, preview_image_url, rank, matched_in, name_highlight, description_highlight
		 FROM search_locations_with_highlights($1, $2)`,
		query, maxResults)
	if err != nil {
		return nil, errors.Wrap(err, "ranked search failed")
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var r models.SearchResult
		err := rows.Scan(
			&r.ID,
			&r.Name,
			&r.Description,
			&r.Latitude,
			&r.Longitude,
			&r.PreviewImageURL,
			&r.Rank,
			&r.MatchedIn,
			&r.NameHighlight,
			&r.DescriptionHighlight,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan search result")
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// SubstringSearch matches name/description of active locations. Rank is a
// constant, matched_in is always "location" and highlights are absent, so
// the result shape matches the ranked path.
func (p *PostgresProvider) SubstringSearch(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	like := "%" + query + "%"
	builder := sq.Select("id", "name", "description", "latitude", "longitude", "preview_image_url").
		PlaceholderFormat(sq.Dollar).
		From("locations").
		Where(sq.Eq{"is_active": true}).
		Where(sq.Or{
			sq.ILike{"name": like},
			sq.ILike{"description": like},
		}).
		Limit(uint64(maxResults))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build substring search query")
	}

	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "substring search failed")
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		r := models.SearchResult{
			Rank:      1,
			MatchedIn: models.MatchedInLocation,
		}
		err := rows.Scan(
			&r.ID,
			&r.Name,
			&r.Description,
			&r.Latitude,
			&r.Longitude,
			&r.PreviewImageURL,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan search result")
		}
		results = append(results, r)
	}

	return results, rows.Err()
}
