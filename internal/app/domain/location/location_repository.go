package location

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
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
	List(ctx context.Context, activeOnly bool) ([]models.Location, error)
	Get(ctx context.Context, id string) (*models.Location, error)
	Insert(ctx context.Context, data models.LocationFormData, createdBy *string) (*models.Location, error)
	Update(ctx context.Context, id string, update models.LocationUpdate) (*models.Location, error)
	SoftDelete(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
	ListAllIDs(ctx context.Context) ([]string, error)

	ListImages(ctx context.Context, locationID string) ([]models.LocationImage, error)
	ListDocuments(ctx context.Context, locationID string) ([]models.LocationDocument, error)
	InsertImage(ctx context.Context, image *models.LocationImage) error
	InsertDocument(ctx context.Context, doc *models.LocationDocument) error
	DeleteImage(ctx context.Context, id string) error
	DeleteDocument(ctx context.Context, id string) error
}

type RepositoryImpl struct {
	db DB
}

var _ Repository = (*RepositoryImpl)(nil)

func NewRepository(db DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const locationColumns = `id, name, description, latitude, longitude, preview_image_url, created_by, created_at, updated_at, is_active`

func scanLocation(row pgx.Row) (*models.Location, error) {
	var l models.Location
	err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Description,
		&l.Latitude,
		&l.Longitude,
		&l.PreviewImageURL,
		&l.CreatedBy,
		&l.CreatedAt,
		&l.UpdatedAt,
		&l.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// List returns locations newest-first. With activeOnly, soft-deleted rows
// are excluded.
func (r *RepositoryImpl) List(ctx context.Context, activeOnly bool) ([]models.Location, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		ORDER BY created_at DESC
	`
	if activeOnly {
		query = `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE is_active = TRUE
		ORDER BY created_at DESC
	`
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list locations")
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan location")
		}
		locations = append(locations, *l)
	}

	return locations, rows.Err()
}

func (r *RepositoryImpl) Get(ctx context.Context, id string) (*models.Location, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE id = $1
	`

	l, err := scanLocation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get location")
	}
	return l, nil
}

func (r *RepositoryImpl) Insert(ctx context.Context, data models.LocationFormData, createdBy *string) (*models.Location, error) {
	var description *string
	if data.Description != "" {
		description = &data.Description
	}

	query := `
		INSERT INTO locations (id, name, description, latitude, longitude, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + locationColumns

	l, err := scanLocation(r.db.QueryRow(ctx, query,
		uuid.New().String(),
		data.Name,
		description,
		data.Latitude,
		data.Longitude,
		createdBy,
	))
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert location")
	}
	return l, nil
}

// Update applies only the supplied fields; nil fields stay untouched.
func (r *RepositoryImpl) Update(ctx context.Context, id string, update models.LocationUpdate) (*models.Location, error) {
	builder := sq.Update("locations").
		PlaceholderFormat(sq.Dollar).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + locationColumns)

	if update.Name != nil {
		builder = builder.Set("name", *update.Name)
	}
	if update.Description != nil {
		builder = builder.Set("description", *update.Description)
	}
	if update.Latitude != nil {
		builder = builder.Set("latitude", *update.Latitude)
	}
	if update.Longitude != nil {
		builder = builder.Set("longitude", *update.Longitude)
	}
	if update.PreviewImageURL != nil {
		builder = builder.Set("preview_image_url", *update.PreviewImageURL)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build update query")
	}

	l, err := scanLocation(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to update location")
	}
	return l, nil
}

func (r *RepositoryImpl) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE locations SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to soft-delete location")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// HardDelete removes the row; related images and documents cascade at the
// store level. File storage cleanup happens in the service beforehand.
func (r *RepositoryImpl) HardDelete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to hard-delete location")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *RepositoryImpl) ListAllIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM locations`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list location ids")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "failed to scan location id")
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *RepositoryImpl) ListImages(ctx context.Context, locationID string) ([]models.LocationImage, error) {
	query := `
		SELECT id, location_id, storage_path, file_name, file_size, mime_type, display_order, created_by, created_at
		FROM location_images
		WHERE location_id = $1
		ORDER BY display_order ASC
	`

	rows, err := r.db.Query(ctx, query, locationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list location images")
	}
	defer rows.Close()

	var images []models.LocationImage
	for rows.Next() {
		var img models.LocationImage
		err := rows.Scan(
			&img.ID,
			&img.LocationID,
			&img.StoragePath,
			&img.FileName,
			&img.FileSize,
			&img.MimeType,
			&img.DisplayOrder,
			&img.CreatedBy,
			&img.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan location image")
		}
		images = append(images, img)
	}

	return images, rows.Err()
}

func (r *RepositoryImpl) ListDocuments(ctx context.Context, locationID string) ([]models.LocationDocument, error) {
	query := `
		SELECT id, location_id, storage_path, file_name, file_size, mime_type, extraction_status, created_by, created_at
		FROM location_documents
		WHERE location_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, locationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list location documents")
	}
	defer rows.Close()

	var docs []models.LocationDocument
	for rows.Next() {
		var d models.LocationDocument
		err := rows.Scan(
			&d.ID,
			&d.LocationID,
			&d.StoragePath,
			&d.FileName,
			&d.FileSize,
			&d.MimeType,
			&d.ExtractionStatus,
			&d.CreatedBy,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan location document")
		}
		docs = append(docs, d)
	}

	return docs, rows.Err()
}

func (r *RepositoryImpl) InsertImage(ctx context.Context, image *models.LocationImage) error {
	if image.ID == "" {
		image.ID = uuid.New().String()
	}
	if image.CreatedAt.IsZero() {
		image.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO location_images (id, location_id, storage_path, file_name, file_size, mime_type, display_order, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		image.ID,
		image.LocationID,
		image.StoragePath,
		image.FileName,
		image.FileSize,
		image.MimeType,
		image.DisplayOrder,
		image.CreatedBy,
		image.CreatedAt,
	)

	return errors.Wrap(err, "failed to insert location image")
}

func (r *RepositoryImpl) InsertDocument(ctx context.Context, doc *models.LocationDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	if doc.ExtractionStatus == "" {
		doc.ExtractionStatus = models.ExtractionPending
	}

	query := `
		INSERT INTO location_documents (id, location_id, storage_path, file_name, file_size, mime_type, extraction_status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		doc.ID,
		doc.LocationID,
		doc.StoragePath,
		doc.FileName,
		doc.FileSize,
		doc.MimeType,
		doc.ExtractionStatus,
		doc.CreatedBy,
		doc.CreatedAt,
	)

	return errors.Wrap(err, "failed to insert location document")
}

func (r *RepositoryImpl) DeleteImage(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM location_images WHERE id = $1`, id)
	return errors.Wrap(err, "failed to delete location image")
}

func (r *RepositoryImpl) DeleteDocument(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM location_documents WHERE id = $1`, id)
	return errors.Wrap(err, "failed to delete location document")
}
