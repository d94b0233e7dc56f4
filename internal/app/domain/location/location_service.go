package location

import (
	"context"
	"fmt"
	"math"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/roles"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/observability/metrics"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/storage"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/pkg/config"
)

// DeleteMode distinguishes the reversible soft delete from the irreversible
// cascading hard delete at call sites.
type DeleteMode int

const (
	DeleteSoft DeleteMode = iota
	DeleteHard
)

// ResetOutcome records the result of one hard delete inside ResetAll.
type ResetOutcome struct {
	LocationID string
	Err        error
}

const (
	listCacheKey = "locations:active"
	listCacheTTL = 30 * time.Second
)

var _ Service = (*ServiceImpl)(nil)

// Service is the Location Directory: the authoritative set of locations and
// the role-gated mutations against it.
type Service interface {
	List(ctx context.Context) ([]models.Location, error)
	Get(ctx context.Context, id string) (*models.Location, error)
	GetWithFiles(ctx context.Context, id string) (*models.LocationWithFiles, error)
	Create(ctx context.Context, actor roles.Actor, data models.LocationFormData, images, documents []storage.FileUpload) (*models.Location, *models.PartialFailure, error)
	Update(ctx context.Context, actor roles.Actor, id string, update models.LocationUpdate) (*models.Location, error)
	Delete(ctx context.Context, actor roles.Actor, id string, mode DeleteMode) (*models.PartialFailure, error)
	ResetAll(ctx context.Context, actor roles.Actor) ([]ResetOutcome, error)
}

type ServiceImpl struct {
	logger  *zap.Logger
	repo    Repository
	files   storage.FileStore
	storage config.StorageConfig
	cache   *cache.Cache
}

func NewService(repo Repository, files storage.FileStore, storageCfg config.StorageConfig, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		files:   files,
		storage: storageCfg,
		cache:   cache.New(listCacheTTL, 2*listCacheTTL),
	}
}

// List returns all active locations, most recently created first. Results
// are cached briefly; every mutation invalidates the cache.
func (s *ServiceImpl) List(ctx context.Context) ([]models.Location, error) {
	if cached, ok := s.cache.Get(listCacheKey); ok {
		return cached.([]models.Location), nil
	}

	locations, err := s.repo.List(ctx, true)
	if err != nil {
		s.logger.Error("failed to list locations", zap.Error(err))
		return nil, err
	}

	s.cache.Set(listCacheKey, locations, cache.DefaultExpiration)
	return locations, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (*models.Location, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) GetWithFiles(ctx context.Context, id string) (*models.LocationWithFiles, error) {
	loc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	images, err := s.repo.ListImages(ctx, id)
	if err != nil {
		return nil, err
	}
	documents, err := s.repo.ListDocuments(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.LocationWithFiles{
		Location:  *loc,
		Images:    images,
		Documents: documents,
	}, nil
}

// ValidateFormData checks that form data could become a directory entry.
// The suggestion workflow runs the same check at filing time so nothing
// unapplicable reaches a moderator.
func ValidateFormData(data models.LocationFormData) error {
	if strings.TrimSpace(data.Name) == "" {
		return fmt.Errorf("name must not be empty: %w", models.ErrValidation)
	}
	if math.IsNaN(data.Latitude) || math.IsInf(data.Latitude, 0) ||
		math.IsNaN(data.Longitude) || math.IsInf(data.Longitude, 0) {
		return fmt.Errorf("coordinates must be finite: %w", models.ErrValidation)
	}
	return nil
}

// Create validates and persists a new location, then uploads any files.
// The location row is inserted first so file records can reference it. A
// failed individual upload is logged and skipped; it never aborts the
// creation. The first successfully uploaded image becomes the preview.
func (s *ServiceImpl) Create(ctx context.Context, actor roles.Actor, data models.LocationFormData, images, documents []storage.FileUpload) (*models.Location, *models.PartialFailure, error) {
	if err := ValidateFormData(data); err != nil {
		return nil, nil, err
	}
	if !roles.CanEditDirectly(actor.Role) {
		return nil, nil, fmt.Errorf("role %s may not create locations directly: %w", actor.Role, models.ErrForbidden)
	}

	createdBy := actor.Username
	loc, err := s.repo.Insert(ctx, data, &createdBy)
	if err != nil {
		s.logger.Error("failed to insert location", zap.Error(err))
		return nil, nil, err
	}
	s.cache.Delete(listCacheKey)

	var failures []models.ItemFailure
	succeeded := 0

	firstImagePath := ""
	for i, img := range images {
		storedPath, err := s.uploadImage(ctx, loc.ID, actor.Username, i, img)
		if err != nil {
			s.logger.Warn("image upload failed, skipping",
				zap.String("location_id", loc.ID),
				zap.String("file_name", img.FileName),
				zap.Error(err))
			failures = append(failures, models.ItemFailure{Item: img.FileName, Err: err})
			continue
		}
		succeeded++
		if firstImagePath == "" {
			firstImagePath = storedPath
		}
	}

	if firstImagePath != "" {
		previewURL := s.publicURL(s.storage.ImagesBucket, firstImagePath)
		updated, err := s.repo.Update(ctx, loc.ID, models.LocationUpdate{PreviewImageURL: &previewURL})
		if err != nil {
			s.logger.Warn("failed to set preview image", zap.String("location_id", loc.ID), zap.Error(err))
		} else {
			loc = updated
		}
	}

	for _, doc := range documents {
		if err := s.uploadDocument(ctx, loc.ID, actor.Username, doc); err != nil {
			s.logger.Warn("document upload failed, skipping",
				zap.String("location_id", loc.ID),
				zap.String("file_name", doc.FileName),
				zap.Error(err))
			failures = append(failures, models.ItemFailure{Item: doc.FileName, Err: err})
			continue
		}
		succeeded++
	}

	var partial *models.PartialFailure
	if len(failures) > 0 {
		partial = &models.PartialFailure{Op: "create location files", Succeeded: succeeded, Failed: failures}
		metrics.Get().FileUploadFailuresTotal.Add(ctx, int64(len(failures)))
	}

	metrics.Get().LocationsCreatedTotal.Add(ctx, 1)
	return loc, partial, nil
}

func (s *ServiceImpl) uploadImage(ctx context.Context, locationID, username string, order int, img storage.FileUpload) (string, error) {
	objectPath := objectPath(locationID, img.FileName)
	storedPath, err := s.files.Upload(ctx, s.storage.ImagesBucket, objectPath, img.Content)
	if err != nil {
		return "", err
	}

	record := &models.LocationImage{
		LocationID:   locationID,
		StoragePath:  storedPath,
		FileName:     img.FileName,
		FileSize:     &img.Size,
		MimeType:     &img.MimeType,
		DisplayOrder: order,
		CreatedBy:    &username,
	}
	if err := s.repo.InsertImage(ctx, record); err != nil {
		return "", err
	}
	return storedPath, nil
}

func (s *ServiceImpl) uploadDocument(ctx context.Context, locationID, username string, doc storage.FileUpload) error {
	objectPath := objectPath(locationID, doc.FileName)
	storedPath, err := s.files.Upload(ctx, s.storage.DocumentsBucket, objectPath, doc.Content)
	if err != nil {
		return err
	}

	record := &models.LocationDocument{
		LocationID:       locationID,
		StoragePath:      storedPath,
		FileName:         doc.FileName,
		FileSize:         &doc.Size,
		MimeType:         &doc.MimeType,
		ExtractionStatus: models.ExtractionPending,
		CreatedBy:        &username,
	}
	return s.repo.InsertDocument(ctx, record)
}

func objectPath(locationID, fileName string) string {
	ext := path.Ext(fileName)
	return locationID + "/" + uuid.New().String() + ext
}

func (s *ServiceImpl) publicURL(bucket, storedPath string) string {
	return s.storage.PublicBaseURL + "/" + bucket + "/" + storedPath
}

// Update applies a partial update. Stored coordinates are not re-validated.
func (s *ServiceImpl) Update(ctx context.Context, actor roles.Actor, id string, update models.LocationUpdate) (*models.Location, error) {
	if !roles.CanEditDirectly(actor.Role) {
		return nil, fmt.Errorf("role %s may not update locations directly: %w", actor.Role, models.ErrForbidden)
	}

	loc, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(listCacheKey)
	return loc, nil
}

// Delete removes a location. DeleteSoft marks it inactive and keeps its
// files. DeleteHard is moderator-only and irreversible: owned files are
// deleted best-effort first, then the row, cascading related tables.
func (s *ServiceImpl) Delete(ctx context.Context, actor roles.Actor, id string, mode DeleteMode) (*models.PartialFailure, error) {
	switch mode {
	case DeleteSoft:
		if !roles.CanEditDirectly(actor.Role) {
			return nil, fmt.Errorf("role %s may not delete locations: %w", actor.Role, models.ErrForbidden)
		}
		if err := s.repo.SoftDelete(ctx, id); err != nil {
			return nil, err
		}
		s.cache.Delete(listCacheKey)
		metrics.Get().LocationsDeletedTotal.Add(ctx, 1)
		return nil, nil

	case DeleteHard:
		if !roles.CanModerate(actor.Role) {
			return nil, fmt.Errorf("role %s may not hard-delete locations: %w", actor.Role, models.ErrForbidden)
		}
		return s.hardDelete(ctx, id)

	default:
		return nil, fmt.Errorf("unknown delete mode %d: %w", mode, models.ErrValidation)
	}
}

// hardDelete removes owned files first. Individual file deletion failures
// are isolated and collected; the row delete proceeds regardless.
func (s *ServiceImpl) hardDelete(ctx context.Context, id string) (*models.PartialFailure, error) {
	images, err := s.repo.ListImages(ctx, id)
	if err != nil {
		return nil, err
	}
	documents, err := s.repo.ListDocuments(ctx, id)
	if err != nil {
		return nil, err
	}

	type target struct {
		bucket string
		path   string
	}
	targets := make([]target, 0, len(images)+len(documents))
	for _, img := range images {
		targets = append(targets, target{s.storage.ImagesBucket, img.StoragePath})
	}
	for _, doc := range documents {
		targets = append(targets, target{s.storage.DocumentsBucket, doc.StoragePath})
	}

	failures := make([]models.ItemFailure, len(targets))
	var g errgroup.Group
	g.SetLimit(4)
	for i, t := range targets {
		g.Go(func() error {
			if err := s.files.Delete(ctx, t.bucket, t.path); err != nil {
				failures[i] = models.ItemFailure{Item: t.path, Err: err}
			}
			return nil
		})
	}
	// Goroutines never return errors, they record them per item.
	_ = g.Wait()

	var failed []models.ItemFailure
	for _, f := range failures {
		if f.Err != nil {
			s.logger.Warn("file deletion failed during hard delete",
				zap.String("location_id", id),
				zap.String("path", f.Item),
				zap.Error(f.Err))
			failed = append(failed, f)
		}
	}

	if err := s.repo.HardDelete(ctx, id); err != nil {
		return nil, err
	}
	s.cache.Delete(listCacheKey)
	metrics.Get().LocationsDeletedTotal.Add(ctx, 1)

	if len(failed) > 0 {
		return &models.PartialFailure{
			Op:        "hard delete files",
			Succeeded: len(targets) - len(failed),
			Failed:    failed,
		}, nil
	}
	return nil, nil
}

// ResetAll hard-deletes every location sequentially. It is best-effort:
// failures are recorded per id and deletion continues. Callers must re-list
// afterward to observe the true remaining state.
func (s *ServiceImpl) ResetAll(ctx context.Context, actor roles.Actor) ([]ResetOutcome, error) {
	if !roles.CanModerate(actor.Role) {
		return nil, fmt.Errorf("role %s may not reset the map: %w", actor.Role, models.ErrForbidden)
	}

	ids, err := s.repo.ListAllIDs(ctx)
	if err != nil {
		return nil, err
	}

	outcomes := make([]ResetOutcome, 0, len(ids))
	for _, id := range ids {
		_, err := s.hardDelete(ctx, id)
		if err != nil {
			s.logger.Error("reset: hard delete failed, continuing",
				zap.String("location_id", id), zap.Error(err))
		}
		outcomes = append(outcomes, ResetOutcome{LocationID: id, Err: err})
	}

	s.cache.Delete(listCacheKey)
	return outcomes, nil
}
