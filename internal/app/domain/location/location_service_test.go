package location

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/roles"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/storage"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/pkg/config"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, activeOnly bool) ([]models.Location, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id string) (*models.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockRepository) Insert(ctx context.Context, data models.LocationFormData, createdBy *string) (*models.Location, error) {
	args := m.Called(ctx, data, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id string, update models.LocationUpdate) (*models.Location, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) HardDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ListAllIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) ListImages(ctx context.Context, locationID string) ([]models.LocationImage, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LocationImage), args.Error(1)
}

func (m *MockRepository) ListDocuments(ctx context.Context, locationID string) ([]models.LocationDocument, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LocationDocument), args.Error(1)
}

func (m *MockRepository) InsertImage(ctx context.Context, image *models.LocationImage) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockRepository) InsertDocument(ctx context.Context, doc *models.LocationDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockRepository) DeleteImage(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) DeleteDocument(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFileStore is a mock implementation of the storage.FileStore interface
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Upload(ctx context.Context, bucket, path string, r io.Reader) (string, error) {
	args := m.Called(ctx, bucket, path, r)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) Delete(ctx context.Context, bucket, path string) error {
	args := m.Called(ctx, bucket, path)
	return args.Error(0)
}

func testStorageConfig() config.StorageConfig {
	return config.StorageConfig{
		ImagesBucket:    "test-images",
		DocumentsBucket: "test-documents",
		PublicBaseURL:   "https://storage.test",
	}
}

func newTestService(repo *MockRepository, files *MockFileStore) *ServiceImpl {
	return NewService(repo, files, testStorageConfig(), zap.NewNop())
}

func editor() roles.Actor {
	return roles.Actor{ID: "editor-id", Username: "editor", Role: roles.RoleEditor}
}

func admin() roles.Actor {
	return roles.Actor{ID: "admin-id", Username: "admin", Role: roles.RoleAdmin}
}

func viewer() roles.Actor {
	return roles.Actor{ID: "viewer-id", Username: "viewer", Role: roles.RoleViewer}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyNameFailsBeforeAnyIO", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockFiles := new(MockFileStore)
		service := newTestService(mockRepo, mockFiles)

		data := models.LocationFormData{Name: "   ", Latitude: 43.9, Longitude: 19.8}
		_, _, err := service.Create(ctx, editor(), data, nil, nil)

		assert.ErrorIs(t, err, models.ErrValidation)
		// Validation runs before authorization and before any write.
		mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
		mockFiles.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NonFiniteCoordinatesRejected", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockFiles := new(MockFileStore)
		service := newTestService(mockRepo, mockFiles)

		data := models.LocationFormData{Name: "Viewpoint", Latitude: math.NaN(), Longitude: 19.8}
		_, _, err := service.Create(ctx, editor(), data, nil, nil)

		assert.ErrorIs(t, err, models.ErrValidation)
		mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidDataReportedEvenForViewer", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockFiles := new(MockFileStore)
		service := newTestService(mockRepo, mockFiles)

		data := models.LocationFormData{Name: "", Latitude: 43.9, Longitude: 19.8}
		_, _, err := service.Create(ctx, viewer(), data, nil, nil)

		// Validation wins over the role check.
		assert.ErrorIs(t, err, models.ErrValidation)
		assert.NotErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("ViewerForbidden", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockFiles := new(MockFileStore)
		service := newTestService(mockRepo, mockFiles)

		data := models.LocationFormData{Name: "Viewpoint", Latitude: 43.9, Longitude: 19.8}
		_, _, err := service.Create(ctx, viewer(), data, nil, nil)

		assert.ErrorIs(t, err, models.ErrForbidden)
		mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCreateWithFiles(t *testing.T) {
	ctx := context.Background()

	t.Run("FailedUploadSkippedAndReported", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockFiles := new(MockFileStore)
		service := newTestService(mockRepo, mockFiles)

		loc := &models.Location{ID: "loc-1", Name: "Viewpoint", Latitude: 43.9, Longitude: 19.8, IsActive: true}
		data := models.LocationFormData{Name: "Viewpoint", Latitude: 43.9, Longitude: 19.8}

		mockRepo.On("Insert", ctx, data, mock.Anything).Return(loc, nil).Once()

		// First image fails to upload, second succeeds.
		mockFiles.On("Upload", ctx, "test-images", mock.AnythingOfType("string"), mock.Anything).
			Return("", errors.New("bucket unavailable")).Once()
		mockFiles.On("Upload", ctx, "test-images", mock.AnythingOfType("string"), mock.Anything).
			Return("loc-1/second.jpg", nil).Once()
		mockRepo.On("InsertImage", ctx, mock.AnythingOfType("*models.LocationImage")).Return(nil).Once()

		// The surviving image becomes the preview.
		previewURL := "https://storage.test/test-images/loc-1/second.jpg"
		updated := &models.Location{ID: "loc-1", Name: "Viewpoint", PreviewImageURL: &previewURL, IsActive: true}
		mockRepo.On("Update", ctx, "loc-1", mock.MatchedBy(func(u models.LocationUpdate) bool {
			return u.PreviewImageURL != nil && *u.PreviewImageURL == previewURL
		})).Return(updated, nil).Once()

		images := []storage.FileUpload{
			{FileName: "first.jpg", MimeType: "image/jpeg", Content: strings.NewReader("a")},
			{FileName: "second.jpg", MimeType: "image/jpeg", Content: strings.NewReader("b")},
		}

		created, partial, err := service.Create(ctx, editor(), data, images, nil)

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, &previewURL, created.PreviewImageURL)
		assert.NotNil(t, partial)
		assert.Len(t, partial.Failed, 1)
		assert.Equal(t, "first.jpg", partial.Failed[0].Item)
		assert.Equal(t, 1, partial.Succeeded)
		mockRepo.AssertExpectations(t)
		mockFiles.AssertExpectations(t)
	})

	t.Run("AllUploadsFailStillCreatesLocation", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockFiles := new(MockFileStore)
		service := newTestService(mockRepo, mockFiles)

		loc := &models.Location{ID: "loc-2", Name: "Bridge", Latitude: 43.85, Longitude: 19.84, IsActive: true}
		data := models.LocationFormData{Name: "Bridge", Latitude: 43.85, Longitude: 19.84}

		mockRepo.On("Insert", ctx, data, mock.Anything).Return(loc, nil).Once()
		mockFiles.On("Upload", ctx, "test-images", mock.AnythingOfType("string"), mock.Anything).
			Return("", errors.New("network error")).Once()

		images := []storage.FileUpload{
			{FileName: "only.jpg", MimeType: "image/jpeg", Content: strings.NewReader("x")},
		}

		created, partial, err := service.Create(ctx, editor(), data, images, nil)

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Nil(t, created.PreviewImageURL)
		assert.NotNil(t, partial)
		assert.Len(t, partial.Failed, 1)
		// No preview update when nothing uploaded.
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("SoftDeleteByEditor", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockFiles := new(MockFileStore)
		service := newTestService(mockRepo, mockFiles)

		mockRepo.On("SoftDelete", ctx, "loc-1").Return(nil).Once()

		partial, err := service.Delete(ctx, editor(), "loc-1", DeleteSoft)

		assert.NoError(t, err)
		assert.Nil(t, partial)
		mockRepo.AssertExpectations(t)
	})

	t.Run("HardDeleteRequiresModerator", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockFiles := new(MockFileStore)
		service := newTestService(mockRepo, mockFiles)

		_, err := service.Delete(ctx, editor(), "loc-1", DeleteHard)

		assert.ErrorIs(t, err, models.ErrForbidden)
		mockRepo.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
	})

	t.Run("HardDeleteProceedsPastFileFailures", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockFiles := new(MockFileStore)
		service := newTestService(mockRepo, mockFiles)

		images := []models.LocationImage{
			{ID: "img-1", LocationID: "loc-1", StoragePath: "loc-1/a.jpg"},
		}
		documents := []models.LocationDocument{
			{ID: "doc-1", LocationID: "loc-1", StoragePath: "loc-1/b.pdf"},
		}

		mockRepo.On("ListImages", ctx, "loc-1").Return(images, nil).Once()
		mockRepo.On("ListDocuments", ctx, "loc-1").Return(documents, nil).Once()
		mockFiles.On("Delete", ctx, "test-images", "loc-1/a.jpg").Return(errors.New("object locked")).Once()
		mockFiles.On("Delete", ctx, "test-documents", "loc-1/b.pdf").Return(nil).Once()
		mockRepo.On("HardDelete", ctx, "loc-1").Return(nil).Once()

		partial, err := service.Delete(ctx, admin(), "loc-1", DeleteHard)

		assert.NoError(t, err)
		assert.NotNil(t, partial)
		assert.Len(t, partial.Failed, 1)
		assert.Equal(t, "loc-1/a.jpg", partial.Failed[0].Item)
		// The row still went away despite the stuck object.
		mockRepo.AssertCalled(t, "HardDelete", ctx, "loc-1")
	})
}

func TestResetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("RequiresModerator", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockFiles := new(MockFileStore)
		service := newTestService(mockRepo, mockFiles)

		_, err := service.ResetAll(ctx, editor())

		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("ContinuesPastFailures", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockFiles := new(MockFileStore)
		service := newTestService(mockRepo, mockFiles)

		mockRepo.On("ListAllIDs", ctx).Return([]string{"loc-1", "loc-2", "loc-3"}, nil).Once()

		for _, id := range []string{"loc-1", "loc-2", "loc-3"} {
			mockRepo.On("ListImages", ctx, id).Return([]models.LocationImage{}, nil).Once()
			mockRepo.On("ListDocuments", ctx, id).Return([]models.LocationDocument{}, nil).Once()
		}
		mockRepo.On("HardDelete", ctx, "loc-1").Return(nil).Once()
		mockRepo.On("HardDelete", ctx, "loc-2").Return(errors.New("row locked")).Once()
		mockRepo.On("HardDelete", ctx, "loc-3").Return(nil).Once()

		outcomes, err := service.ResetAll(ctx, admin())

		assert.NoError(t, err)
		assert.Len(t, outcomes, 3)
		assert.NoError(t, outcomes[0].Err)
		assert.Error(t, outcomes[1].Err)
		assert.NoError(t, outcomes[2].Err)
		mockRepo.AssertExpectations(t)
	})
}

func TestListCaching(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockRepository)
	mockFiles := new(MockFileStore)
	service := newTestService(mockRepo, mockFiles)

	locations := []models.Location{{ID: "loc-1", Name: "Viewpoint", IsActive: true}}
	mockRepo.On("List", ctx, true).Return(locations, nil).Once()

	first, err := service.List(ctx)
	assert.NoError(t, err)
	second, err := service.List(ctx)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	// Second call is served from the cache.
	mockRepo.AssertNumberOfCalls(t, "List", 1)
}
