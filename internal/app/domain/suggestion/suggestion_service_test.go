package suggestion

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/location"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/roles"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/storage"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Insert(ctx context.Context, locationID *string, suggestedBy string, sType models.SuggestionType, data models.LocationFormData) (*models.EditSuggestion, error) {
	args := m.Called(ctx, locationID, suggestedBy, sType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EditSuggestion), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id string) (*models.EditSuggestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EditSuggestion), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, status *models.SuggestionStatus) ([]models.EditSuggestion, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EditSuggestion), args.Error(1)
}

func (m *MockRepository) ListByProposer(ctx context.Context, userID string) ([]models.EditSuggestion, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EditSuggestion), args.Error(1)
}

func (m *MockRepository) CountPending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id string, status models.SuggestionStatus, reviewedBy string, notes *string) (*models.EditSuggestion, error) {
	args := m.Called(ctx, id, status, reviewedBy, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EditSuggestion), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDirectory is a mock implementation of the location.Service interface
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) List(ctx context.Context) ([]models.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *MockDirectory) Get(ctx context.Context, id string) (*models.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockDirectory) GetWithFiles(ctx context.Context, id string) (*models.LocationWithFiles, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LocationWithFiles), args.Error(1)
}

func (m *MockDirectory) Create(ctx context.Context, actor roles.Actor, data models.LocationFormData, images, documents []storage.FileUpload) (*models.Location, *models.PartialFailure, error) {
	args := m.Called(ctx, actor, data, images, documents)
	var loc *models.Location
	if args.Get(0) != nil {
		loc = args.Get(0).(*models.Location)
	}
	var partial *models.PartialFailure
	if args.Get(1) != nil {
		partial = args.Get(1).(*models.PartialFailure)
	}
	return loc, partial, args.Error(2)
}

func (m *MockDirectory) Update(ctx context.Context, actor roles.Actor, id string, update models.LocationUpdate) (*models.Location, error) {
	args := m.Called(ctx, actor, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockDirectory) Delete(ctx context.Context, actor roles.Actor, id string, mode location.DeleteMode) (*models.PartialFailure, error) {
	args := m.Called(ctx, actor, id, mode)
	var partial *models.PartialFailure
	if args.Get(0) != nil {
		partial = args.Get(0).(*models.PartialFailure)
	}
	return partial, args.Error(1)
}

func (m *MockDirectory) ResetAll(ctx context.Context, actor roles.Actor) ([]location.ResetOutcome, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]location.ResetOutcome), args.Error(1)
}

func admin() roles.Actor {
	return roles.Actor{ID: "admin-id", Username: "admin", Role: roles.RoleAdmin}
}

func contributor() roles.Actor {
	return roles.Actor{ID: "user-id", Username: "contributor", Role: roles.RoleViewer}
}

func TestPropose(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateSuggestionDropsTarget", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockDir := new(MockDirectory)
		service := NewService(mockRepo, mockDir, zap.NewNop())

		data := models.LocationFormData{Name: "New spot", Latitude: 43.9, Longitude: 19.8}
		stray := "ignored-target"
		filed := &models.EditSuggestion{ID: "sug-1", Type: models.SuggestionCreate, Status: models.SuggestionPending}

		mockRepo.On("Insert", ctx, (*string)(nil), "user-id", models.SuggestionCreate, data).Return(filed, nil).Once()

		created, err := service.Propose(ctx, contributor(), models.SuggestionCreate, &stray, data)

		assert.NoError(t, err)
		assert.Equal(t, models.SuggestionPending, created.Status)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UpdateRequiresTarget", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockDir := new(MockDirectory)
		service := NewService(mockRepo, mockDir, zap.NewNop())

		_, err := service.Propose(ctx, contributor(), models.SuggestionUpdate, nil, models.LocationFormData{})

		assert.ErrorIs(t, err, models.ErrValidation)
		mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BlankNameRejectedBeforeInsert", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockDir := new(MockDirectory)
		service := NewService(mockRepo, mockDir, zap.NewNop())

		// A create suggestion with an unusable payload would be approvable
		// but never applicable, so it is refused at filing time.
		_, err := service.Propose(ctx, contributor(), models.SuggestionCreate, nil,
			models.LocationFormData{Name: "   ", Latitude: 43.9, Longitude: 19.8})

		assert.ErrorIs(t, err, models.ErrValidation)
		mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NonFiniteCoordinatesRejected", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockDir := new(MockDirectory)
		service := NewService(mockRepo, mockDir, zap.NewNop())

		target := "loc-1"
		_, err := service.Propose(ctx, contributor(), models.SuggestionUpdate, &target,
			models.LocationFormData{Name: "Spot", Latitude: math.NaN(), Longitude: 19.8})

		assert.ErrorIs(t, err, models.ErrValidation)
		mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("AnonymousRejected", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockDir := new(MockDirectory)
		service := NewService(mockRepo, mockDir, zap.NewNop())

		_, err := service.Propose(ctx, roles.Actor{Role: roles.RoleViewer}, models.SuggestionCreate, nil, models.LocationFormData{Name: "x"})

		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateSuggestionApplied", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockDir := new(MockDirectory)
		service := NewService(mockRepo, mockDir, zap.NewNop())

		data := models.LocationFormData{Name: "New spot", Latitude: 43.9, Longitude: 19.8}
		approved := &models.EditSuggestion{
			ID: "sug-1", Type: models.SuggestionCreate,
			SuggestedData: data, Status: models.SuggestionApproved,
		}

		mockRepo.On("UpdateStatus", ctx, "sug-1", models.SuggestionApproved, "admin-id", (*string)(nil)).
			Return(approved, nil).Once()
		mockDir.On("Create", ctx, admin(), data, ([]storage.FileUpload)(nil), ([]storage.FileUpload)(nil)).
			Return(&models.Location{ID: "loc-9"}, nil, nil).Once()

		result, err := service.Approve(ctx, admin(), "sug-1", nil)

		assert.NoError(t, err)
		assert.Equal(t, models.SuggestionApproved, result.Status)
		mockDir.AssertExpectations(t)
	})

	t.Run("DeleteSuggestionSoftDeletes", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockDir := new(MockDirectory)
		service := NewService(mockRepo, mockDir, zap.NewNop())

		target := "loc-7"
		approved := &models.EditSuggestion{
			ID: "sug-2", Type: models.SuggestionDelete,
			LocationID: &target, Status: models.SuggestionApproved,
		}

		mockRepo.On("UpdateStatus", ctx, "sug-2", models.SuggestionApproved, "admin-id", (*string)(nil)).
			Return(approved, nil).Once()
		mockDir.On("Delete", ctx, admin(), target, location.DeleteSoft).Return(nil, nil).Once()

		_, err := service.Approve(ctx, admin(), "sug-2", nil)

		assert.NoError(t, err)
		mockDir.AssertExpectations(t)
	})

	t.Run("NonModeratorForbidden", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockDir := new(MockDirectory)
		service := NewService(mockRepo, mockDir, zap.NewNop())

		_, err := service.Approve(ctx, contributor(), "sug-1", nil)

		assert.ErrorIs(t, err, models.ErrForbidden)
		mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ApplyFailureReturnsApplyError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockDir := new(MockDirectory)
		service := NewService(mockRepo, mockDir, zap.NewNop())

		data := models.LocationFormData{Name: "New spot", Latitude: 43.9, Longitude: 19.8}
		approved := &models.EditSuggestion{
			ID: "sug-3", Type: models.SuggestionCreate,
			SuggestedData: data, Status: models.SuggestionApproved,
		}

		mockRepo.On("UpdateStatus", ctx, "sug-3", models.SuggestionApproved, "admin-id", (*string)(nil)).
			Return(approved, nil).Once()
		mockDir.On("Create", ctx, admin(), data, ([]storage.FileUpload)(nil), ([]storage.FileUpload)(nil)).
			Return(nil, nil, errors.New("db down")).Once()

		result, err := service.Approve(ctx, admin(), "sug-3", nil)

		// The approval stands and the caller knows the apply can be retried.
		assert.NotNil(t, result)
		assert.Equal(t, models.SuggestionApproved, result.Status)
		var applyErr *models.ApplyError
		assert.ErrorAs(t, err, &applyErr)
		assert.Equal(t, "sug-3", applyErr.SuggestionID)
	})

	t.Run("UpdateTargetVanishedIsNoop", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockDir := new(MockDirectory)
		service := NewService(mockRepo, mockDir, zap.NewNop())

		target := "loc-gone"
		approved := &models.EditSuggestion{
			ID: "sug-4", Type: models.SuggestionUpdate,
			LocationID: &target, Status: models.SuggestionApproved,
		}

		mockRepo.On("UpdateStatus", ctx, "sug-4", models.SuggestionApproved, "admin-id", (*string)(nil)).
			Return(approved, nil).Once()
		mockDir.On("Get", ctx, target).Return(nil, models.ErrNotFound).Once()

		_, err := service.Approve(ctx, admin(), "sug-4", nil)

		assert.NoError(t, err)
		mockDir.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()

	t.Run("NeverTouchesDirectory", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockDir := new(MockDirectory)
		service := NewService(mockRepo, mockDir, zap.NewNop())

		notes := "duplicate of an existing location"
		rejected := &models.EditSuggestion{
			ID: "sug-5", Type: models.SuggestionCreate,
			Status: models.SuggestionRejected, ReviewNotes: &notes,
		}

		mockRepo.On("UpdateStatus", ctx, "sug-5", models.SuggestionRejected, "admin-id", &notes).
			Return(rejected, nil).Once()

		result, err := service.Reject(ctx, admin(), "sug-5", &notes)

		assert.NoError(t, err)
		assert.Equal(t, models.SuggestionRejected, result.Status)
		assert.Equal(t, &notes, result.ReviewNotes)
		mockDir.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockDir.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockDir.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("AlreadyReviewedConflicts", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockDir := new(MockDirectory)
		service := NewService(mockRepo, mockDir, zap.NewNop())

		mockRepo.On("UpdateStatus", ctx, "sug-6", models.SuggestionRejected, "admin-id", (*string)(nil)).
			Return(nil, models.ErrAlreadyReviewed).Once()

		_, err := service.Reject(ctx, admin(), "sug-6", nil)

		assert.ErrorIs(t, err, models.ErrAlreadyReviewed)
	})
}

func TestApplyApproved(t *testing.T) {
	ctx := context.Background()

	t.Run("RetriesApprovedSuggestion", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockDir := new(MockDirectory)
		service := NewService(mockRepo, mockDir, zap.NewNop())

		data := models.LocationFormData{Name: "New spot", Latitude: 43.9, Longitude: 19.8}
		sg := &models.EditSuggestion{
			ID: "sug-7", Type: models.SuggestionCreate,
			SuggestedData: data, Status: models.SuggestionApproved,
		}

		mockRepo.On("Get", ctx, "sug-7").Return(sg, nil).Once()
		mockDir.On("Create", ctx, admin(), data, ([]storage.FileUpload)(nil), ([]storage.FileUpload)(nil)).
			Return(&models.Location{ID: "loc-10"}, nil, nil).Once()

		err := service.ApplyApproved(ctx, admin(), "sug-7")

		assert.NoError(t, err)
		mockDir.AssertExpectations(t)
	})

	t.Run("PendingSuggestionRefused", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockDir := new(MockDirectory)
		service := NewService(mockRepo, mockDir, zap.NewNop())

		sg := &models.EditSuggestion{ID: "sug-8", Type: models.SuggestionCreate, Status: models.SuggestionPending}
		mockRepo.On("Get", ctx, "sug-8").Return(sg, nil).Once()

		err := service.ApplyApproved(ctx, admin(), "sug-8")

		assert.ErrorIs(t, err, models.ErrAlreadyReviewed)
		mockDir.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

// Two approved suggestions against the same location apply in approval
// order; the later one wins. There is deliberately no staleness guard.
func TestLastApprovedWins(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockRepository)
	mockDir := new(MockDirectory)
	service := NewService(mockRepo, mockDir, zap.NewNop())

	target := "loc-1"
	first := models.LocationFormData{Name: "First name", Latitude: 1, Longitude: 1}
	second := models.LocationFormData{Name: "Second name", Latitude: 2, Longitude: 2}

	sgFirst := &models.EditSuggestion{ID: "sug-a", Type: models.SuggestionUpdate, LocationID: &target, SuggestedData: first, Status: models.SuggestionApproved}
	sgSecond := &models.EditSuggestion{ID: "sug-b", Type: models.SuggestionUpdate, LocationID: &target, SuggestedData: second, Status: models.SuggestionApproved}

	mockRepo.On("UpdateStatus", ctx, "sug-a", models.SuggestionApproved, "admin-id", (*string)(nil)).Return(sgFirst, nil).Once()
	mockRepo.On("UpdateStatus", ctx, "sug-b", models.SuggestionApproved, "admin-id", (*string)(nil)).Return(sgSecond, nil).Once()

	loc := &models.Location{ID: target, Name: "Original"}
	mockDir.On("Get", ctx, target).Return(loc, nil).Twice()

	var lastApplied string
	mockDir.On("Update", ctx, admin(), target, mock.AnythingOfType("models.LocationUpdate")).
		Run(func(args mock.Arguments) {
			update := args.Get(3).(models.LocationUpdate)
			lastApplied = *update.Name
		}).
		Return(loc, nil).Twice()

	_, err := service.Approve(ctx, admin(), "sug-a", nil)
	assert.NoError(t, err)
	_, err = service.Approve(ctx, admin(), "sug-b", nil)
	assert.NoError(t, err)

	assert.Equal(t, "Second name", lastApplied)
}
