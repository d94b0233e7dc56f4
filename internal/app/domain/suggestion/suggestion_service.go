package suggestion

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/location"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/roles"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/observability/metrics"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the moderation workflow for proposed location mutations.
// Per suggestion the state machine is pending -> approved | rejected; a
// reviewed suggestion is inert but kept for audit.
type Service interface {
	Propose(ctx context.Context, actor roles.Actor, sType models.SuggestionType, locationID *string, data models.LocationFormData) (*models.EditSuggestion, error)
	ListForReview(ctx context.Context, actor roles.Actor, status *models.SuggestionStatus) ([]models.EditSuggestion, error)
	ListMine(ctx context.Context, actor roles.Actor) ([]models.EditSuggestion, error)
	PendingCount(ctx context.Context, actor roles.Actor) (int, error)
	Approve(ctx context.Context, actor roles.Actor, id string, notes *string) (*models.EditSuggestion, error)
	Reject(ctx context.Context, actor roles.Actor, id string, notes *string) (*models.EditSuggestion, error)
	// ApplyApproved re-runs the directory mutation of an already approved
	// suggestion, recovering from an earlier apply failure without touching
	// the review status.
	ApplyApproved(ctx context.Context, actor roles.Actor, id string) error
	Purge(ctx context.Context, actor roles.Actor, id string) error
}

type ServiceImpl struct {
	logger    *zap.Logger
	repo      Repository
	directory location.Service
}

func NewService(repo Repository, directory location.Service, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		repo:      repo,
		directory: directory,
	}
}

// Propose files a pending suggestion. It has no effect on the directory
// until a moderator approves it.
func (s *ServiceImpl) Propose(ctx context.Context, actor roles.Actor, sType models.SuggestionType, locationID *string, data models.LocationFormData) (*models.EditSuggestion, error) {
	if actor.ID == "" {
		return nil, fmt.Errorf("proposing requires a signed-in user: %w", models.ErrUnauthenticated)
	}

	switch sType {
	case models.SuggestionCreate:
		// create carries no target
		locationID = nil
		if err := location.ValidateFormData(data); err != nil {
			return nil, err
		}
	case models.SuggestionUpdate:
		if locationID == nil {
			return nil, fmt.Errorf("%s suggestion requires a target location: %w", sType, models.ErrValidation)
		}
		if err := location.ValidateFormData(data); err != nil {
			return nil, err
		}
	case models.SuggestionDelete:
		// delete ignores the form data
		if locationID == nil {
			return nil, fmt.Errorf("%s suggestion requires a target location: %w", sType, models.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("unknown suggestion type %q: %w", sType, models.ErrValidation)
	}

	created, err := s.repo.Insert(ctx, locationID, actor.ID, sType, data)
	if err != nil {
		s.logger.Error("failed to insert suggestion", zap.Error(err))
		return nil, err
	}

	metrics.Get().SuggestionsFiledTotal.Add(ctx, 1)
	s.logger.Info("suggestion filed",
		zap.String("suggestion_id", created.ID),
		zap.String("type", string(sType)),
		zap.String("proposer", actor.ID))
	return created, nil
}

func (s *ServiceImpl) ListForReview(ctx context.Context, actor roles.Actor, status *models.SuggestionStatus) ([]models.EditSuggestion, error) {
	if !roles.CanModerate(actor.Role) {
		return nil, fmt.Errorf("role %s may not review suggestions: %w", actor.Role, models.ErrForbidden)
	}
	return s.repo.List(ctx, status)
}

func (s *ServiceImpl) ListMine(ctx context.Context, actor roles.Actor) ([]models.EditSuggestion, error) {
	if actor.ID == "" {
		return nil, models.ErrUnauthenticated
	}
	return s.repo.ListByProposer(ctx, actor.ID)
}

func (s *ServiceImpl) PendingCount(ctx context.Context, actor roles.Actor) (int, error) {
	if !roles.CanModerate(actor.Role) {
		return 0, fmt.Errorf("role %s may not review suggestions: %w", actor.Role, models.ErrForbidden)
	}
	return s.repo.CountPending(ctx)
}

// Approve marks the suggestion approved, then applies the proposed mutation
// against the directory. If the apply step fails after the status write, the
// returned error is a models.ApplyError: the approval stands and the apply
// can be retried via ApplyApproved without re-approving.
func (s *ServiceImpl) Approve(ctx context.Context, actor roles.Actor, id string, notes *string) (*models.EditSuggestion, error) {
	if !roles.CanModerate(actor.Role) {
		return nil, fmt.Errorf("role %s may not approve suggestions: %w", actor.Role, models.ErrForbidden)
	}

	approved, err := s.repo.UpdateStatus(ctx, id, models.SuggestionApproved, actor.ID, notes)
	if err != nil {
		return nil, err
	}
	metrics.Get().SuggestionsReviewedTotal.Add(ctx, 1)

	if err := s.apply(ctx, actor, approved); err != nil {
		s.logger.Error("approved suggestion failed to apply",
			zap.String("suggestion_id", id), zap.Error(err))
		return approved, &models.ApplyError{SuggestionID: id, Err: err}
	}

	s.logger.Info("suggestion approved and applied",
		zap.String("suggestion_id", id),
		zap.String("reviewer", actor.ID))
	return approved, nil
}

// Reject marks the suggestion rejected. The directory is never touched and
// notes are preserved verbatim.
func (s *ServiceImpl) Reject(ctx context.Context, actor roles.Actor, id string, notes *string) (*models.EditSuggestion, error) {
	if !roles.CanModerate(actor.Role) {
		return nil, fmt.Errorf("role %s may not reject suggestions: %w", actor.Role, models.ErrForbidden)
	}

	rejected, err := s.repo.UpdateStatus(ctx, id, models.SuggestionRejected, actor.ID, notes)
	if err != nil {
		return nil, err
	}
	metrics.Get().SuggestionsReviewedTotal.Add(ctx, 1)

	s.logger.Info("suggestion rejected",
		zap.String("suggestion_id", id),
		zap.String("reviewer", actor.ID))
	return rejected, nil
}

func (s *ServiceImpl) ApplyApproved(ctx context.Context, actor roles.Actor, id string) error {
	if !roles.CanModerate(actor.Role) {
		return fmt.Errorf("role %s may not apply suggestions: %w", actor.Role, models.ErrForbidden)
	}

	sg, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if sg.Status != models.SuggestionApproved {
		return fmt.Errorf("suggestion %s is %s, not approved: %w", id, sg.Status, models.ErrAlreadyReviewed)
	}

	return s.apply(ctx, actor, sg)
}

// apply performs the directory mutation an approved suggestion proposes.
// There is no staleness guard: when several suggestions target the same
// location, the last one approved wins.
func (s *ServiceImpl) apply(ctx context.Context, actor roles.Actor, sg *models.EditSuggestion) error {
	switch sg.Type {
	case models.SuggestionCreate:
		// Files attached to the suggestion are not carried through.
		_, _, err := s.directory.Create(ctx, actor, sg.SuggestedData, nil, nil)
		return err

	case models.SuggestionUpdate:
		if sg.LocationID == nil {
			return nil
		}
		if _, err := s.directory.Get(ctx, *sg.LocationID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				// Target vanished since the suggestion was filed; nothing to do.
				return nil
			}
			return err
		}
		update := models.LocationUpdate{
			Name:        &sg.SuggestedData.Name,
			Description: &sg.SuggestedData.Description,
			Latitude:    &sg.SuggestedData.Latitude,
			Longitude:   &sg.SuggestedData.Longitude,
		}
		_, err := s.directory.Update(ctx, actor, *sg.LocationID, update)
		return err

	case models.SuggestionDelete:
		if sg.LocationID == nil {
			return nil
		}
		_, err := s.directory.Delete(ctx, actor, *sg.LocationID, location.DeleteSoft)
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return err

	default:
		return fmt.Errorf("unknown suggestion type %q: %w", sg.Type, models.ErrValidation)
	}
}

// Purge removes a suggestion record entirely. Superadmin only.
func (s *ServiceImpl) Purge(ctx context.Context, actor roles.Actor, id string) error {
	if actor.Role != roles.RoleSuperadmin {
		return fmt.Errorf("role %s may not purge suggestions: %w", actor.Role, models.ErrForbidden)
	}
	return s.repo.Delete(ctx, id)
}
