package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// GrievanceService coordinates grievance submission and the update workflow.
//
// ApplyUpdate is a plain read-modify-write with no locking or version check:
// concurrent updates to one grievance race and the last write wins.
type GrievanceService struct {
	grievances repository.GrievanceRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// GrievanceDependencies bundles repositories for the grievance service.
type GrievanceDependencies struct {
	GrievanceRepo repository.GrievanceRepository
	UserRepo      repository.UserRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// GrievanceInput describes a grievance submission.
type GrievanceInput struct {
	OwnerID         *int64
	Category        string
	Description     string
	Status          domain.GrievanceStatus
	ReadByAuthority bool
	DateRaised      *time.Time
	RejectionReason *string
	ResolutionNote  *string
	UserImages      []string
	AdminImages     []string
}

// GrievancePatch is a partial update. Nil fields and empty image lists leave
// the stored value unchanged; an empty string is a value.
type GrievancePatch struct {
	Category        *string
	Description     *string
	Status          *domain.GrievanceStatus
	RejectionReason *string
	ResolutionNote  *string
	AdminImages     []string
	UserImages      []string
}

// NewGrievanceService constructs the service.
func NewGrievanceService(deps GrievanceDependencies) *GrievanceService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GrievanceService{
		grievances: deps.GrievanceRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// AddGrievance stores a new grievance. A supplied owner id is resolved as-is;
// an id with no matching user leaves the grievance without an owner.
func (s *GrievanceService) AddGrievance(ctx context.Context, input GrievanceInput) (*domain.Grievance, error) {
	grievance := &domain.Grievance{
		Category:        input.Category,
		Description:     input.Description,
		Status:          input.Status,
		ReadByAuthority: input.ReadByAuthority,
		RejectionReason: input.RejectionReason,
		ResolutionNote:  input.ResolutionNote,
		UserImages:      append([]string{}, input.UserImages...),
		AdminImages:     append([]string{}, input.AdminImages...),
	}

	if input.OwnerID != nil {
		owner, err := s.users.GetByID(ctx, *input.OwnerID)
		switch {
		case err == nil:
			grievance.Owner = owner
			grievance.OwnerID = &owner.ID
		case errors.Is(err, pgx.ErrNoRows):
			s.logger.Warn("grievance owner not found; storing without owner", zap.Int64("user_id", *input.OwnerID))
		default:
			return nil, err
		}
	}

	if grievance.Status == "" {
		grievance.Status = domain.GrievanceStatusPending
	}
	if input.DateRaised != nil && !input.DateRaised.IsZero() {
		grievance.DateRaised = *input.DateRaised
	} else {
		grievance.DateRaised = today(s.now())
	}

	if err := s.grievances.Create(ctx, grievance); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:        events.EventGrievanceCreated,
		GrievanceID: grievance.ID,
		Payload: events.GrievanceCreatedPayload{
			OwnerID:  grievance.OwnerID,
			Category: grievance.Category,
			Status:   grievance.Status,
		},
	})
	return grievance, nil
}

// ApplyUpdate merges patch into the stored grievance and persists it. Moving a
// grievance into Resolved from any other status publishes a resolution event
// for its owner; the merge is committed whatever happens to that notice.
func (s *GrievanceService) ApplyUpdate(ctx context.Context, id int64, patch GrievancePatch) (*domain.Grievance, error) {
	grievance, err := s.grievances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("grievance", map[string]any{"id": id})
		}
		return nil, err
	}

	if patch.Category != nil {
		grievance.Category = *patch.Category
	}
	if patch.Description != nil {
		grievance.Description = *patch.Description
	}

	oldStatus := grievance.Status
	resolving := false
	if patch.Status != nil {
		resolving = *patch.Status == domain.GrievanceStatusResolved && oldStatus != domain.GrievanceStatusResolved
		grievance.Status = *patch.Status
	}

	if patch.RejectionReason != nil {
		grievance.RejectionReason = patch.RejectionReason
	}
	if patch.ResolutionNote != nil {
		grievance.ResolutionNote = patch.ResolutionNote
	}
	if len(patch.AdminImages) > 0 {
		grievance.AdminImages = append(grievance.AdminImages, patch.AdminImages...)
	}
	if len(patch.UserImages) > 0 {
		grievance.UserImages = append(grievance.UserImages, patch.UserImages...)
	}

	if err := s.grievances.Update(ctx, grievance); err != nil {
		return nil, err
	}
	if resolving {
		s.notifyResolved(ctx, grievance, patch.ResolutionNote)
	}
	s.publishEvent(ctx, events.Event{
		Type:        events.EventGrievanceUpdated,
		GrievanceID: grievance.ID,
		Payload: events.GrievanceUpdatedPayload{
			OldStatus:        oldStatus,
			NewStatus:        grievance.Status,
			AdminImagesAdded: len(patch.AdminImages),
			UserImagesAdded:  len(patch.UserImages),
		},
	})
	return grievance, nil
}

// ListAll returns every grievance in id order.
func (s *GrievanceService) ListAll(ctx context.Context) ([]domain.Grievance, error) {
	return s.grievances.ListAll(ctx)
}

// ListByOwner returns the grievances raised by userID in id order.
func (s *GrievanceService) ListByOwner(ctx context.Context, userID int64) ([]domain.Grievance, error) {
	return s.grievances.ListByOwner(ctx, userID)
}

func (s *GrievanceService) notifyResolved(ctx context.Context, grievance *domain.Grievance, note *string) {
	email := grievance.OwnerEmail()
	if email == "" {
		s.logger.Debug("resolved grievance has no owner email; skipping notice", zap.Int64("grievance_id", grievance.ID))
		return
	}
	payload := events.GrievanceResolvedPayload{OwnerEmail: email}
	if note != nil {
		payload.ResolutionNote = *note
	}
	s.publishEvent(ctx, events.Event{
		Type:        events.EventGrievanceResolved,
		GrievanceID: grievance.ID,
		Payload:     payload,
	})
}

func (s *GrievanceService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("grievance_id", event.GrievanceID),
			zap.Error(err))
	}
}

func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
