package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/repository"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// ActivityService maintains the append-only activity feed.
type ActivityService struct {
	activities repository.ActivityRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// ActivityInput describes a feed entry to record.
type ActivityInput struct {
	Type        domain.ActivityType
	Title       string
	Description *string
	EntityType  *string
	EntityID    *int64
}

// ActivityPage is one page of the feed.
type ActivityPage struct {
	Activities []domain.Activity `json:"activities"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
}

// ActivityStats carries lightweight aggregate counts for the dashboard.
type ActivityStats struct {
	Today int64 `json:"today"`
	Week  int64 `json:"week"`
	Month int64 `json:"month"`
}

// NewActivityService constructs the service.
func NewActivityService(activityRepo repository.ActivityRepository, dispatcher events.Dispatcher) *ActivityService {
	return &ActivityService{
		activities: activityRepo,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Record appends one activity entry and broadcasts it. Entries are immutable
// once written.
func (s *ActivityService) Record(ctx context.Context, actor *domain.User, input ActivityInput) (*domain.Activity, error) {
	activity := &domain.Activity{
		Type:        input.Type,
		Title:       input.Title,
		Description: input.Description,
		EntityType:  input.EntityType,
		EntityID:    input.EntityID,
		UserName:    "System",
	}
	if actor != nil {
		activity.UserID = &actor.ID
		if actor.Name != "" {
			activity.UserName = actor.Name
		} else {
			activity.UserName = actor.Email
		}
	}

	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventActivityRecorded,
			ActorID:   activity.UserID,
			Timestamp: s.now(),
			Payload: events.ActivityRecordedPayload{
				ActivityID: activity.ID,
				Type:       activity.Type,
				Title:      activity.Title,
			},
		})
	}
	return activity, nil
}

// List returns one page of the feed, newest first.
func (s *ActivityService) List(ctx context.Context, page, pageSize int, activityType *domain.ActivityType, entityType *string) (*ActivityPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	activities, total, err := s.activities.List(ctx, repository.ActivityFilter{
		Type:       activityType,
		EntityType: entityType,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &ActivityPage{
		Activities: activities,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// Stats returns entry counts for today, the trailing 7 days, and the
// trailing 30 days.
func (s *ActivityService) Stats(ctx context.Context) (*ActivityStats, error) {
	now := s.now()
	year, month, day := now.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, now.Location())

	today, err := s.activities.CountSince(ctx, midnight)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	week, err := s.activities.CountSince(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	month30, err := s.activities.CountSince(ctx, now.Add(-30*24*time.Hour))
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &ActivityStats{Today: today, Week: week, Month: month30}, nil
}
