package dto

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// ActivityResponse is one feed entry on the wire.
type ActivityResponse struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	EntityType  *string   `json:"entity_type"`
	EntityID    *int64    `json:"entity_id"`
	UserID      *int64    `json:"user_id"`
	UserName    string    `json:"user_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewActivityResponses maps an activity slice.
func NewActivityResponses(activities []domain.Activity) []ActivityResponse {
	items := make([]ActivityResponse, 0, len(activities))
	for _, a := range activities {
		items = append(items, ActivityResponse{
			ID:          a.ID,
			Type:        string(a.Type),
			Title:       a.Title,
			Description: a.Description,
			EntityType:  a.EntityType,
			EntityID:    a.EntityID,
			UserID:      a.UserID,
			UserName:    a.UserName,
			CreatedAt:   a.CreatedAt,
		})
	}
	return items
}
