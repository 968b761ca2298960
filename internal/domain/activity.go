package domain

import "time"

// ActivityType tags a domain event in the activity feed.
type ActivityType string

const (
	ActivityTicketCreated  ActivityType = "ticket_created"
	ActivityTicketUpdated  ActivityType = "ticket_updated"
	ActivityTicketAssigned ActivityType = "ticket_assigned"
	ActivityTicketResolved ActivityType = "ticket_resolved"
	ActivityCommentAdded   ActivityType = "comment_added"
)

// Activity is an append-only log entry describing a domain event. Rows are
// never updated or deleted.
type Activity struct {
	ID          int64
	Type        ActivityType
	Title       string
	Description *string
	EntityType  *string
	EntityID    *int64
	UserID      *int64
	UserName    string
	CreatedAt   time.Time
}
