package events

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventCommentAdded        EventType = "comment_added"
	EventMentionCreated      EventType = "mention_created"
	EventActivityRecorded    EventType = "activity_recorded"
)

// Event represents a domain event emitted by services. Payloads are typed
// per event; consumers type-assert on Type.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ActorID   *int64    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID int64                 `json:"ticket_id"`
	Subject  string                `json:"subject"`
	Category domain.TicketCategory `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketID  int64               `json:"ticket_id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload. AssignedTo is nil on unassignment.
type TicketAssignedPayload struct {
	TicketID   int64  `json:"ticket_id"`
	AssignedTo *int64 `json:"assigned_to,omitempty"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	TicketID  int64 `json:"ticket_id"`
	CommentID int64 `json:"comment_id"`
	Internal  bool  `json:"internal"`
}

// MentionCreatedPayload payload.
type MentionCreatedPayload struct {
	MentionID       int64  `json:"mention_id"`
	TicketID        int64  `json:"ticket_id"`
	CommentID       int64  `json:"comment_id"`
	MentionedUserID int64  `json:"mentioned_user_id"`
	MentionedBy     string `json:"mentioned_by"`
	TicketSubject   string `json:"ticket_subject"`
}

// ActivityRecordedPayload payload.
type ActivityRecordedPayload struct {
	ActivityID int64               `json:"activity_id"`
	Type       domain.ActivityType `json:"activity_type"`
	Title      string              `json:"title"`
}
