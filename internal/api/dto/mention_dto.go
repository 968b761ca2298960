package dto

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// UnreadMentionResponse is one notification-bell entry, enriched with the
// ticket subject and the mentioning user's name.
type UnreadMentionResponse struct {
	ID            int64     `json:"id"`
	TicketID      int64     `json:"ticket_id"`
	CommentID     int64     `json:"comment_id"`
	MentionedByID int64     `json:"mentioned_by_id"`
	MentionedBy   string    `json:"mentioned_by"`
	TicketSubject string    `json:"ticket_subject"`
	CommentBody   string    `json:"comment_body"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewUnreadMentionResponses maps an unread mention slice.
func NewUnreadMentionResponses(mentions []domain.UnreadMention) []UnreadMentionResponse {
	items := make([]UnreadMentionResponse, 0, len(mentions))
	for _, m := range mentions {
		items = append(items, UnreadMentionResponse{
			ID:            m.ID,
			TicketID:      m.TicketID,
			CommentID:     m.CommentID,
			MentionedByID: m.MentionedByID,
			MentionedBy:   m.MentionedBy,
			TicketSubject: m.TicketSubject,
			CommentBody:   m.CommentBody,
			CreatedAt:     m.CreatedAt,
		})
	}
	return items
}
