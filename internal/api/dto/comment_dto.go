package dto

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// CreateCommentRequest appends a comment to a ticket thread.
type CreateCommentRequest struct {
	Body     string `json:"body"`
	Internal bool   `json:"internal"`
}

// CommentResponse is the wire shape of a comment.
type CommentResponse struct {
	ID         int64     `json:"id"`
	TicketID   int64     `json:"ticket_id"`
	UserID     *int64    `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	Internal   bool      `json:"internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewCommentResponse maps a domain comment to its wire shape.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		TicketID:   c.TicketID,
		UserID:     c.UserID,
		AuthorName: c.AuthorName,
		Body:       c.Body,
		Internal:   c.Internal,
		CreatedAt:  c.CreatedAt,
	}
}

// NewCommentResponses maps a comment slice.
func NewCommentResponses(comments []domain.Comment) []CommentResponse {
	items := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, NewCommentResponse(&comments[i]))
	}
	return items
}
