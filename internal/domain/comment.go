package domain

import "time"

// Comment is a message on a ticket's thread. Internal comments are visible
// to staff only. The body may carry @username mention tokens.
type Comment struct {
	ID         int64
	TicketID   int64
	UserID     *int64
	AuthorName string
	Body       string
	Internal   bool
	CreatedAt  time.Time
}
