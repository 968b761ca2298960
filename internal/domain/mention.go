package domain

import "time"

// Mention records that a comment referenced a user via an @username token.
type Mention struct {
	ID              int64
	TicketID        int64
	CommentID       int64
	MentionedUserID int64
	MentionedByID   int64
	Read            bool
	CreatedAt       time.Time
}

// UnreadMention is a mention enriched for notification rendering.
type UnreadMention struct {
	ID            int64
	TicketID      int64
	CommentID     int64
	MentionedByID int64
	MentionedBy   string
	TicketSubject string
	CommentBody   string
	CreatedAt     time.Time
}
