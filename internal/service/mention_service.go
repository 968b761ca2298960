package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

const unreadMentionLimit = 50

// MentionService serves the notification bell.
type MentionService struct {
	mentions repository.MentionRepository
}

// NewMentionService constructs the service.
func NewMentionService(mentionRepo repository.MentionRepository) *MentionService {
	return &MentionService{mentions: mentionRepo}
}

// GetUnreadMentions returns the caller's unread mentions, newest first,
// enriched with the ticket subject and the mentioning user's name.
func (s *MentionService) GetUnreadMentions(ctx context.Context, userID int64) ([]domain.UnreadMention, error) {
	unread, err := s.mentions.ListUnread(ctx, userID, unreadMentionLimit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if unread == nil {
		unread = []domain.UnreadMention{}
	}
	return unread, nil
}

// MarkAsRead flags one mention as read. Only the mentioned user may do so.
// The operation is idempotent: marking an already-read mention succeeds and
// changes nothing.
func (s *MentionService) MarkAsRead(ctx context.Context, userID, mentionID int64) error {
	mention, err := s.mentions.GetByID(ctx, mentionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("mention", map[string]any{"mention_id": mentionID})
		}
		return apperrors.MapError(err)
	}
	if mention.MentionedUserID != userID {
		return apperrors.NewForbidden("mention belongs to another user")
	}
	if err := s.mentions.MarkRead(ctx, mentionID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// MarkAllAsRead flags every unread mention of the caller as read.
func (s *MentionService) MarkAllAsRead(ctx context.Context, userID int64) error {
	if err := s.mentions.MarkAllRead(ctx, userID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
