package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/servicedesk/internal/domain"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

func newMentionFixture(t *testing.T) (*MentionService, *fakeMentionRepo) {
	t.Helper()
	repo := newFakeMentionRepo(nil, nil, nil)
	return NewMentionService(repo), repo
}

func seedMention(t *testing.T, repo *fakeMentionRepo, mentionedUserID int64) *domain.Mention {
	t.Helper()
	mention := &domain.Mention{
		TicketID:        1,
		CommentID:       1,
		MentionedUserID: mentionedUserID,
		MentionedByID:   99,
	}
	require.NoError(t, repo.Create(context.Background(), mention))
	return mention
}

func TestGetUnreadMentions_EmptyIsNotNil(t *testing.T) {
	svc, _ := newMentionFixture(t)

	unread, err := svc.GetUnreadMentions(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, unread)
	assert.Empty(t, unread)
}

func TestGetUnreadMentions_NewestFirstAndOnlyUnread(t *testing.T) {
	svc, repo := newMentionFixture(t)

	first := seedMention(t, repo, 7)
	second := seedMention(t, repo, 7)
	seedMention(t, repo, 8)
	require.NoError(t, repo.MarkRead(context.Background(), first.ID))

	unread, err := svc.GetUnreadMentions(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, second.ID, unread[0].ID)
}

func TestMarkAsRead_Idempotent(t *testing.T) {
	svc, repo := newMentionFixture(t)
	mention := seedMention(t, repo, 7)

	require.NoError(t, svc.MarkAsRead(context.Background(), 7, mention.ID))
	assert.True(t, repo.mentions[mention.ID].Read)

	// Second call succeeds and changes nothing.
	require.NoError(t, svc.MarkAsRead(context.Background(), 7, mention.ID))
	assert.True(t, repo.mentions[mention.ID].Read)
}

func TestMarkAsRead_OwnershipEnforced(t *testing.T) {
	svc, repo := newMentionFixture(t)
	mention := seedMention(t, repo, 7)

	err := svc.MarkAsRead(context.Background(), 8, mention.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	assert.False(t, repo.mentions[mention.ID].Read)
}

func TestMarkAsRead_Missing(t *testing.T) {
	svc, _ := newMentionFixture(t)

	err := svc.MarkAsRead(context.Background(), 7, 12345)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestMarkAllAsRead(t *testing.T) {
	svc, repo := newMentionFixture(t)

	seedMention(t, repo, 7)
	seedMention(t, repo, 7)
	other := seedMention(t, repo, 8)

	require.NoError(t, svc.MarkAllAsRead(context.Background(), 7))

	unread, err := svc.GetUnreadMentions(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, unread)
	assert.False(t, repo.mentions[other.ID].Read)
}
