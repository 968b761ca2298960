package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/repository"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// mentionPattern matches @username tokens: an @ followed by one or more word
// characters (letters, digits, underscore).
var mentionPattern = regexp.MustCompile(`@(\w+)`)

// CommentService manages ticket threads and the mention pipeline hanging off
// of them.
type CommentService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	mentions   repository.MentionRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	MentionRepo repository.MentionRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		mentions:   deps.MentionRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// ExtractMentions returns the usernames of all @-mention tokens in text,
// left to right, duplicates preserved. It never fails: text without mentions
// yields an empty slice. Deduplication happens at the persistence step.
func ExtractMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	usernames := make([]string, 0, len(matches))
	for _, match := range matches {
		usernames = append(usernames, match[1])
	}
	return usernames
}

// Create appends a comment to a ticket and persists any mentions found in
// the body. Staff see and post on every ticket; customers only on their own.
// Only staff may post internal comments; the flag is silently dropped for
// everyone else.
func (s *CommentService) Create(ctx context.Context, actor *domain.User, ticketID int64, body string, internal bool) (*domain.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.NewValidationError("body required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	isStaff := actor.Role.IsStaff()
	if !isStaff && (ticket.UserID == nil || *ticket.UserID != actor.ID) {
		return nil, apperrors.NewForbidden("access denied")
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		UserID:     &actor.ID,
		AuthorName: actor.Name,
		Body:       body,
		Internal:   internal && isStaff,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.persistMentions(ctx, actor, ticket, comment.ID, ExtractMentions(body))

	s.publishEvent(ctx, &actor.ID, events.EventCommentAdded, events.CommentAddedPayload{
		TicketID:  ticket.ID,
		CommentID: comment.ID,
		Internal:  comment.Internal,
	})
	return comment, nil
}

// ListByTicket returns a ticket's thread. Internal comments are hidden from
// non-staff callers.
func (s *CommentService) ListByTicket(ctx context.Context, actor *domain.User, ticketID int64) ([]domain.Comment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	isStaff := actor.Role.IsStaff()
	if !isStaff && (ticket.UserID == nil || *ticket.UserID != actor.ID) {
		return nil, apperrors.NewForbidden("access denied")
	}

	comments, err := s.comments.ListByTicket(ctx, ticketID, isStaff)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// persistMentions resolves each candidate username and inserts a mention row
// per hit. Unknown usernames and per-token insert failures are dropped
// silently: a bad token must never abort comment creation. A user mentioned
// several times in one comment gets a single row.
func (s *CommentService) persistMentions(ctx context.Context, actor *domain.User, ticket *domain.Ticket, commentID int64, usernames []string) {
	seen := make(map[int64]struct{}, len(usernames))
	for _, username := range usernames {
		mentioned, err := s.users.GetByName(ctx, username)
		if err != nil {
			continue
		}
		if _, dup := seen[mentioned.ID]; dup {
			continue
		}
		seen[mentioned.ID] = struct{}{}

		mention := &domain.Mention{
			TicketID:        ticket.ID,
			CommentID:       commentID,
			MentionedUserID: mentioned.ID,
			MentionedByID:   actor.ID,
			Read:            false,
		}
		if err := s.mentions.Create(ctx, mention); err != nil {
			continue
		}

		s.publishEvent(ctx, &actor.ID, events.EventMentionCreated, events.MentionCreatedPayload{
			MentionID:       mention.ID,
			TicketID:        ticket.ID,
			CommentID:       commentID,
			MentionedUserID: mentioned.ID,
			MentionedBy:     actor.Name,
			TicketSubject:   ticket.Subject,
		})
	}
}

func (s *CommentService) publishEvent(ctx context.Context, actorID *int64, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: s.now(),
		Payload:   payload,
	})
}
