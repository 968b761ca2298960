package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
)

// In-memory repositories used by the service tests. They honor the same
// contracts as the Postgres implementations, including pgx.ErrNoRows for
// missing rows.

type fakeTicketRepo struct {
	nextID  int64
	order   []int64
	tickets map[int64]*domain.Ticket
	now     func() time.Time
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[int64]*domain.Ticket), now: time.Now}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.nextID++
	ticket.ID = f.nextID
	ticket.CreatedAt = f.now()
	ticket.UpdatedAt = ticket.CreatedAt
	cp := *ticket
	f.tickets[ticket.ID] = &cp
	f.order = append(f.order, ticket.ID)
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = f.now()
	cp := *ticket
	f.tickets[ticket.ID] = &cp
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *ticket
	return &cp, nil
}

func (f *fakeTicketRepo) ListByUser(_ context.Context, userID int64) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, id := range f.order {
		t := f.tickets[id]
		if t.UserID != nil && *t.UserID == userID {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (f *fakeTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	result := make([]domain.Ticket, 0, len(f.order))
	for _, id := range f.order {
		result = append(result, *f.tickets[id])
	}
	return result, nil
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, id := range f.order {
		t := f.tickets[id]
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.Category != nil && t.Category != *filter.Category {
			continue
		}
		if filter.SearchTerm != nil {
			needle := strings.ToLower(*filter.SearchTerm)
			if !strings.Contains(strings.ToLower(t.Subject), needle) &&
				!strings.Contains(strings.ToLower(t.Message), needle) &&
				!strings.Contains(strings.ToLower(t.CustomerName), needle) {
				continue
			}
		}
		result = append(result, *t)
	}
	return result, nil
}

// put stores a ticket verbatim, bypassing Create's timestamping. Used to
// seed historical data for the stats tests.
func (f *fakeTicketRepo) put(ticket domain.Ticket) {
	if ticket.ID == 0 {
		f.nextID++
		ticket.ID = f.nextID
	} else if ticket.ID > f.nextID {
		f.nextID = ticket.ID
	}
	f.tickets[ticket.ID] = &ticket
	f.order = append(f.order, ticket.ID)
}

type fakeUserRepo struct {
	nextID int64
	order  []int64
	users  map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.users[user.ID] = &cp
	f.order = append(f.order, user.ID)
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, id := range f.order {
		if f.users[id].Email == email {
			cp := *f.users[id]
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByName(_ context.Context, name string) (*domain.User, error) {
	for _, id := range f.order {
		if f.users[id].Name == name {
			cp := *f.users[id]
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) ListByRoles(_ context.Context, roles ...domain.Role) ([]domain.User, error) {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	var result []domain.User
	for _, id := range f.order {
		if _, ok := allowed[f.users[id].Role]; ok {
			result = append(result, *f.users[id])
		}
	}
	return result, nil
}

func (f *fakeUserRepo) add(name, email string, role domain.Role) *domain.User {
	user := &domain.User{Name: name, Email: email, Role: role, LoginMethod: domain.LoginMethodLocal}
	_ = f.Create(context.Background(), user)
	return user
}

type fakeCommentRepo struct {
	nextID   int64
	comments []*domain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	f.nextID++
	comment.ID = f.nextID
	comment.CreatedAt = time.Now()
	cp := *comment
	f.comments = append(f.comments, &cp)
	return nil
}

func (f *fakeCommentRepo) ListByTicket(_ context.Context, ticketID int64, includeInternal bool) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, c := range f.comments {
		if c.TicketID != ticketID {
			continue
		}
		if c.Internal && !includeInternal {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}

type fakeMentionRepo struct {
	nextID   int64
	order    []int64
	mentions map[int64]*domain.Mention
	users    *fakeUserRepo
	tickets  *fakeTicketRepo
	comments *fakeCommentRepo
}

func newFakeMentionRepo(users *fakeUserRepo, tickets *fakeTicketRepo, comments *fakeCommentRepo) *fakeMentionRepo {
	return &fakeMentionRepo{
		mentions: make(map[int64]*domain.Mention),
		users:    users,
		tickets:  tickets,
		comments: comments,
	}
}

func (f *fakeMentionRepo) Create(_ context.Context, mention *domain.Mention) error {
	f.nextID++
	mention.ID = f.nextID
	mention.CreatedAt = time.Now()
	cp := *mention
	f.mentions[mention.ID] = &cp
	f.order = append(f.order, mention.ID)
	return nil
}

func (f *fakeMentionRepo) GetByID(_ context.Context, id int64) (*domain.Mention, error) {
	mention, ok := f.mentions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *mention
	return &cp, nil
}

func (f *fakeMentionRepo) ListUnread(_ context.Context, userID int64, limit int) ([]domain.UnreadMention, error) {
	var result []domain.UnreadMention
	for i := len(f.order) - 1; i >= 0 && len(result) < limit; i-- {
		m := f.mentions[f.order[i]]
		if m.MentionedUserID != userID || m.Read {
			continue
		}
		unread := domain.UnreadMention{
			ID:            m.ID,
			TicketID:      m.TicketID,
			CommentID:     m.CommentID,
			MentionedByID: m.MentionedByID,
			CreatedAt:     m.CreatedAt,
		}
		if f.users != nil {
			if u, ok := f.users.users[m.MentionedByID]; ok {
				unread.MentionedBy = u.Name
			}
		}
		if f.tickets != nil {
			if t, ok := f.tickets.tickets[m.TicketID]; ok {
				unread.TicketSubject = t.Subject
			}
		}
		if f.comments != nil {
			for _, c := range f.comments.comments {
				if c.ID == m.CommentID {
					unread.CommentBody = c.Body
					break
				}
			}
		}
		result = append(result, unread)
	}
	return result, nil
}

func (f *fakeMentionRepo) MarkRead(_ context.Context, id int64) error {
	if m, ok := f.mentions[id]; ok {
		m.Read = true
	}
	return nil
}

func (f *fakeMentionRepo) MarkAllRead(_ context.Context, userID int64) error {
	for _, m := range f.mentions {
		if m.MentionedUserID == userID {
			m.Read = true
		}
	}
	return nil
}

type fakeActivityRepo struct {
	nextID  int64
	entries []domain.Activity
	now     func() time.Time
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{now: time.Now}
}

func (f *fakeActivityRepo) Create(_ context.Context, activity *domain.Activity) error {
	f.nextID++
	activity.ID = f.nextID
	activity.CreatedAt = f.now()
	f.entries = append(f.entries, *activity)
	return nil
}

func (f *fakeActivityRepo) List(_ context.Context, filter repository.ActivityFilter) ([]domain.Activity, int64, error) {
	var matched []domain.Activity
	for i := len(f.entries) - 1; i >= 0; i-- {
		entry := f.entries[i]
		if filter.Type != nil && entry.Type != *filter.Type {
			continue
		}
		if filter.EntityType != nil && (entry.EntityType == nil || *entry.EntityType != *filter.EntityType) {
			continue
		}
		matched = append(matched, entry)
	}
	total := int64(len(matched))
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (f *fakeActivityRepo) CountSince(_ context.Context, since time.Time) (int64, error) {
	var count int64
	for _, entry := range f.entries {
		if !entry.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}
