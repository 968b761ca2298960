package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

type ticketFixture struct {
	service    *TicketService
	tickets    *fakeTicketRepo
	users      *fakeUserRepo
	activities *fakeActivityRepo
	dispatcher events.Dispatcher
	admin      *domain.User
	support    *domain.User
	customer   *domain.User
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	tickets := newFakeTicketRepo()
	users := newFakeUserRepo()
	activities := newFakeActivityRepo()
	dispatcher := events.NewInMemoryDispatcher()

	svc := NewTicketService(TicketDependencies{
		TicketRepo: tickets,
		UserRepo:   users,
		Activities: NewActivityService(activities, dispatcher),
		Dispatcher: dispatcher,
	})

	return &ticketFixture{
		service:    svc,
		tickets:    tickets,
		users:      users,
		activities: activities,
		dispatcher: dispatcher,
		admin:      users.add("alice", "alice@example.com", domain.RoleAdmin),
		support:    users.add("bob", "bob@example.com", domain.RoleSupport),
		customer:   users.add("carol", "carol@example.com", domain.RoleUser),
	}
}

func validCreateInput() TicketCreateInput {
	return TicketCreateInput{
		CustomerName:  "Dana Kunde",
		CustomerEmail: "dana@example.com",
		Subject:       "VPN keeps dropping",
		Message:       "Connection drops every few minutes since Monday.",
	}
}

func TestCreateTicket_Defaults(t *testing.T) {
	fx := newTicketFixture(t)

	ticket, err := fx.service.CreateTicket(context.Background(), nil, validCreateInput())
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, domain.CategoryOther, ticket.Category)
	assert.True(t, strings.HasPrefix(ticket.TicketNumber, "TCK-"))
	assert.Nil(t, ticket.UserID)
	assert.Nil(t, ticket.ResolvedAt)

	require.Len(t, fx.activities.entries, 1)
	assert.Equal(t, domain.ActivityTicketCreated, fx.activities.entries[0].Type)
	assert.Equal(t, "System", fx.activities.entries[0].UserName)
}

func TestCreateTicket_LinksAuthenticatedCustomer(t *testing.T) {
	fx := newTicketFixture(t)

	ticket, err := fx.service.CreateTicket(context.Background(), fx.customer, validCreateInput())
	require.NoError(t, err)

	require.NotNil(t, ticket.UserID)
	assert.Equal(t, fx.customer.ID, *ticket.UserID)
}

func TestCreateTicket_Validation(t *testing.T) {
	fx := newTicketFixture(t)

	input := validCreateInput()
	input.Subject = "   "
	_, err := fx.service.CreateTicket(context.Background(), nil, input)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	input = validCreateInput()
	input.CustomerEmail = "not-an-email"
	_, err = fx.service.CreateTicket(context.Background(), nil, input)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	input = validCreateInput()
	input.Priority = domain.TicketPriority("asap")
	_, err = fx.service.CreateTicket(context.Background(), nil, input)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestCreateTicket_PublishesEvent(t *testing.T) {
	fx := newTicketFixture(t)

	var got []events.Event
	fx.dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	})

	ticket, err := fx.service.CreateTicket(context.Background(), fx.customer, validCreateInput())
	require.NoError(t, err)

	require.Len(t, got, 1)
	payload, ok := got[0].Payload.(events.TicketCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, ticket.ID, payload.TicketID)
}

func TestUpdateStatus_RequiresStaff(t *testing.T) {
	fx := newTicketFixture(t)

	ticket, err := fx.service.CreateTicket(context.Background(), fx.customer, validCreateInput())
	require.NoError(t, err)

	_, err = fx.service.UpdateStatus(context.Background(), fx.customer, ticket.ID, domain.TicketStatusResolved)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestUpdateStatus_StampsResolutionOnce(t *testing.T) {
	fx := newTicketFixture(t)

	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	fx.service.now = func() time.Time { return base }

	ticket, err := fx.service.CreateTicket(context.Background(), fx.customer, validCreateInput())
	require.NoError(t, err)

	resolved, err := fx.service.UpdateStatus(context.Background(), fx.support, ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, base, *resolved.ResolvedAt)

	// Reopen, then close again later. The first resolution timestamp stays.
	fx.service.now = func() time.Time { return base.Add(48 * time.Hour) }

	reopened, err := fx.service.UpdateStatus(context.Background(), fx.support, ticket.ID, domain.TicketStatusOpen)
	require.NoError(t, err)
	require.NotNil(t, reopened.ResolvedAt)
	assert.Equal(t, base, *reopened.ResolvedAt)

	closed, err := fx.service.UpdateStatus(context.Background(), fx.support, ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)
	require.NotNil(t, closed.ResolvedAt)
	assert.Equal(t, base, *closed.ResolvedAt)
}

func TestUpdateStatus_RecordsResolvedActivity(t *testing.T) {
	fx := newTicketFixture(t)

	ticket, err := fx.service.CreateTicket(context.Background(), fx.customer, validCreateInput())
	require.NoError(t, err)

	_, err = fx.service.UpdateStatus(context.Background(), fx.admin, ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)

	last := fx.activities.entries[len(fx.activities.entries)-1]
	assert.Equal(t, domain.ActivityTicketResolved, last.Type)
	assert.Equal(t, fx.admin.Name, last.UserName)
}

func TestAssign_PermissionCheckedBeforeExistence(t *testing.T) {
	fx := newTicketFixture(t)

	// Nonexistent ticket id: a non-staff caller still gets the permission
	// error, not a lookup error.
	_, err := fx.service.Assign(context.Background(), fx.customer, 9999, &fx.support.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestAssign_ValidatesTarget(t *testing.T) {
	fx := newTicketFixture(t)

	ticket, err := fx.service.CreateTicket(context.Background(), fx.customer, validCreateInput())
	require.NoError(t, err)

	missing := int64(12345)
	_, err = fx.service.Assign(context.Background(), fx.admin, ticket.ID, &missing)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	_, err = fx.service.Assign(context.Background(), fx.admin, ticket.ID, &fx.customer.ID)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestAssign_SetAndClear(t *testing.T) {
	fx := newTicketFixture(t)

	ticket, err := fx.service.CreateTicket(context.Background(), fx.customer, validCreateInput())
	require.NoError(t, err)

	assigned, err := fx.service.Assign(context.Background(), fx.admin, ticket.ID, &fx.support.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, fx.support.ID, *assigned.AssignedTo)

	unassigned, err := fx.service.Assign(context.Background(), fx.admin, ticket.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, unassigned.AssignedTo)
}

func TestGetTicket_CustomerAccess(t *testing.T) {
	fx := newTicketFixture(t)

	ticket, err := fx.service.CreateTicket(context.Background(), fx.customer, validCreateInput())
	require.NoError(t, err)

	other := fx.users.add("dave", "dave@example.com", domain.RoleUser)
	_, err = fx.service.GetTicket(context.Background(), other, ticket.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	got, err := fx.service.GetTicket(context.Background(), fx.customer, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	got, err = fx.service.GetTicket(context.Background(), fx.support, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
}

func TestSupportStaff_OnlyAdminAndSupport(t *testing.T) {
	fx := newTicketFixture(t)
	fx.users.add("erin", "erin@example.com", domain.RoleAccounting)

	staff, err := fx.service.SupportStaff(context.Background())
	require.NoError(t, err)

	require.Len(t, staff, 2)
	names := []string{staff[0].Name, staff[1].Name}
	assert.Contains(t, names, "alice")
	assert.Contains(t, names, "bob")
}

func TestStats_CountsByStatusPriorityCategory(t *testing.T) {
	fx := newTicketFixture(t)
	now := time.Now()

	fx.tickets.put(domain.Ticket{
		Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityUrgent,
		Category: domain.CategorySecurity, CreatedAt: now,
	})
	fx.tickets.put(domain.Ticket{
		Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityLow,
		Category: domain.CategoryNetwork, CreatedAt: now,
	})
	fx.tickets.put(domain.Ticket{
		Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityUrgent,
		Category: domain.CategorySecurity, CreatedAt: now,
	})

	stats, err := fx.service.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Open)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 2, stats.ByPriority[domain.TicketPriorityUrgent])
	assert.Equal(t, 2, stats.ByCategory[domain.CategorySecurity])
	assert.Equal(t, 1, stats.ByCategory[domain.CategoryNetwork])
}

func TestDetailedStats_ResolutionAverageAndBuckets(t *testing.T) {
	fx := newTicketFixture(t)

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	fx.service.now = func() time.Time { return now }

	resolvedAt2h := now.Add(-10 * 24 * time.Hour)
	created2h := resolvedAt2h.Add(-2 * time.Hour)
	resolvedAt4h := now.Add(-1 * time.Hour)
	created4h := resolvedAt4h.Add(-4 * time.Hour)

	fx.tickets.put(domain.Ticket{
		Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityHigh,
		Category: domain.CategorySecurity, CreatedAt: created2h, ResolvedAt: &resolvedAt2h,
	})
	fx.tickets.put(domain.Ticket{
		Status: domain.TicketStatusClosed, Priority: domain.TicketPriorityUrgent,
		Category: domain.CategorySecurity, CreatedAt: created4h, ResolvedAt: &resolvedAt4h,
	})
	// Never resolved: excluded from the average, counted in the windows.
	fx.tickets.put(domain.Ticket{
		Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow,
		Category: domain.CategoryEmail, CreatedAt: now.Add(-40 * 24 * time.Hour),
	})

	stats, err := fx.service.DetailedStats(context.Background())
	require.NoError(t, err)

	// (2h + 4h) / 2 = 3h
	assert.InDelta(t, 3*60*60*1000, stats.AvgResolutionTimeMs, 0.1)
	assert.InDelta(t, 3.0, stats.AvgResolutionTimeHours, 0.001)
	assert.Equal(t, 1, stats.TicketsLast7Days)
	assert.Equal(t, 2, stats.TicketsLast30Days)

	require.Len(t, stats.TicketsByDay, 30)
	assert.True(t, stats.TicketsByDay[0].Date < stats.TicketsByDay[29].Date)

	today := stats.TicketsByDay[29]
	assert.Equal(t, now.Format("2006-01-02"), today.Date)
	assert.Equal(t, 1, today.Counts[domain.CategorySecurity])
}

func TestUpdateTicket_AdminOnly(t *testing.T) {
	fx := newTicketFixture(t)

	ticket, err := fx.service.CreateTicket(context.Background(), fx.customer, validCreateInput())
	require.NoError(t, err)

	notes := "waiting on vendor"
	_, err = fx.service.UpdateTicket(context.Background(), fx.support, ticket.ID, TicketUpdateInput{AdminNotes: &notes})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	priority := domain.TicketPriorityUrgent
	updated, err := fx.service.UpdateTicket(context.Background(), fx.admin, ticket.ID, TicketUpdateInput{
		Priority:   &priority,
		AdminNotes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityUrgent, updated.Priority)
	require.NotNil(t, updated.AdminNotes)
	assert.Equal(t, notes, *updated.AdminNotes)
}
