package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/repository"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// TicketService coordinates ticket workflows: creation, status transitions,
// assignment, and aggregate statistics.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	activities *ActivityService
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Activities *ActivityService
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	CustomerName  string
	CustomerEmail string
	Company       *string
	Subject       string
	Message       string
	Category      domain.TicketCategory
	Priority      domain.TicketPriority
}

// TicketUpdateInput carries optional admin edits; nil fields are untouched.
type TicketUpdateInput struct {
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	AdminNotes *string
	AssignedTo *int64
}

// TicketListFilter describes admin listing filters.
type TicketListFilter struct {
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	Category   *domain.TicketCategory
	SearchTerm *string
	Limit      int
	Offset     int
}

// TicketStats aggregates counts by status, priority, and category.
type TicketStats struct {
	Total      int                           `json:"total"`
	Open       int                           `json:"open"`
	InProgress int                           `json:"in_progress"`
	Resolved   int                           `json:"resolved"`
	Closed     int                           `json:"closed"`
	ByPriority map[domain.TicketPriority]int `json:"by_priority"`
	ByCategory map[domain.TicketCategory]int `json:"by_category"`
}

// DayCategoryCounts is one chart bucket: ticket counts per category for a day.
type DayCategoryCounts struct {
	Date   string                        `json:"date"`
	Counts map[domain.TicketCategory]int `json:"counts"`
}

// DetailedTicketStats carries resolution-time and time-series aggregates.
// Tickets never resolved are excluded from the resolution-time mean.
type DetailedTicketStats struct {
	AvgResolutionTimeMs    float64             `json:"avg_resolution_time_ms"`
	AvgResolutionTimeHours float64             `json:"avg_resolution_time_hours"`
	TicketsLast7Days       int                 `json:"tickets_last_7_days"`
	TicketsLast30Days      int                 `json:"tickets_last_30_days"`
	TicketsByDay           []DayCategoryCounts `json:"tickets_by_day"`
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		activities: deps.Activities,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// CreateTicket creates a ticket from the public contact form. actor may be
// nil for anonymous submissions; authenticated customers get the ticket
// linked to their account.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.CustomerName) == "" ||
		strings.TrimSpace(input.CustomerEmail) == "" ||
		strings.TrimSpace(input.Subject) == "" ||
		strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.NewValidationError("customer_name, customer_email, subject, message required", nil)
	}
	if !strings.Contains(input.CustomerEmail, "@") {
		return nil, apperrors.NewValidationError("customer_email must be a valid email address", nil)
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if input.Category == "" {
		input.Category = domain.CategoryOther
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	if !domain.ValidCategory(input.Category) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}

	ticket := &domain.Ticket{
		TicketNumber:  generateTicketNumber(),
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		Company:       input.Company,
		Subject:       strings.TrimSpace(input.Subject),
		Message:       strings.TrimSpace(input.Message),
		Category:      input.Category,
		Priority:      input.Priority,
		Status:        domain.TicketStatusOpen,
	}
	if actor != nil {
		ticket.UserID = &actor.ID
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recordTicketActivity(ctx, actor, domain.ActivityTicketCreated,
		"New ticket "+ticket.TicketNumber, ticket.Subject, ticket.ID)
	s.publishEvent(ctx, actorID(actor), events.EventTicketCreated, events.TicketCreatedPayload{
		TicketID: ticket.ID,
		Subject:  ticket.Subject,
		Category: ticket.Category,
		Priority: ticket.Priority,
	})
	return ticket, nil
}

// GetTicket fetches a ticket. Staff see every ticket; customers only their own.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && (ticket.UserID == nil || *ticket.UserID != actor.ID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// ListMyTickets returns the caller's own tickets, newest first.
func (s *TicketService) ListMyTickets(ctx context.Context, actor *domain.User) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListTickets returns tickets matching the admin filter.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Status:     filter.Status,
		Priority:   filter.Priority,
		Category:   filter.Category,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// UpdateStatus transitions a ticket's status. The resolution timestamp is
// stamped on the first transition into resolved or closed and left untouched
// by every other transition, including reopening.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketID int64, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !actor.Role.IsStaff() {
		return nil, apperrors.NewForbidden("admin or support role required")
	}
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	s.stampResolved(ticket, newStatus)

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	activityType := domain.ActivityTicketUpdated
	if newStatus == domain.TicketStatusResolved {
		activityType = domain.ActivityTicketResolved
	}
	s.recordTicketActivity(ctx, actor, activityType,
		"Ticket "+ticket.TicketNumber+" status changed",
		string(oldStatus)+" -> "+string(newStatus), ticket.ID)
	s.publishEvent(ctx, &actor.ID, events.EventTicketStatusChanged, events.TicketStatusChangedPayload{
		TicketID:  ticket.ID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})
	return ticket, nil
}

// UpdateTicket applies optional admin edits in one call.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticketID int64, input TicketUpdateInput) (*domain.Ticket, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if input.Status != nil && !domain.ValidStatus(*input.Status) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
	}
	if input.Priority != nil && !domain.ValidPriority(*input.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
	}
	if input.AssignedTo != nil {
		if err := s.validateAssignee(ctx, *input.AssignedTo); err != nil {
			return nil, err
		}
	}

	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	if input.Status != nil {
		ticket.Status = *input.Status
		s.stampResolved(ticket, *input.Status)
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.AdminNotes != nil {
		ticket.AdminNotes = input.AdminNotes
	}
	if input.AssignedTo != nil {
		ticket.AssignedTo = input.AssignedTo
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recordTicketActivity(ctx, actor, domain.ActivityTicketUpdated,
		"Ticket "+ticket.TicketNumber+" updated", ticket.Subject, ticket.ID)
	if input.Status != nil && *input.Status != oldStatus {
		s.publishEvent(ctx, &actor.ID, events.EventTicketStatusChanged, events.TicketStatusChangedPayload{
			TicketID:  ticket.ID,
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		})
	}
	return ticket, nil
}

// Assign sets or clears a ticket's assignee. The role check runs before the
// ticket lookup, so callers without admin or support role get a permission
// error even for ids that do not exist. A nil assignee unassigns.
func (s *TicketService) Assign(ctx context.Context, actor *domain.User, ticketID int64, assignedTo *int64) (*domain.Ticket, error) {
	if !actor.Role.IsStaff() {
		return nil, apperrors.NewForbidden("admin or support role required")
	}
	if assignedTo != nil {
		if err := s.validateAssignee(ctx, *assignedTo); err != nil {
			return nil, err
		}
	}

	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	ticket.AssignedTo = assignedTo
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	title := "Ticket " + ticket.TicketNumber + " unassigned"
	if assignedTo != nil {
		title = "Ticket " + ticket.TicketNumber + " assigned"
	}
	s.recordTicketActivity(ctx, actor, domain.ActivityTicketAssigned, title, ticket.Subject, ticket.ID)
	s.publishEvent(ctx, &actor.ID, events.EventTicketAssigned, events.TicketAssignedPayload{
		TicketID:   ticket.ID,
		AssignedTo: assignedTo,
	})
	return ticket, nil
}

// SupportStaff lists users eligible for assignment (admin and support roles).
func (s *TicketService) SupportStaff(ctx context.Context) ([]domain.User, error) {
	staff, err := s.users.ListByRoles(ctx, domain.RoleAdmin, domain.RoleSupport)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}

// Stats returns counts by status, priority, and category.
func (s *TicketService) Stats(ctx context.Context) (*TicketStats, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &TicketStats{
		Total:      len(tickets),
		ByPriority: make(map[domain.TicketPriority]int),
		ByCategory: make(map[domain.TicketCategory]int),
	}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusResolved:
			stats.Resolved++
		case domain.TicketStatusClosed:
			stats.Closed++
		}
		stats.ByPriority[t.Priority]++
		stats.ByCategory[t.Category]++
	}
	return stats, nil
}

// DetailedStats computes resolution-time and time-series aggregates for the
// admin dashboard.
func (s *TicketService) DetailedStats(ctx context.Context) (*DetailedTicketStats, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.now()
	last7 := now.Add(-7 * 24 * time.Hour)
	last30 := now.Add(-30 * 24 * time.Hour)

	var resolvedCount int
	var totalResolutionMs float64
	stats := &DetailedTicketStats{}

	byDay := make(map[string]map[domain.TicketCategory]int, 30)
	order := make([]string, 0, 30)
	for i := 29; i >= 0; i-- {
		date := now.UTC().AddDate(0, 0, -i).Format("2006-01-02")
		byDay[date] = make(map[domain.TicketCategory]int)
		order = append(order, date)
	}

	for _, t := range tickets {
		if t.ResolvedAt != nil {
			resolvedCount++
			totalResolutionMs += float64(t.ResolvedAt.Sub(t.CreatedAt).Milliseconds())
		}
		if !t.CreatedAt.Before(last7) {
			stats.TicketsLast7Days++
		}
		if !t.CreatedAt.Before(last30) {
			stats.TicketsLast30Days++
		}
		day := t.CreatedAt.UTC().Format("2006-01-02")
		if counts, ok := byDay[day]; ok {
			counts[t.Category]++
		}
	}

	if resolvedCount > 0 {
		stats.AvgResolutionTimeMs = totalResolutionMs / float64(resolvedCount)
		stats.AvgResolutionTimeHours = math.Round(stats.AvgResolutionTimeMs/(1000*60*60)*10) / 10
	}

	stats.TicketsByDay = make([]DayCategoryCounts, 0, len(order))
	for _, date := range order {
		stats.TicketsByDay = append(stats.TicketsByDay, DayCategoryCounts{
			Date:   date,
			Counts: byDay[date],
		})
	}
	return stats, nil
}

func (s *TicketService) fetchTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// validateAssignee checks the target exists and may work tickets.
func (s *TicketService) validateAssignee(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	if !user.Role.IsStaff() {
		return apperrors.NewValidationError("assignee must have admin or support role",
			map[string]any{"user_id": userID, "role": user.Role})
	}
	return nil
}

// stampResolved sets ResolvedAt on the first transition into resolved or
// closed. It is write-once: later transitions never touch it.
func (s *TicketService) stampResolved(ticket *domain.Ticket, newStatus domain.TicketStatus) {
	if newStatus != domain.TicketStatusResolved && newStatus != domain.TicketStatusClosed {
		return
	}
	if ticket.ResolvedAt != nil {
		return
	}
	now := s.now()
	ticket.ResolvedAt = &now
}

// recordTicketActivity appends an activity row; failures are swallowed so a
// display-feed hiccup never fails the mutation that triggered it.
func (s *TicketService) recordTicketActivity(ctx context.Context, actor *domain.User, activityType domain.ActivityType, title, description string, ticketID int64) {
	if s.activities == nil {
		return
	}
	entityType := "ticket"
	_, _ = s.activities.Record(ctx, actor, ActivityInput{
		Type:        activityType,
		Title:       title,
		Description: &description,
		EntityType:  &entityType,
		EntityID:    &ticketID,
	})
}

func (s *TicketService) publishEvent(ctx context.Context, actorID *int64, eventType events.EventType, payload any) {
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

func actorID(actor *domain.User) *int64 {
	if actor == nil {
		return nil
	}
	return &actor.ID
}

func generateTicketNumber() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
