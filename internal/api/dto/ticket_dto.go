package dto

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// CreateTicketRequest is the public contact-form payload.
type CreateTicketRequest struct {
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	Company       *string `json:"company"`
	Subject       string  `json:"subject"`
	Message       string  `json:"message"`
	Category      string  `json:"category"`
	Priority      string  `json:"priority"`
}

// UpdateTicketStatusRequest changes a ticket's status.
type UpdateTicketStatusRequest struct {
	Status string `json:"status"`
}

// UpdateTicketRequest carries optional admin edits; absent fields stay as is.
type UpdateTicketRequest struct {
	Status     *string `json:"status"`
	Priority   *string `json:"priority"`
	AdminNotes *string `json:"admin_notes"`
	AssignedTo *int64  `json:"assigned_to"`
}

// AssignTicketRequest sets or clears the assignee; null unassigns.
type AssignTicketRequest struct {
	AssignedTo *int64 `json:"assigned_to"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID            int64      `json:"id"`
	TicketNumber  string     `json:"ticket_number"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	Company       *string    `json:"company"`
	Subject       string     `json:"subject"`
	Message       string     `json:"message"`
	Category      string     `json:"category"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	AdminNotes    *string    `json:"admin_notes,omitempty"`
	UserID        *int64     `json:"user_id"`
	AssignedTo    *int64     `json:"assigned_to"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ResolvedAt    *time.Time `json:"resolved_at"`
}

// NewTicketResponse maps a domain ticket to its wire shape.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:            t.ID,
		TicketNumber:  t.TicketNumber,
		CustomerName:  t.CustomerName,
		CustomerEmail: t.CustomerEmail,
		Company:       t.Company,
		Subject:       t.Subject,
		Message:       t.Message,
		Category:      string(t.Category),
		Priority:      string(t.Priority),
		Status:        string(t.Status),
		AdminNotes:    t.AdminNotes,
		UserID:        t.UserID,
		AssignedTo:    t.AssignedTo,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		ResolvedAt:    t.ResolvedAt,
	}
}

// NewTicketResponses maps a ticket slice.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}
