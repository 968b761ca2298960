package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketCategory classifies the reported problem area.
type TicketCategory string

const (
	CategoryNetwork  TicketCategory = "network"
	CategoryHardware TicketCategory = "hardware"
	CategorySoftware TicketCategory = "software"
	CategoryEmail    TicketCategory = "email"
	CategorySecurity TicketCategory = "security"
	CategoryOther    TicketCategory = "other"
	CategoryGeneral  TicketCategory = "general"
)

// ValidStatus reports whether s is a known ticket status.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c TicketCategory) bool {
	switch c {
	case CategoryNetwork, CategoryHardware, CategorySoftware, CategoryEmail,
		CategorySecurity, CategoryOther, CategoryGeneral:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
//
// ResolvedAt is stamped on the first transition into resolved or closed and
// is never cleared afterwards, even if the ticket is reopened.
type Ticket struct {
	ID            int64
	TicketNumber  string
	CustomerName  string
	CustomerEmail string
	Company       *string
	Subject       string
	Message       string
	Category      TicketCategory
	Priority      TicketPriority
	Status        TicketStatus
	AdminNotes    *string
	UserID        *int64
	AssignedTo    *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ResolvedAt    *time.Time
}
