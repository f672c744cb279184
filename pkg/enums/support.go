package enums

import "fmt"

// TicketStatus tracks the support ticket lifecycle.
type TicketStatus string

const (
	TicketStatusOpen            TicketStatus = "open"
	TicketStatusInProgress      TicketStatus = "in_progress"
	TicketStatusWaitingCustomer TicketStatus = "waiting_customer"
	TicketStatusResolved        TicketStatus = "resolved"
	TicketStatusClosed          TicketStatus = "closed"
)

var validTicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusWaitingCustomer,
	TicketStatusResolved,
	TicketStatusClosed,
}

// IsValid reports whether the value is a known TicketStatus.
func (t TicketStatus) IsValid() bool {
	for _, candidate := range validTicketStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsOpen reports whether the ticket still needs attention.
func (t TicketStatus) IsOpen() bool {
	return t == TicketStatusOpen || t == TicketStatusInProgress || t == TicketStatusWaitingCustomer
}

// ParseTicketStatus converts raw input into a TicketStatus.
func ParseTicketStatus(value string) (TicketStatus, error) {
	for _, candidate := range validTicketStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ticket status %q", value)
}

// TicketPriority ranks how urgently a ticket should be handled.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

var validTicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityUrgent,
}

// IsValid reports whether the value is a known TicketPriority.
func (t TicketPriority) IsValid() bool {
	for _, candidate := range validTicketPriorities {
		if candidate == t {
			return true
		}
	}
	return false
}

// TicketCategory groups tickets for triage.
type TicketCategory string

const (
	TicketCategoryTechnical TicketCategory = "technical"
	TicketCategoryDelivery  TicketCategory = "delivery"
	TicketCategoryProduct   TicketCategory = "product"
	TicketCategoryPayment   TicketCategory = "payment"
	TicketCategoryAccount   TicketCategory = "account"
	TicketCategoryOther     TicketCategory = "other"
)

var validTicketCategories = []TicketCategory{
	TicketCategoryTechnical,
	TicketCategoryDelivery,
	TicketCategoryProduct,
	TicketCategoryPayment,
	TicketCategoryAccount,
	TicketCategoryOther,
}

// IsValid reports whether the value is a known TicketCategory.
func (t TicketCategory) IsValid() bool {
	for _, candidate := range validTicketCategories {
		if candidate == t {
			return true
		}
	}
	return false
}
