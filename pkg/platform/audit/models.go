package audit

import (
	"context"
	"time"

	id "callguard/pkg/domain"
)

// EventCategory classifies audit events so stores can apply different
// retention.
type EventCategory string

const (
	// CategoryCompliance covers changes a subscriber made to their own
	// blocking configuration.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers degraded screening (unreachable or misbehaving
	// screening services).
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers per-call decisions. High volume, short retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	ProfileID id.ProfileID
	// Subject is the hashed caller handle. Raw handles are never stored.
	Subject   string
	Action    string
	Decision  string
	Reason    string
	Component string
	RequestID string
	// ActorID is the calling service, when known.
	ActorID string
}

type AuditEvent string

const (
	EventBlockStatusRecorded AuditEvent = "block_status_recorded"
	EventScreeningCompleted  AuditEvent = "screening_session_completed"
	EventScreeningFinished   AuditEvent = "screening_finished"
	EventFilteringDecided    AuditEvent = "filtering_decided"

	EventScreenerUnavailable AuditEvent = "screener_unavailable"

	EventNumberBlocked      AuditEvent = "number_blocked"
	EventNumberUnblocked    AuditEvent = "number_unblocked"
	EventBlockPolicyUpdated AuditEvent = "block_policy_updated"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventNumberBlocked:      CategoryCompliance,
	EventNumberUnblocked:    CategoryCompliance,
	EventBlockPolicyUpdated: CategoryCompliance,

	EventScreenerUnavailable: CategorySecurity,

	EventBlockStatusRecorded: CategoryOperations,
	EventScreeningCompleted:  CategoryOperations,
	EventScreeningFinished:   CategoryOperations,
	EventFilteringDecided:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByProfile(ctx context.Context, profileID id.ProfileID) ([]Event, error)
}
