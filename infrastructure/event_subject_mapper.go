package infrastructure

import (
	"fmt"

	"layledger/events"
)

// StreamName is the JetStream stream holding every ledger subject
const StreamName = "ledger_events"

var subjectsByType = map[events.EventType]string{
	events.EventTypeBalanceChange:        "ledger.balance_changed",
	events.EventTypeBetPlaced:            "lays.placed",
	events.EventTypeBetStatusChanged:     "lays.status_changed",
	events.EventTypeWithdrawRequested:    "withdrawals.requested",
	events.EventTypeWeeklyRewardPaid:     "bonuses.reward_paid",
	events.EventTypeDepositAddressIssued: "deposits.address_issued",
	events.EventTypeRolloverCompleted:    "bonuses.rollover_completed",
}

// EventSubjectMapper handles mapping between ledger events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts an event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := subjectsByType[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range subjectsByType {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects the ledger publishes to, in event type order
func (m *EventSubjectMapper) GetAllSubjects() []string {
	types := events.AllEventTypes()
	subjects := make([]string, 0, len(types))
	for _, eventType := range types {
		subjects = append(subjects, subjectsByType[eventType])
	}
	return subjects
}
