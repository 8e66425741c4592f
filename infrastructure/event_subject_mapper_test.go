package infrastructure

import (
	"testing"

	"layledger/events"

	"github.com/stretchr/testify/assert"
)

func TestEventSubjectMapper(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.BalanceChangeEvent{}, "ledger.balance_changed"},
		{events.BetPlacedEvent{}, "lays.placed"},
		{events.BetStatusChangedEvent{}, "lays.status_changed"},
		{events.WithdrawRequestedEvent{}, "withdrawals.requested"},
		{events.WeeklyRewardPaidEvent{}, "bonuses.reward_paid"},
		{events.DepositAddressIssuedEvent{}, "deposits.address_issued"},
		{events.RolloverCompletedEvent{}, "bonuses.rollover_completed"},
	}

	for _, tt := range tests {
		t.Run(string(tt.event.Type()), func(t *testing.T) {
			assert.Equal(t, tt.subject, mapper.MapEventToSubject(tt.event))
			assert.Equal(t, tt.event.Type(), mapper.MapSubjectToEventType(tt.subject))
		})
	}

	assert.Len(t, mapper.GetAllSubjects(), len(events.AllEventTypes()))
	assert.Equal(t, events.EventType("other.subject"), mapper.MapSubjectToEventType("other.subject"))
}
