package events

import (
	"context"
	"sync"
	"time"

	"layledger/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange        EventType = "balance_change"
	EventTypeBetPlaced            EventType = "bet_placed"
	EventTypeBetStatusChanged     EventType = "bet_status_changed"
	EventTypeWithdrawRequested    EventType = "withdraw_requested"
	EventTypeWeeklyRewardPaid     EventType = "weekly_reward_paid"
	EventTypeDepositAddressIssued EventType = "deposit_address_issued"
	EventTypeRolloverCompleted    EventType = "rollover_completed"
)

// AllEventTypes lists every event type emitted by the ledger
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeBalanceChange,
		EventTypeBetPlaced,
		EventTypeBetStatusChanged,
		EventTypeWithdrawRequested,
		EventTypeWeeklyRewardPaid,
		EventTypeDepositAddressIssued,
		EventTypeRolloverCompleted,
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a wallet adjustment that was committed
type BalanceChangeEvent struct {
	UserID          int64                  `json:"user_id"`
	OldBalance      decimal.Decimal        `json:"old_balance"`
	NewBalance      decimal.Decimal        `json:"new_balance"`
	ChangeAmount    decimal.Decimal        `json:"change_amount"`
	TransactionType models.TransactionType `json:"transaction_type"`
	RelatedID       *string                `json:"related_id,omitempty"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// BetPlacedEvent represents a lay that was created and its stake debited
type BetPlacedEvent struct {
	BetID       uuid.UUID       `json:"bet_id"`
	UserID      int64           `json:"user_id"`
	StakeAmount decimal.Decimal `json:"stake_amount"`
	TotalOdds   decimal.Decimal `json:"total_odds"`
	WinPayout   decimal.Decimal `json:"win_payout"`
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// BetStatusChangedEvent represents an admin decision on a lay
type BetStatusChangedEvent struct {
	BetID        uuid.UUID        `json:"bet_id"`
	UserID       int64            `json:"user_id"`
	OldStatus    models.BetStatus `json:"old_status"`
	NewStatus    models.BetStatus `json:"new_status"`
	WalletCredit decimal.Decimal  `json:"wallet_credit"`
	WeeklyDelta  decimal.Decimal  `json:"weekly_delta"`
}

func (e BetStatusChangedEvent) Type() EventType {
	return EventTypeBetStatusChanged
}

// WithdrawRequestedEvent represents a recorded payout request
type WithdrawRequestedEvent struct {
	RequestID uuid.UUID       `json:"request_id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Address   string          `json:"address"`
}

func (e WithdrawRequestedEvent) Type() EventType {
	return EventTypeWithdrawRequested
}

// WeeklyRewardPaidEvent represents a rebate credited during rollover
type WeeklyRewardPaidEvent struct {
	UserID        int64           `json:"user_id"`
	WeeklyBonusID int64           `json:"weekly_bonus_id"`
	WeekStart     time.Time       `json:"week_start"`
	Amount        decimal.Decimal `json:"amount"`
}

func (e WeeklyRewardPaidEvent) Type() EventType {
	return EventTypeWeeklyRewardPaid
}

// DepositAddressIssuedEvent represents an address handed out by the rotation
type DepositAddressIssuedEvent struct {
	Address string `json:"address"`
	Index   int    `json:"index"`
}

func (e DepositAddressIssuedEvent) Type() EventType {
	return EventTypeDepositAddressIssued
}

// RolloverCompletedEvent summarises one rollover run
type RolloverCompletedEvent struct {
	WeekStart    time.Time       `json:"week_start"`
	UsersPaid    int             `json:"users_paid"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	RecordsReset int             `json:"records_reset"`
	Failures     int             `json:"failures"`
}

func (e RolloverCompletedEvent) Type() EventType {
	return EventTypeRolloverCompleted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds a handler for every ledger event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes() {
		b.Subscribe(eventType, handler)
	}
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously so a slow consumer never holds up the request
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events staged by a unit of work until its transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Staging event until commit")
	b.pending = append(b.pending, e)
}

// Pending returns the staged events
func (b *TransactionalBus) Pending() []Event {
	return b.pending
}

// Flush emits staged events; called after a successful commit
func (b *TransactionalBus) Flush() {
	if b.real == nil {
		b.pending = nil
		return
	}

	// The request context may already be done once the handler returns
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	log.WithField("eventCount", len(b.pending)).Debug("Flushed staged events")
	b.pending = nil
}

// Discard drops staged events; called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
