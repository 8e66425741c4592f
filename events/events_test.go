package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"layledger/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTransactionalBusFlush tests the flow from staged events to subscribers
func TestTransactionalBusFlush(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			eventReceived <- balanceEvent
		} else {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
		}
	})

	testEvent := BalanceChangeEvent{
		UserID:          42,
		OldBalance:      decimal.NewFromInt(100),
		NewBalance:      decimal.NewFromInt(90),
		ChangeAmount:    decimal.NewFromInt(-10),
		TransactionType: models.TransactionTypeBetStake,
	}

	transactionalBus.Publish(testEvent)
	require.Len(t, transactionalBus.Pending(), 1)

	transactionalBus.Flush()
	assert.Empty(t, transactionalBus.Pending())

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent.UserID, received.UserID)
		assert.True(t, testEvent.NewBalance.Equal(received.NewBalance))
		assert.True(t, testEvent.ChangeAmount.Equal(received.ChangeAmount))
		assert.Equal(t, testEvent.TransactionType, received.TransactionType)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)
	mainBus.Subscribe(EventTypeBetPlaced, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(BetPlacedEvent{UserID: 1, StakeAmount: decimal.NewFromInt(10)})
	transactionalBus.Discard()
	transactionalBus.Flush()

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBusSubscribeAll(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	seen := make(map[EventType]bool)
	var wg sync.WaitGroup
	wg.Add(len(AllEventTypes()))

	bus.SubscribeAll(func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		seen[event.Type()] = true
		mu.Unlock()
	})

	ctx := context.Background()
	bus.Emit(ctx, BalanceChangeEvent{})
	bus.Emit(ctx, BetPlacedEvent{})
	bus.Emit(ctx, BetStatusChangedEvent{})
	bus.Emit(ctx, WithdrawRequestedEvent{})
	bus.Emit(ctx, WeeklyRewardPaidEvent{})
	bus.Emit(ctx, DepositAddressIssuedEvent{})
	bus.Emit(ctx, RolloverCompletedEvent{})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Not every event type was delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	for _, eventType := range AllEventTypes() {
		assert.True(t, seen[eventType], "missing %s", eventType)
	}
}

func TestBusRecoversFromPanickingHandler(t *testing.T) {
	bus := NewBus()

	delivered := make(chan struct{}, 1)
	bus.Subscribe(EventTypeDepositAddressIssued, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeDepositAddressIssued, func(ctx context.Context, event Event) {
		delivered <- struct{}{}
	})

	bus.Emit(context.Background(), DepositAddressIssuedEvent{Address: "addr", Index: 1})

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("Second handler did not run")
	}
}
