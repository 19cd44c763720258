package events

import (
	"context"
	"sync"

	"corebank/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAccountOpened        EventType = "account_opened"
	EventTypeBalanceChange        EventType = "balance_change"
	EventTypeInterestPosted       EventType = "interest_posted"
	EventTypeInterestRunCompleted EventType = "interest_run_completed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AccountOpenedEvent represents a newly opened account
type AccountOpenedEvent struct {
	AccountID      int64
	CustomerID     int64
	Tier           models.AccountTier
	OpeningDeposit int64
}

func (e AccountOpenedEvent) Type() EventType {
	return EventTypeAccountOpened
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	AccountID       int64
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// InterestPostedEvent represents an interest credit applied to an account
type InterestPostedEvent struct {
	AccountID   int64
	Amount      int64
	RateBps     int64
	PeriodStart string
	PeriodEnd   string
}

func (e InterestPostedEvent) Type() EventType {
	return EventTypeInterestPosted
}

// InterestRunCompletedEvent represents a finished accrual run
type InterestRunCompletedEvent struct {
	PeriodStart   string
	PeriodEnd     string
	Credited      int
	Skipped       int
	Failed        int
	TotalCredited int64
}

func (e InterestRunCompletedEvent) Type() EventType {
	return EventTypeInterestRunCompleted
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

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
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

// TransactionalBus holds pending events coupled to a unit of work and flushes
// them to the real bus only after the database transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events should outlive the transaction context.
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
