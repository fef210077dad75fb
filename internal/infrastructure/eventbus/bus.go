package eventbus

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/payflow-labs/payflow/internal/domain/event"
	"github.com/payflow-labs/payflow/internal/infra/logging"
	"github.com/payflow-labs/payflow/internal/infra/metrics"
)

type Handler func(event.Event) error

type Options struct {
	HistoryEnabled bool
	MaxHistorySize int
	RetryAttempts  int
	RetryBaseDelay time.Duration

	// SimulateConsumers generates decorative downstream traffic per event.
	SimulateConsumers bool

	Logger  logging.Logger
	Metrics *metrics.Counters
	Rand    *rand.Rand
}

type subscription struct {
	id      string
	handler Handler
}

// Bus is an in-process publish/subscribe engine with bounded event history
// and per-handler retry. Handler failures never reach the publisher.
type Bus struct {
	opts Options

	mu       sync.RWMutex
	handlers map[event.Type][]subscription

	histMu  sync.Mutex
	history []event.Event

	randMu sync.Mutex
}

func New(opts Options) *Bus {
	if opts.MaxHistorySize < 1 {
		opts.MaxHistorySize = 100
	}
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = 3
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = 100 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop{}
	}
	if opts.Metrics == nil {
		opts.Metrics = &metrics.Counters{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0xDA7A))
	}
	return &Bus{
		opts:     opts,
		handlers: make(map[event.Type][]subscription),
	}
}

// Subscribe registers a handler for an event type and returns the
// subscription id used to remove it later.
func (b *Bus) Subscribe(t event.Type, h Handler) string {
	id := uuid.NewString()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], subscription{id: id, handler: h})

	return id
}

// Unsubscribe removes the handler registered under id for the given type.
// It reports whether a handler was removed; repeated calls return false.
func (b *Bus) Unsubscribe(t event.Type, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[t]
	for i, s := range subs {
		if s.id == id {
			b.handlers[t] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

// Publish records the event in history and fans it out concurrently to every
// handler subscribed to its type. Each handler gets its own retry sequence;
// exhausted failures are logged and swallowed. Publish returns only after all
// handlers have settled, and it never fails.
func (b *Bus) Publish(evt event.Event) {
	b.appendHistory(evt)
	b.opts.Metrics.IncEventsPublished()

	b.mu.RLock()
	subs := slices.Clone(b.handlers[evt.Type])
	b.mu.RUnlock()

	var wg sync.WaitGroup
	for _, s := range subs {
		wg.Add(1)
		go func(s subscription) {
			defer wg.Done()
			b.dispatch(evt, s)
		}(s)
	}
	wg.Wait()

	if b.opts.SimulateConsumers {
		b.notifyConsumers(evt)
	}
}

func (b *Bus) dispatch(evt event.Event, s subscription) {
	var err error
	for attempt := 1; attempt <= b.opts.RetryAttempts; attempt++ {
		if err = s.handler(evt); err == nil {
			return
		}
		if attempt < b.opts.RetryAttempts {
			b.opts.Metrics.IncHandlerRetries()
			// Linear backoff: base delay times the attempt number.
			time.Sleep(b.opts.RetryBaseDelay * time.Duration(attempt))
		}
	}

	b.opts.Logger.Error("event handler failed after retries", map[string]any{
		"event-id":        evt.ID,
		"event-type":      evt.Type,
		"payment-id":      evt.PaymentID,
		"subscription-id": s.id,
		"attempts":        b.opts.RetryAttempts,
		"error":           err.Error(),
	})
}

// History returns a snapshot of retained events in publish order.
func (b *Bus) History() []event.Event {
	b.histMu.Lock()
	defer b.histMu.Unlock()
	return slices.Clone(b.history)
}

// ClearHistory drops retained events without touching subscriptions.
func (b *Bus) ClearHistory() {
	b.histMu.Lock()
	defer b.histMu.Unlock()
	b.history = nil
}

func (b *Bus) appendHistory(evt event.Event) {
	if !b.opts.HistoryEnabled {
		return
	}

	b.histMu.Lock()
	defer b.histMu.Unlock()

	b.history = append(b.history, evt)
	if over := len(b.history) - b.opts.MaxHistorySize; over > 0 {
		b.history = slices.Clone(b.history[over:])
	}
}

func (b *Bus) chance(p float64) bool {
	b.randMu.Lock()
	defer b.randMu.Unlock()
	return b.opts.Rand.Float64() < p
}
