package metrics

import "sync/atomic"

type Counters struct {
	PaymentsCreated   uint64
	PaymentsCompleted uint64
	PaymentsFailed    uint64
	PaymentsCancelled uint64
	PaymentsRefunded  uint64
	PaymentsDeleted   uint64
	EventsPublished   uint64
	HandlerRetries    uint64
}

func (c *Counters) IncCreated() {
	atomic.AddUint64(&c.PaymentsCreated, 1)
}

func (c *Counters) IncCompleted() {
	atomic.AddUint64(&c.PaymentsCompleted, 1)
}

func (c *Counters) IncFailed() {
	atomic.AddUint64(&c.PaymentsFailed, 1)
}

func (c *Counters) IncCancelled() {
	atomic.AddUint64(&c.PaymentsCancelled, 1)
}

func (c *Counters) IncRefunded() {
	atomic.AddUint64(&c.PaymentsRefunded, 1)
}

func (c *Counters) IncDeleted() {
	atomic.AddUint64(&c.PaymentsDeleted, 1)
}

func (c *Counters) IncEventsPublished() {
	atomic.AddUint64(&c.EventsPublished, 1)
}

func (c *Counters) IncHandlerRetries() {
	atomic.AddUint64(&c.HandlerRetries, 1)
}
