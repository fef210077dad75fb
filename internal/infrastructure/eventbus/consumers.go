package eventbus

import (
	"time"

	"github.com/payflow-labs/payflow/internal/domain/event"
)

// Decorative downstream traffic: a fixed set of named consumers notified per
// event type, each with simulated latency and an independent failure chance.
// Purely illustrative; outcomes are logged and nothing depends on them.

type consumer struct {
	name        string
	latency     time.Duration
	failureRate float64
}

var downstreamConsumers = map[event.Type][]consumer{
	event.PaymentCreated: {
		{name: "analytics-pipeline", latency: 10 * time.Millisecond, failureRate: 0.02},
	},
	event.PaymentCompleted: {
		{name: "webhook-delivery", latency: 40 * time.Millisecond, failureRate: 0.05},
		{name: "analytics-pipeline", latency: 10 * time.Millisecond, failureRate: 0.02},
		{name: "notification-service", latency: 25 * time.Millisecond, failureRate: 0.03},
	},
	event.PaymentFailed: {
		{name: "webhook-delivery", latency: 40 * time.Millisecond, failureRate: 0.05},
		{name: "notification-service", latency: 25 * time.Millisecond, failureRate: 0.03},
	},
	event.PaymentRefunded: {
		{name: "webhook-delivery", latency: 40 * time.Millisecond, failureRate: 0.05},
		{name: "analytics-pipeline", latency: 10 * time.Millisecond, failureRate: 0.02},
	},
	event.PaymentCancelled: {
		{name: "notification-service", latency: 25 * time.Millisecond, failureRate: 0.03},
	},
}

func (b *Bus) notifyConsumers(evt event.Event) {
	for _, c := range downstreamConsumers[evt.Type] {
		go func(c consumer) {
			time.Sleep(c.latency)
			if b.chance(c.failureRate) {
				b.opts.Logger.Error("downstream consumer rejected event", map[string]any{
					"consumer":   c.name,
					"event-id":   evt.ID,
					"event-type": evt.Type,
				})
				return
			}
			b.opts.Logger.Info("downstream consumer notified", map[string]any{
				"consumer":   c.name,
				"event-id":   evt.ID,
				"event-type": evt.Type,
			})
		}(c)
	}
}
