package archive

import (
	"encoding/json"
	"time"

	"github.com/payflow-labs/payflow/internal/domain/event"
	"github.com/payflow-labs/payflow/internal/infrastructure/eventbus"
)

// Recorder persists every event published on the bus.
type Recorder struct {
	Repo Repository
}

// Handle is a bus handler; registering it for every event type makes the
// archive a complete journal of lifecycle activity.
func (r *Recorder) Handle(evt event.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return r.Repo.Save(ArchivedEvent{
		ID:        evt.ID,
		Type:      evt.Type,
		PaymentID: evt.PaymentID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	})
}

// Subscriber is anything the recorder can attach itself to.
type Subscriber interface {
	Subscribe(event.Type, eventbus.Handler) string
}

// SubscribeAll registers the recorder for every lifecycle event type and
// returns the subscription ids keyed by type.
func (r *Recorder) SubscribeAll(bus Subscriber) map[event.Type]string {
	ids := make(map[event.Type]string, len(event.Types()))
	for _, t := range event.Types() {
		ids[t] = bus.Subscribe(t, r.Handle)
	}
	return ids
}
