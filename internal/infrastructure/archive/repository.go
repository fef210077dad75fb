package archive

import (
	"time"

	"github.com/payflow-labs/payflow/internal/domain/event"
)

// ArchivedEvent is the durable record of a published lifecycle event. The
// bus's in-memory history is bounded; the archive is not.
type ArchivedEvent struct {
	ID        string
	Type      event.Type
	PaymentID string
	Payload   []byte
	Exported  bool
	CreatedAt time.Time
}

type Repository interface {
	Save(ArchivedEvent) error
	FindUnexported(int) ([]ArchivedEvent, error)
	MarkExported(string) error
}

// Sink receives archived events during export, e.g. a downstream feed.
type Sink interface {
	Deliver(event.Event) error
}
