package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	PaymentCreated    Type = "payment.created"
	PaymentUpdated    Type = "payment.updated"
	PaymentProcessing Type = "payment.processing"
	PaymentCompleted  Type = "payment.completed"
	PaymentFailed     Type = "payment.failed"
	PaymentCancelled  Type = "payment.cancelled"
	PaymentRefunded   Type = "payment.refunded"
	PaymentDeleted    Type = "payment.deleted"
)

// Types lists every lifecycle event type, for subscribers that want all of them.
func Types() []Type {
	return []Type{
		PaymentCreated,
		PaymentUpdated,
		PaymentProcessing,
		PaymentCompleted,
		PaymentFailed,
		PaymentCancelled,
		PaymentRefunded,
		PaymentDeleted,
	}
}

const (
	SchemaVersion = "1.0"
	Source        = "payment-service"
)

type Event struct {
	ID        string    `json:"eventId"`
	Type      Type      `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`
	PaymentID string    `json:"paymentId"`
	Version   string    `json:"version"`
	Source    string    `json:"source"`
	Data      any       `json:"data"`
}

func newEvent(t Type, paymentID string, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		PaymentID: paymentID,
		Version:   SchemaVersion,
		Source:    Source,
		Data:      data,
	}
}
