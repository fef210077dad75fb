package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/payflow-labs/payflow/internal/domain/payment"
)

const defaultFailureReason = "payment processing failed"

// Changeset carries the extra fields that accompanied a status transition.
// Everything is optional; the factory falls back to the payment's own fields.
type Changeset struct {
	TransactionID string
	Reason        string
	RefundAmount  *decimal.Decimal
	Changes       map[string]any
}

// New maps a payment's new status to its lifecycle event. Statuses without a
// dedicated shape, and same-status updates, produce a generic updated event.
func New(p *payment.Payment, previous payment.Status, cs Changeset) Event {
	if p.Status == previous {
		return newEvent(PaymentUpdated, p.ID, UpdatedPayload{
			PreviousStatus: previous,
			Changes:        cs.Changes,
		})
	}

	switch p.Status {
	case payment.StatusProcessing:
		return newEvent(PaymentProcessing, p.ID, ProcessingPayload{})

	case payment.StatusCompleted:
		txn := p.TransactionID
		if txn == "" {
			txn = cs.TransactionID
		}
		return newEvent(PaymentCompleted, p.ID, CompletedPayload{
			TransactionID:      txn,
			ProcessingDuration: processingDuration(p),
		})

	case payment.StatusFailed:
		reason := p.FailureReason
		if reason == "" {
			reason = cs.Reason
		}
		if reason == "" {
			reason = defaultFailureReason
		}
		return newEvent(PaymentFailed, p.ID, FailedPayload{
			Reason:             reason,
			ProcessingDuration: processingDuration(p),
		})

	case payment.StatusCancelled:
		return newEvent(PaymentCancelled, p.ID, CancelledPayload{Reason: cs.Reason})

	case payment.StatusRefunded:
		amount := p.Amount
		if cs.RefundAmount != nil {
			amount = *cs.RefundAmount
		}
		return newEvent(PaymentRefunded, p.ID, RefundedPayload{
			Amount: amount,
			Reason: cs.Reason,
		})
	}

	return newEvent(PaymentUpdated, p.ID, UpdatedPayload{
		PreviousStatus: previous,
		Changes:        cs.Changes,
	})
}

// NewCreated is the creation event; there is no previous status to map from.
func NewCreated(p *payment.Payment) Event {
	return newEvent(PaymentCreated, p.ID, CreatedPayload{
		Amount:     p.Amount,
		Currency:   p.Currency,
		Method:     p.Method,
		CustomerID: p.CustomerID,
		MerchantID: p.MerchantID,
	})
}

// NewDeleted is built from the record as it was before removal.
func NewDeleted(p *payment.Payment) Event {
	return newEvent(PaymentDeleted, p.ID, DeletedPayload{
		PaymentID:  p.ID,
		CustomerID: p.CustomerID,
		MerchantID: p.MerchantID,
	})
}

func processingDuration(p *payment.Payment) time.Duration {
	end := time.Now().UTC()
	if p.ProcessedAt != nil {
		end = *p.ProcessedAt
	}
	return end.Sub(p.CreatedAt)
}
