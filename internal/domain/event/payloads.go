package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/payflow-labs/payflow/internal/domain/payment"
)

type CreatedPayload struct {
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Method     payment.Method  `json:"method"`
	CustomerID string          `json:"customerId"`
	MerchantID string          `json:"merchantId"`
}

type ProcessingPayload struct{}

type CompletedPayload struct {
	TransactionID      string        `json:"transactionId"`
	ProcessingDuration time.Duration `json:"processingDuration"`
}

type FailedPayload struct {
	Reason             string        `json:"reason"`
	ProcessingDuration time.Duration `json:"processingDuration"`
}

type CancelledPayload struct {
	Reason string `json:"reason,omitempty"`
}

type RefundedPayload struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

type UpdatedPayload struct {
	PreviousStatus payment.Status `json:"previousStatus"`
	Changes        map[string]any `json:"changes,omitempty"`
}

// DeletedPayload carries identifiers only; the record itself is gone.
type DeletedPayload struct {
	PaymentID  string `json:"paymentId"`
	CustomerID string `json:"customerId"`
	MerchantID string `json:"merchantId"`
}
