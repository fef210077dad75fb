package payment

import (
	"maps"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"

	// StatusDeleted is a virtual target used to validate deletion against
	// the transition table. It is never stored on a record.
	StatusDeleted Status = "DELETED"
)

type Method string

const (
	MethodCreditCard   Method = "credit_card"
	MethodDebitCard    Method = "debit_card"
	MethodBankTransfer Method = "bank_transfer"
	MethodWallet       Method = "wallet"
	MethodCrypto       Method = "crypto"
)

// HighestRiskMethod carries an extra failure draw during settlement.
const HighestRiskMethod = MethodCrypto

var methods = map[Method]bool{
	MethodCreditCard:   true,
	MethodDebitCard:    true,
	MethodBankTransfer: true,
	MethodWallet:       true,
	MethodCrypto:       true,
}

var currencies = map[string]bool{
	"USD": true,
	"EUR": true,
	"GBP": true,
	"BRL": true,
	"JPY": true,
}

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled, StatusCompleted, StatusDeleted},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted:  {StatusRefunded},
	StatusFailed:     {StatusPending},
	StatusCancelled:  {StatusDeleted},
	StatusRefunded:   {},
}

// CanTransition reports whether the table allows moving from one status to
// another. A same-status move is always allowed and treated as a no-op.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the real statuses reachable from the given status.
// The virtual deleted target is a deletion permission, not a reachable state,
// so it is excluded.
func AllowedTargets(from Status) []Status {
	targets := make([]Status, 0, len(transitions[from]))
	for _, t := range transitions[from] {
		if t == StatusDeleted {
			continue
		}
		targets = append(targets, t)
	}
	return targets
}

func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

func ValidMethod(m Method) bool {
	return methods[m]
}

func SupportedCurrency(code string) bool {
	return currencies[code]
}

type Payment struct {
	ID            string            `json:"id"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	Status        Status            `json:"status"`
	Method        Method            `json:"method"`
	Description   string            `json:"description,omitempty"`
	CustomerID    string            `json:"customerId"`
	MerchantID    string            `json:"merchantId"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	ProcessedAt   *time.Time        `json:"processedAt,omitempty"`
	FailureReason string            `json:"failureReason,omitempty"`
	TransactionID string            `json:"transactionId,omitempty"`
}

// Deletable reports whether the record may be removed from the store.
func (p *Payment) Deletable() bool {
	return CanTransition(p.Status, StatusDeleted)
}

// Terminal reports whether no further status transition is possible.
// Deletability does not count: a CANCELLED payment can be removed but
// never moves to another state.
func (p *Payment) Terminal() bool {
	return len(AllowedTargets(p.Status)) == 0
}

// Clone returns a deep copy so repository callers never share mutable state.
func (p *Payment) Clone() *Payment {
	cp := *p
	if p.Metadata != nil {
		cp.Metadata = maps.Clone(p.Metadata)
	}
	if p.ProcessedAt != nil {
		t := *p.ProcessedAt
		cp.ProcessedAt = &t
	}
	return &cp
}
