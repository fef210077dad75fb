package inmemory

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/payflow-labs/payflow/internal/domain/payment"
)

type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*payment.Payment
	txnIndex map[string]string
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		payments: make(map[string]*payment.Payment),
		txnIndex: make(map[string]string),
	}
}

func (r *PaymentRepository) Create(p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.payments[p.ID]; exists {
		return fmt.Errorf("%w: id %s already exists", payment.ErrDuplicatePayment, p.ID)
	}
	if p.TransactionID != "" {
		if _, exists := r.txnIndex[p.TransactionID]; exists {
			return fmt.Errorf("%w: transaction id %s already exists", payment.ErrDuplicatePayment, p.TransactionID)
		}
	}

	stored := p.Clone()
	r.payments[stored.ID] = stored
	if stored.TransactionID != "" {
		r.txnIndex[stored.TransactionID] = stored.ID
	}
	return nil
}

func (r *PaymentRepository) FindByID(id string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[id]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	return p.Clone(), nil
}

func (r *PaymentRepository) FindByTransactionID(txnID string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.txnIndex[txnID]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	p, ok := r.payments[id]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	return p.Clone(), nil
}

func (r *PaymentRepository) Update(id string, fields payment.UpdateFields) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[id]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}

	if fields.Status != nil {
		p.Status = *fields.Status
	}
	if fields.Description != nil {
		p.Description = *fields.Description
	}
	if fields.FailureReason != nil {
		p.FailureReason = *fields.FailureReason
	}
	if fields.TransactionID != nil {
		if p.TransactionID != "" {
			delete(r.txnIndex, p.TransactionID)
		}
		p.TransactionID = *fields.TransactionID
		if p.TransactionID != "" {
			r.txnIndex[p.TransactionID] = p.ID
		}
	}
	if fields.ProcessedAt != nil {
		t := *fields.ProcessedAt
		p.ProcessedAt = &t
	}
	if fields.Metadata != nil {
		if p.Metadata == nil {
			p.Metadata = make(map[string]string, len(fields.Metadata))
		}
		maps.Copy(p.Metadata, fields.Metadata)
	}

	p.UpdatedAt = advance(p.UpdatedAt)

	return p.Clone(), nil
}

func (r *PaymentRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[id]
	if !ok {
		return payment.ErrPaymentNotFound
	}
	if p.TransactionID != "" {
		delete(r.txnIndex, p.TransactionID)
	}
	delete(r.payments, id)
	return nil
}

func (r *PaymentRepository) List() ([]*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*payment.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		out = append(out, p.Clone())
	}
	return out, nil
}

// advance guarantees updated-at strictly moves forward even when the clock
// does not (coarse timers, repeated updates within one tick).
func advance(prev time.Time) time.Time {
	now := time.Now().UTC()
	if !now.After(prev) {
		return prev.Add(time.Nanosecond)
	}
	return now
}
