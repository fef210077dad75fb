package payment

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/payflow-labs/payflow/internal/domain/event"
	"github.com/payflow-labs/payflow/internal/domain/payment"
	"github.com/payflow-labs/payflow/internal/infra/logging"
	"github.com/payflow-labs/payflow/internal/infra/metrics"
)

type EventPublisher interface {
	Publish(event.Event)
}

// SettlementScheduler kicks off background settlement for a new payment.
type SettlementScheduler interface {
	Schedule(*payment.Payment)
}

var defaultCeiling = decimal.NewFromInt(1_000_000)

// Service owns the payment state machine. Every mutation funnels through
// UpdatePayment so the validate-write-publish sequence cannot interleave for
// a single payment.
type Service struct {
	Repo    payment.Repository
	Bus     EventPublisher
	Logger  logging.Logger
	Metrics *metrics.Counters
	Ceiling decimal.Decimal

	// Settlement is nil when background work is disabled.
	Settlement SettlementScheduler

	locks keyedLocks
}

type CreateRequest struct {
	Amount        decimal.Decimal
	Currency      string
	Method        payment.Method
	Description   string
	CustomerID    string
	MerchantID    string
	Metadata      map[string]string
	TransactionID string
}

// UpdateRequest is a partial update. Reason and RefundAmount feed the
// resulting event only; they are not persisted fields.
type UpdateRequest struct {
	Status        *payment.Status
	Description   *string
	FailureReason *string
	TransactionID *string
	Metadata      map[string]string
	Reason        string
	RefundAmount  *decimal.Decimal
}

func (s *Service) CreatePayment(req CreateRequest) (*payment.Payment, error) {
	now := time.Now().UTC()
	p := &payment.Payment{
		ID:            uuid.NewString(),
		Amount:        req.Amount,
		Currency:      strings.ToUpper(req.Currency),
		Status:        payment.StatusPending,
		Method:        req.Method,
		Description:   req.Description,
		CustomerID:    req.CustomerID,
		MerchantID:    req.MerchantID,
		Metadata:      maps.Clone(req.Metadata),
		CreatedAt:     now,
		UpdatedAt:     now,
		TransactionID: req.TransactionID,
	}

	if err := p.Validate(s.ceiling()); err != nil {
		return nil, err
	}

	// Transaction id doubles as an idempotency key.
	if req.TransactionID != "" {
		existing, err := s.Repo.FindByTransactionID(req.TransactionID)
		if err != nil && !errors.Is(err, payment.ErrPaymentNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: transaction id %s belongs to payment %s",
				payment.ErrDuplicatePayment, req.TransactionID, existing.ID)
		}
	}

	if err := s.Repo.Create(p); err != nil {
		return nil, err
	}

	s.metrics().IncCreated()
	s.logger().Info("payment created", map[string]any{
		"payment-id": p.ID,
		"amount":     p.Amount.String(),
		"currency":   p.Currency,
		"method":     p.Method,
	})

	s.Bus.Publish(event.NewCreated(p))

	if s.Settlement != nil {
		s.Settlement.Schedule(p)
	}

	return p, nil
}

func (s *Service) GetPayment(id string) (*payment.Payment, error) {
	return s.Repo.FindByID(id)
}

func (s *Service) ListPayments() ([]*payment.Payment, error) {
	return s.Repo.List()
}

// UpdatePayment is the single transition entry point: validate the target
// against the table, persist the new state, build the matching event, and
// publish it. The per-payment lock is held through publication so events for
// one payment leave in commit order.
func (s *Service) UpdatePayment(id string, req UpdateRequest) (*payment.Payment, error) {
	lock := s.locks.acquire(id)
	lock.Lock()
	defer lock.Unlock()

	p, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	previous := p.Status
	target := previous
	if req.Status != nil {
		target = *req.Status
		if !payment.ValidStatus(target) {
			return nil, fmt.Errorf("%w: unknown status %q", payment.ErrValidation, target)
		}
	}

	if !payment.CanTransition(previous, target) {
		return nil, payment.IllegalTransition(previous, target)
	}

	if req.TransactionID != nil && *req.TransactionID != "" {
		existing, err := s.Repo.FindByTransactionID(*req.TransactionID)
		if err != nil && !errors.Is(err, payment.ErrPaymentNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, fmt.Errorf("%w: transaction id %s belongs to payment %s",
				payment.ErrDuplicatePayment, *req.TransactionID, existing.ID)
		}
	}

	fields := payment.UpdateFields{
		Status:        &target,
		Description:   req.Description,
		FailureReason: req.FailureReason,
		TransactionID: req.TransactionID,
		Metadata:      req.Metadata,
	}

	if (target == payment.StatusCompleted || target == payment.StatusFailed) && p.ProcessedAt == nil {
		now := time.Now().UTC()
		fields.ProcessedAt = &now
	}

	updated, err := s.Repo.Update(id, fields)
	if err != nil {
		return nil, err
	}

	s.countTransition(previous, target)
	s.logger().Info("payment updated", map[string]any{
		"payment-id": id,
		"from":       previous,
		"to":         target,
	})

	evt := event.New(updated, previous, event.Changeset{
		TransactionID: deref(req.TransactionID),
		Reason:        reasonFor(req),
		RefundAmount:  req.RefundAmount,
		Changes:       changes(req),
	})
	s.Bus.Publish(evt)

	return updated, nil
}

// DeletePayment removes a record; allowed only where the transition table
// permits the virtual deleted target (PENDING and CANCELLED).
func (s *Service) DeletePayment(id string) error {
	lock := s.locks.acquire(id)
	lock.Lock()
	defer lock.Unlock()

	p, err := s.Repo.FindByID(id)
	if err != nil {
		return err
	}

	if !p.Deletable() {
		return payment.IllegalTransition(p.Status, payment.StatusDeleted)
	}

	if err := s.Repo.Delete(id); err != nil {
		return err
	}

	s.metrics().IncDeleted()
	s.logger().Info("payment deleted", map[string]any{"payment-id": id})

	s.Bus.Publish(event.NewDeleted(p))

	return nil
}

// CancelPayment and RefundPayment are shorthands used by the API edge.

func (s *Service) CancelPayment(id, reason string) (*payment.Payment, error) {
	status := payment.StatusCancelled
	return s.UpdatePayment(id, UpdateRequest{Status: &status, Reason: reason})
}

func (s *Service) RefundPayment(id string, amount *decimal.Decimal, reason string) (*payment.Payment, error) {
	status := payment.StatusRefunded
	return s.UpdatePayment(id, UpdateRequest{Status: &status, RefundAmount: amount, Reason: reason})
}

func (s *Service) ceiling() decimal.Decimal {
	if s.Ceiling.IsZero() {
		return defaultCeiling
	}
	return s.Ceiling
}

func (s *Service) countTransition(previous, target payment.Status) {
	if previous == target {
		return
	}
	switch target {
	case payment.StatusCompleted:
		s.metrics().IncCompleted()
	case payment.StatusFailed:
		s.metrics().IncFailed()
	case payment.StatusCancelled:
		s.metrics().IncCancelled()
	case payment.StatusRefunded:
		s.metrics().IncRefunded()
	}
}

func (s *Service) logger() logging.Logger {
	if s.Logger == nil {
		return logging.Nop{}
	}
	return s.Logger
}

var discardCounters metrics.Counters

func (s *Service) metrics() *metrics.Counters {
	if s.Metrics == nil {
		return &discardCounters
	}
	return s.Metrics
}

func reasonFor(req UpdateRequest) string {
	if req.Reason != "" {
		return req.Reason
	}
	return deref(req.FailureReason)
}

func changes(req UpdateRequest) map[string]any {
	out := make(map[string]any)
	if req.Status != nil {
		out["status"] = *req.Status
	}
	if req.Description != nil {
		out["description"] = *req.Description
	}
	if req.FailureReason != nil {
		out["failureReason"] = *req.FailureReason
	}
	if req.TransactionID != nil {
		out["transactionId"] = *req.TransactionID
	}
	if req.Metadata != nil {
		out["metadata"] = req.Metadata
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
