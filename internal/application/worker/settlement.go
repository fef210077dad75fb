package worker

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	payapp "github.com/payflow-labs/payflow/internal/application/payment"
	"github.com/payflow-labs/payflow/internal/domain/payment"
	"github.com/payflow-labs/payflow/internal/infra/logging"
)

// PaymentUpdater is the single transition entry point the simulator drives.
type PaymentUpdater interface {
	UpdatePayment(id string, req payapp.UpdateRequest) (*payment.Payment, error)
}

const systemErrorReason = "internal settlement error"

// Simulator stands in for an external gateway: it moves a PENDING payment to
// PROCESSING, waits a randomized delay, then lands on COMPLETED or FAILED.
// Business failures and internal errors both end in FAILED; a payment is
// never left in PROCESSING. There is no cancellation once scheduled.
type Simulator struct {
	Payments PaymentUpdater
	Logger   logging.Logger

	MinDelay time.Duration
	MaxDelay time.Duration

	// Sequential independent failure draws, not one combined probability.
	BaseFailureRate        float64
	HighValueThreshold     decimal.Decimal
	HighValueFailureRate   float64
	RiskyMethodFailureRate float64

	randMu sync.Mutex
	rand   *rand.Rand

	wg sync.WaitGroup
}

func NewSimulator(payments PaymentUpdater, logger logging.Logger, rnd *rand.Rand) *Simulator {
	if logger == nil {
		logger = logging.Nop{}
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5E77))
	}
	return &Simulator{
		Payments:               payments,
		Logger:                 logger,
		MinDelay:               1 * time.Second,
		MaxDelay:               4 * time.Second,
		BaseFailureRate:        0.15,
		HighValueThreshold:     decimal.NewFromInt(50_000),
		HighValueFailureRate:   0.30,
		RiskyMethodFailureRate: 0.20,
		rand:                   rnd,
	}
}

// Schedule launches settlement in the background and returns immediately.
func (s *Simulator) Schedule(p *payment.Payment) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.settle(p.ID, p.Amount, p.Method)
	}()
}

// Wait blocks until every scheduled settlement has finished.
func (s *Simulator) Wait() {
	s.wg.Wait()
}

func (s *Simulator) settle(id string, amount decimal.Decimal, method payment.Method) {
	processing := payment.StatusProcessing
	if _, err := s.Payments.UpdatePayment(id, payapp.UpdateRequest{Status: &processing}); err != nil {
		// The payment moved on before settlement started (e.g. cancelled);
		// it is not in PROCESSING, so there is nothing to force.
		s.Logger.Error("settlement could not start", map[string]any{
			"payment-id": id,
			"error":      err.Error(),
		})
		return
	}

	time.Sleep(s.delay())

	failed, reason := s.outcome(amount, method)
	if failed {
		s.transitionToFailed(id, reason)
		return
	}

	txn := generateTransactionID()
	completed := payment.StatusCompleted
	if _, err := s.Payments.UpdatePayment(id, payapp.UpdateRequest{
		Status:        &completed,
		TransactionID: &txn,
	}); err != nil {
		s.Logger.Error("settlement completion failed", map[string]any{
			"payment-id": id,
			"error":      err.Error(),
		})
		s.transitionToFailed(id, systemErrorReason)
	}
}

// outcome runs the sequential failure draws: base rate, then an extra draw
// for high-value amounts, then an extra draw for the riskiest method.
func (s *Simulator) outcome(amount decimal.Decimal, method payment.Method) (bool, string) {
	if s.chance(s.BaseFailureRate) {
		return true, "payment declined by gateway"
	}
	if amount.GreaterThan(s.HighValueThreshold) && s.chance(s.HighValueFailureRate) {
		return true, "high value payment rejected by risk review"
	}
	if method == payment.HighestRiskMethod && s.chance(s.RiskyMethodFailureRate) {
		return true, fmt.Sprintf("risk check failed for method %s", method)
	}
	return false, ""
}

func (s *Simulator) transitionToFailed(id, reason string) {
	failedStatus := payment.StatusFailed
	if _, err := s.Payments.UpdatePayment(id, payapp.UpdateRequest{
		Status:        &failedStatus,
		FailureReason: &reason,
	}); err != nil {
		s.Logger.Error("could not mark payment failed", map[string]any{
			"payment-id": id,
			"reason":     reason,
			"error":      err.Error(),
		})
	}
}

func (s *Simulator) delay() time.Duration {
	if s.MaxDelay <= s.MinDelay {
		return s.MinDelay
	}
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.MinDelay + time.Duration(s.rand.Int64N(int64(s.MaxDelay-s.MinDelay)))
}

func (s *Simulator) chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rand.Float64() < p
}

func generateTransactionID() string {
	return fmt.Sprintf("TXN-%s", uuid.NewString())
}
