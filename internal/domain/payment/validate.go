package payment

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Validate checks the business rules a payment must satisfy on creation.
// The ceiling is configured per deployment, not a property of the record.
func (p *Payment) Validate(ceiling decimal.Decimal) error {
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrProcessing, p.Amount)
	}
	if p.Amount.GreaterThan(ceiling) {
		return fmt.Errorf("%w: amount %s exceeds ceiling %s", ErrProcessing, p.Amount, ceiling)
	}
	if !SupportedCurrency(p.Currency) {
		return fmt.Errorf("%w: unsupported currency %q", ErrProcessing, p.Currency)
	}
	if !ValidMethod(p.Method) {
		return fmt.Errorf("%w: unknown payment method %q", ErrValidation, p.Method)
	}
	if p.CustomerID == "" {
		return fmt.Errorf("%w: customer id is required", ErrValidation)
	}
	if p.MerchantID == "" {
		return fmt.Errorf("%w: merchant id is required", ErrValidation)
	}
	return nil
}
