package payment

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrProcessing        = errors.New("payment processing error")
	ErrDuplicatePayment  = errors.New("duplicate payment")

	// ErrInsufficientFunds is part of the documented error surface but has
	// no trigger yet; a funds check was never wired into settlement.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

func IllegalTransition(from, to Status) error {
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}
